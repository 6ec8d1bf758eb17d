package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridewell/server/pkg/domain/transform"
	"github.com/stridewell/server/pkg/testing/mocks"
	"github.com/stridewell/server/pkg/types"
)

func rawRun(id int64, day string) *types.RawActivityRecord {
	return &types.RawActivityRecord{
		ID:         id,
		StartTime:  day + "T06:30:00Z",
		Sport:      "running",
		MovingTime: "45:00",
	}
}

func testImporter(store *mocks.MockStore, reader *mocks.MockReader, opts ...Option) *Importer {
	tr := transform.NewActivityTransformer(time.UTC)
	return NewImporter(store, reader, tr, nil, opts...)
}

func TestImportActivities_HappyPath(t *testing.T) {
	var inserted []*types.CanonicalSession
	store := &mocks.MockStore{
		InsertSessionFunc: func(ctx context.Context, s *types.CanonicalSession) error {
			inserted = append(inserted, s)
			return nil
		},
	}
	reader := &mocks.MockReader{
		ReadActivitiesFunc: func(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error) {
			return []*types.RawActivityRecord{rawRun(1, "2024-03-01"), rawRun(2, "2024-03-02")}, nil
		},
	}

	res, err := testImporter(store, reader).ImportActivities(context.Background(), Options{
		AthleteID:  "athlete-1",
		SourceType: "garmin",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 100, res.SuccessRatePct)
	assert.Len(t, inserted, 2)
	assert.Len(t, res.ImportedSessionIDs, 2)
}

func TestImportActivities_DryRunNeverInserts(t *testing.T) {
	store := &mocks.MockStore{
		InsertSessionFunc: func(ctx context.Context, s *types.CanonicalSession) error {
			t.Fatal("dry run must not insert")
			return nil
		},
	}
	reader := &mocks.MockReader{
		ReadActivitiesFunc: func(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error) {
			return []*types.RawActivityRecord{rawRun(1, "2024-03-01")}, nil
		},
	}

	res, err := testImporter(store, reader).ImportActivities(context.Background(), Options{
		AthleteID:  "athlete-1",
		SourceType: "garmin",
		DryRun:     true,
	})
	require.NoError(t, err)
	// counts still reflect what would have been imported
	assert.Equal(t, 1, res.Imported)
	assert.True(t, res.Success)
}

func TestImportActivities_DuplicateSkippedNotFailed(t *testing.T) {
	seen := map[string]*types.CanonicalSession{}
	store := &mocks.MockStore{
		GetSessionBySourceRecordFunc: func(ctx context.Context, athleteID, sourceType, sourceRecordID string) (*types.CanonicalSession, error) {
			return seen[sourceRecordID], nil
		},
		InsertSessionFunc: func(ctx context.Context, s *types.CanonicalSession) error {
			seen[s.Metadata.SourceRecordID] = s
			return nil
		},
	}
	reader := &mocks.MockReader{
		ReadActivitiesFunc: func(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error) {
			return []*types.RawActivityRecord{rawRun(1, "2024-03-01")}, nil
		},
	}

	imp := testImporter(store, reader)

	first, err := imp.ImportActivities(context.Background(), Options{AthleteID: "athlete-1", SourceType: "garmin"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Imported)

	second, err := imp.ImportActivities(context.Background(), Options{AthleteID: "athlete-1", SourceType: "garmin"})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 0, second.Failed)
	assert.True(t, second.Success, "a fully deduplicated run has no errors and succeeds")
	assert.Len(t, seen, 1, "importing the same source record twice must keep one canonical record")
}

func TestImportActivities_BatchFailureMarksRemainder(t *testing.T) {
	calls := 0
	store := &mocks.MockStore{
		InsertSessionFunc: func(ctx context.Context, s *types.CanonicalSession) error {
			calls++
			if calls == 2 {
				return errors.New("store unavailable")
			}
			return nil
		},
	}
	reader := &mocks.MockReader{
		ReadActivitiesFunc: func(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error) {
			return []*types.RawActivityRecord{
				rawRun(1, "2024-03-01"), rawRun(2, "2024-03-02"),
				rawRun(3, "2024-03-03"), rawRun(4, "2024-03-04"),
			}, nil
		},
	}

	res, err := testImporter(store, reader).ImportActivities(context.Background(), Options{
		AthleteID:  "athlete-1",
		SourceType: "garmin",
	})
	require.NoError(t, err)
	// item 1 imported; items 2-4 share the single batch and fail together
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 3, res.Failed)
	require.Len(t, res.Errors, 3)
	for _, e := range res.Errors {
		assert.Equal(t, types.ErrBatch, e.Kind)
	}
	assert.True(t, res.Success, "partial success still reports overall success")
}

func TestImportActivities_BatchBoundaryLimitsBlastRadius(t *testing.T) {
	inserts := 0
	store := &mocks.MockStore{
		InsertSessionFunc: func(ctx context.Context, s *types.CanonicalSession) error {
			inserts++
			if inserts == 1 {
				return errors.New("transient store failure")
			}
			return nil
		},
	}
	reader := &mocks.MockReader{
		ReadActivitiesFunc: func(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error) {
			return []*types.RawActivityRecord{
				rawRun(1, "2024-03-01"), rawRun(2, "2024-03-02"),
				rawRun(3, "2024-03-03"), rawRun(4, "2024-03-04"),
			}, nil
		},
	}

	res, err := testImporter(store, reader, WithBatchSize(2)).ImportActivities(context.Background(), Options{
		AthleteID:  "athlete-1",
		SourceType: "garmin",
	})
	require.NoError(t, err)
	// batch 1 (items 1,2) fails wholesale; batch 2 (items 3,4) imports
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 2, res.Imported)
}

func TestImportActivities_TransformErrorsCollected(t *testing.T) {
	reader := &mocks.MockReader{
		ReadActivitiesFunc: func(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error) {
			bad := rawRun(2, "2024-03-02")
			bad.MovingTime = "1:2:3:4"
			return []*types.RawActivityRecord{rawRun(1, "2024-03-01"), bad, rawRun(3, "2024-03-03")}, nil
		},
	}

	res, err := testImporter(&mocks.MockStore{}, reader).ImportActivities(context.Background(), Options{
		AthleteID:       "athlete-1",
		SourceType:      "garmin",
		ContinueOnError: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, types.ErrValidation, res.Errors[0].Kind)
	assert.Equal(t, "2", res.Errors[0].ItemID)
}

func TestImportActivities_ReaderFailureAbortsRun(t *testing.T) {
	reader := &mocks.MockReader{
		ReadActivitiesFunc: func(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error) {
			return nil, errors.New("export not found")
		},
	}
	_, err := testImporter(&mocks.MockStore{}, reader).ImportActivities(context.Background(), Options{AthleteID: "athlete-1"})
	require.Error(t, err)
}

func TestImportActivities_ProgressCallback(t *testing.T) {
	reader := &mocks.MockReader{
		ReadActivitiesFunc: func(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error) {
			var out []*types.RawActivityRecord
			for i := 1; i <= 3; i++ {
				out = append(out, rawRun(int64(i), fmt.Sprintf("2024-03-0%d", i)))
			}
			return out, nil
		},
	}

	var phases []Phase
	res, err := testImporter(&mocks.MockStore{}, reader).ImportActivities(context.Background(), Options{
		AthleteID:  "athlete-1",
		SourceType: "garmin",
		OnProgress: func(s Snapshot) { phases = append(phases, s.Phase) },
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	require.NotEmpty(t, phases)
	assert.Equal(t, PhaseComplete, phases[len(phases)-1])
}

func TestRollback(t *testing.T) {
	var gotAthlete string
	var gotIDs []string
	store := &mocks.MockStore{
		DeleteSessionsFunc: func(ctx context.Context, athleteID string, sessionIDs []string) (int, error) {
			gotAthlete = athleteID
			gotIDs = sessionIDs
			return len(sessionIDs), nil
		},
	}

	imp := testImporter(store, &mocks.MockReader{})
	n, err := imp.Rollback(context.Background(), "athlete-1", []string{"s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "athlete-1", gotAthlete)
	assert.Equal(t, []string{"s1", "s2"}, gotIDs)

	n, err = imp.Rollback(context.Background(), "athlete-1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
