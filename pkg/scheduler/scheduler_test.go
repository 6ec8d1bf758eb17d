package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stridewell/server/pkg/syncservice"
	"github.com/stridewell/server/pkg/testing/mocks"
	"github.com/stridewell/server/pkg/types"
)

type fakeRunner struct {
	calls []syncservice.RunOptions
	err   error
}

func (f *fakeRunner) SyncAthleteData(ctx context.Context, opts syncservice.RunOptions) (*types.SyncRun, error) {
	f.calls = append(f.calls, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &types.SyncRun{SyncID: "run-1", AthleteID: opts.AthleteID, Status: types.SyncStatusCompleted}, nil
}

func dueConfig(athleteID string) *types.SyncConfig {
	return &types.SyncConfig{
		AthleteID:     athleteID,
		Frequency:     types.FrequencyDaily,
		PreferredTime: "06:00:00",
		DataTypes:     []string{types.DataTypeActivities},
		Enabled:       true,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTriggerCheck_RunsDueConfigs(t *testing.T) {
	var configUpdates []map[string]interface{}
	store := &mocks.MockStore{
		ListEnabledSyncConfigsFunc: func(ctx context.Context, limit int) ([]*types.SyncConfig, error) {
			return []*types.SyncConfig{dueConfig("athlete-1")}, nil
		},
		UpdateSyncConfigFunc: func(ctx context.Context, athleteID string, data map[string]interface{}) error {
			configUpdates = append(configUpdates, data)
			return nil
		},
	}
	runner := &fakeRunner{}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	s := New(store, runner, nil, WithClock(fixedClock(now)))
	s.TriggerCheck(context.Background())

	if len(runner.calls) != 1 {
		t.Fatalf("sync calls = %d, want 1", len(runner.calls))
	}
	if runner.calls[0].AthleteID != "athlete-1" {
		t.Errorf("athlete = %q, want athlete-1", runner.calls[0].AthleteID)
	}
	if runner.calls[0].SyncType != types.SyncTypeScheduled {
		t.Errorf("sync type = %q, want scheduled", runner.calls[0].SyncType)
	}

	if len(configUpdates) != 1 {
		t.Fatalf("config updates = %d, want 1", len(configUpdates))
	}
	if configUpdates[0]["last_sync_at"] != now {
		t.Errorf("last_sync_at = %v, want %v", configUpdates[0]["last_sync_at"], now)
	}
	wantNext := time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC)
	if next, _ := configUpdates[0]["next_sync_at"].(time.Time); !next.Equal(wantNext) {
		t.Errorf("next_sync_at = %v, want %v", next, wantNext)
	}
}

func TestTriggerCheck_SkipsAthleteWithRunningSync(t *testing.T) {
	store := &mocks.MockStore{
		ListEnabledSyncConfigsFunc: func(ctx context.Context, limit int) ([]*types.SyncConfig, error) {
			return []*types.SyncConfig{dueConfig("athlete-1")}, nil
		},
		GetRunningSyncRunFunc: func(ctx context.Context, athleteID string) (*types.SyncRun, error) {
			return &types.SyncRun{SyncID: "active", AthleteID: athleteID, Status: types.SyncStatusRunning}, nil
		},
	}
	runner := &fakeRunner{}

	s := New(store, runner, nil)
	// back-to-back checks while a sync is running must never double-trigger
	s.TriggerCheck(context.Background())
	s.TriggerCheck(context.Background())

	if len(runner.calls) != 0 {
		t.Errorf("sync calls = %d, want 0 while a run is active", len(runner.calls))
	}
}

func TestTriggerCheck_SkipsNotDueConfigs(t *testing.T) {
	future := time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC)
	cfg := dueConfig("athlete-1")
	cfg.NextSyncAt = &future

	store := &mocks.MockStore{
		ListEnabledSyncConfigsFunc: func(ctx context.Context, limit int) ([]*types.SyncConfig, error) {
			return []*types.SyncConfig{cfg}, nil
		},
	}
	runner := &fakeRunner{}

	s := New(store, runner, nil, WithClock(fixedClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))))
	s.TriggerCheck(context.Background())

	if len(runner.calls) != 0 {
		t.Errorf("sync calls = %d, want 0 before next_sync_at", len(runner.calls))
	}
}

func TestTriggerCheck_PollFailureCounted(t *testing.T) {
	store := &mocks.MockStore{
		ListEnabledSyncConfigsFunc: func(ctx context.Context, limit int) ([]*types.SyncConfig, error) {
			return nil, errors.New("store down")
		},
	}
	s := New(store, &fakeRunner{}, nil)
	s.TriggerCheck(context.Background())

	if got := s.Status().ErroredTotal; got != 1 {
		t.Errorf("errored total = %d, want 1", got)
	}
}

func TestTriggerCheck_RunnerFailureDoesNotAdvanceSchedule(t *testing.T) {
	updates := 0
	store := &mocks.MockStore{
		ListEnabledSyncConfigsFunc: func(ctx context.Context, limit int) ([]*types.SyncConfig, error) {
			return []*types.SyncConfig{dueConfig("athlete-1")}, nil
		},
		UpdateSyncConfigFunc: func(ctx context.Context, athleteID string, data map[string]interface{}) error {
			updates++
			return nil
		},
	}
	runner := &fakeRunner{err: errors.New("sync run record write failed")}

	s := New(store, runner, nil)
	s.TriggerCheck(context.Background())

	if updates != 0 {
		t.Errorf("config updates = %d, want 0 after a failed trigger", updates)
	}
	if got := s.Status().ErroredTotal; got != 1 {
		t.Errorf("errored total = %d, want 1", got)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	store := &mocks.MockStore{}
	s := New(store, &fakeRunner{}, nil, WithInterval(time.Hour))

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)
	if !s.Status().Running {
		t.Error("expected running after Start")
	}

	s.Stop()
	s.Stop()
	if s.Status().Running {
		t.Error("expected stopped after Stop")
	}
}
