package firestore

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/types"
)

// Store implements the datastore surface on Firestore. Point lookups run as
// limit-1 queries so a missing document is a nil result, never an error.
type Store struct {
	client *Client
	logger *slog.Logger
}

var _ shared.Store = (*Store)(nil)

func NewStore(client *Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, logger: logger}
}

// --- Sessions ---

func (s *Store) InsertSession(ctx context.Context, session *types.CanonicalSession) error {
	if err := s.client.Sessions().Doc(session.SessionID).Create(ctx, session); err != nil {
		return fmt.Errorf("insert session %s: %w", session.SessionID, err)
	}
	return nil
}

func (s *Store) GetSessionBySourceRecord(ctx context.Context, athleteID, sourceType, sourceRecordID string) (*types.CanonicalSession, error) {
	q := s.client.Sessions().Query().
		Where("athlete_id", "==", athleteID).
		Where("source_type", "==", sourceType).
		Where("metadata.source_record_id", "==", sourceRecordID).
		Limit(1)
	return queryOne[types.CanonicalSession](ctx, q)
}

func (s *Store) ListSessions(ctx context.Context, athleteID, startDate, endDate string, limit int) ([]*types.CanonicalSession, error) {
	q := s.client.Sessions().Query().Where("athlete_id", "==", athleteID)
	if startDate != "" {
		q = q.Where("date", ">=", startDate)
	}
	if endDate != "" {
		q = q.Where("date", "<=", endDate)
	}
	q = q.OrderBy("date", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return queryAll[types.CanonicalSession](ctx, q)
}

func (s *Store) DeleteSessions(ctx context.Context, athleteID string, sessionIDs []string) (int, error) {
	deleted := 0
	for _, id := range sessionIDs {
		// scope the delete to the athlete; a foreign id is silently skipped
		existing, err := queryOne[types.CanonicalSession](ctx, s.client.Sessions().Query().
			Where("athlete_id", "==", athleteID).
			Where("session_id", "==", id).
			Limit(1))
		if err != nil {
			return deleted, fmt.Errorf("delete sessions: %w", err)
		}
		if existing == nil {
			continue
		}
		if err := s.client.Sessions().Doc(id).Delete(ctx); err != nil {
			return deleted, fmt.Errorf("delete session %s: %w", id, err)
		}
		deleted++
	}
	return deleted, nil
}

// --- Wellness ---

func (s *Store) InsertWellness(ctx context.Context, record *types.WellnessRecord) error {
	if err := s.client.Wellness().Doc(record.WellnessID).Create(ctx, record); err != nil {
		return fmt.Errorf("insert wellness %s: %w", record.WellnessID, err)
	}
	return nil
}

func (s *Store) GetWellnessByDate(ctx context.Context, athleteID string, dataType types.WellnessType, date string) (*types.WellnessRecord, error) {
	q := s.client.Wellness().Query().
		Where("athlete_id", "==", athleteID).
		Where("data_type", "==", string(dataType)).
		Where("date", "==", date).
		Limit(1)
	return queryOne[types.WellnessRecord](ctx, q)
}

func (s *Store) ListWellness(ctx context.Context, athleteID, startDate, endDate string, limit int) ([]*types.WellnessRecord, error) {
	q := s.client.Wellness().Query().Where("athlete_id", "==", athleteID)
	if startDate != "" {
		q = q.Where("date", ">=", startDate)
	}
	if endDate != "" {
		q = q.Where("date", "<=", endDate)
	}
	q = q.OrderBy("date", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return queryAll[types.WellnessRecord](ctx, q)
}

// --- Sync runs ---

func (s *Store) CreateSyncRun(ctx context.Context, run *types.SyncRun) error {
	if err := s.client.SyncRuns().Doc(run.SyncID).Create(ctx, run); err != nil {
		return fmt.Errorf("create sync run %s: %w", run.SyncID, err)
	}
	return nil
}

func (s *Store) UpdateSyncRun(ctx context.Context, syncID string, data map[string]interface{}) error {
	if err := s.client.SyncRuns().Doc(syncID).Update(ctx, data); err != nil {
		return fmt.Errorf("update sync run %s: %w", syncID, err)
	}
	return nil
}

func (s *Store) GetRunningSyncRun(ctx context.Context, athleteID string) (*types.SyncRun, error) {
	q := s.client.SyncRuns().Query().
		Where("athlete_id", "==", athleteID).
		Where("status", "==", types.SyncStatusRunning).
		Limit(1)
	return queryOne[types.SyncRun](ctx, q)
}

// --- Sync configs ---

func (s *Store) GetSyncConfig(ctx context.Context, athleteID string) (*types.SyncConfig, error) {
	q := s.client.SyncConfigs().Query().
		Where("athlete_id", "==", athleteID).
		Limit(1)
	return queryOne[types.SyncConfig](ctx, q)
}

func (s *Store) UpdateSyncConfig(ctx context.Context, athleteID string, data map[string]interface{}) error {
	if err := s.client.SyncConfigs().Doc(athleteID).Update(ctx, data); err != nil {
		return fmt.Errorf("update sync config %s: %w", athleteID, err)
	}
	return nil
}

func (s *Store) ListEnabledSyncConfigs(ctx context.Context, limit int) ([]*types.SyncConfig, error) {
	q := s.client.SyncConfigs().Query().Where("enabled", "==", true)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return queryAll[types.SyncConfig](ctx, q)
}

// --- Query helpers ---

func queryOne[T any](ctx context.Context, q firestore.Query) (*T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	var out T
	if err := doc.DataTo(&out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", doc.Ref.ID, err)
	}
	return &out, nil
}

func queryAll[T any](ctx context.Context, q firestore.Query) ([]*T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.ID, err)
		}
		out = append(out, &item)
	}
}
