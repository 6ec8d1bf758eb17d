// Package memory is an in-memory datastore for local development and tests.
// It mirrors the backend's semantics: predicate queries only, insert fails on
// an existing id, partial updates merge by field name.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/types"
)

type Store struct {
	mu sync.RWMutex

	sessions map[string]*types.CanonicalSession
	wellness map[string]*types.WellnessRecord
	syncRuns map[string]*types.SyncRun
	configs  map[string]*types.SyncConfig
}

var _ shared.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*types.CanonicalSession),
		wellness: make(map[string]*types.WellnessRecord),
		syncRuns: make(map[string]*types.SyncRun),
		configs:  make(map[string]*types.SyncConfig),
	}
}

// --- Sessions ---

func (s *Store) InsertSession(ctx context.Context, session *types.CanonicalSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.SessionID]; exists {
		return fmt.Errorf("session %s already exists", session.SessionID)
	}
	cp := *session
	s.sessions[session.SessionID] = &cp
	return nil
}

func (s *Store) GetSessionBySourceRecord(ctx context.Context, athleteID, sourceType, sourceRecordID string) (*types.CanonicalSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.AthleteID != athleteID || session.SourceType != sourceType {
			continue
		}
		if session.Metadata != nil && session.Metadata.SourceRecordID == sourceRecordID {
			cp := *session
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) ListSessions(ctx context.Context, athleteID, startDate, endDate string, limit int) ([]*types.CanonicalSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.CanonicalSession
	for _, session := range s.sessions {
		if session.AthleteID != athleteID {
			continue
		}
		if !inDateRange(session.Date, startDate, endDate) {
			continue
		}
		cp := *session
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DeleteSessions(ctx context.Context, athleteID string, sessionIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, id := range sessionIDs {
		session, ok := s.sessions[id]
		if !ok || session.AthleteID != athleteID {
			continue
		}
		delete(s.sessions, id)
		deleted++
	}
	return deleted, nil
}

// --- Wellness ---

func (s *Store) InsertWellness(ctx context.Context, record *types.WellnessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.wellness[record.WellnessID]; exists {
		return fmt.Errorf("wellness record %s already exists", record.WellnessID)
	}
	cp := *record
	s.wellness[record.WellnessID] = &cp
	return nil
}

func (s *Store) GetWellnessByDate(ctx context.Context, athleteID string, dataType types.WellnessType, date string) (*types.WellnessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.wellness {
		if record.AthleteID == athleteID && record.DataType == dataType && record.Date == date {
			cp := *record
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) ListWellness(ctx context.Context, athleteID, startDate, endDate string, limit int) ([]*types.WellnessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.WellnessRecord
	for _, record := range s.wellness {
		if record.AthleteID != athleteID {
			continue
		}
		if !inDateRange(record.Date, startDate, endDate) {
			continue
		}
		cp := *record
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Sync runs ---

func (s *Store) CreateSyncRun(ctx context.Context, run *types.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.syncRuns[run.SyncID]; exists {
		return fmt.Errorf("sync run %s already exists", run.SyncID)
	}
	cp := *run
	s.syncRuns[run.SyncID] = &cp
	return nil
}

func (s *Store) UpdateSyncRun(ctx context.Context, syncID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.syncRuns[syncID]
	if !ok {
		return fmt.Errorf("sync run %s not found", syncID)
	}
	applySyncRunUpdate(run, data)
	return nil
}

func (s *Store) GetRunningSyncRun(ctx context.Context, athleteID string) (*types.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, run := range s.syncRuns {
		if run.AthleteID == athleteID && run.Status == types.SyncStatusRunning {
			cp := *run
			return &cp, nil
		}
	}
	return nil, nil
}

// --- Sync configs ---

func (s *Store) PutSyncConfig(cfg *types.SyncConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *cfg
	s.configs[cfg.AthleteID] = &cp
}

func (s *Store) GetSyncConfig(ctx context.Context, athleteID string) (*types.SyncConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[athleteID]
	if !ok {
		return nil, nil
	}
	cp := *cfg
	return &cp, nil
}

func (s *Store) ListEnabledSyncConfigs(ctx context.Context, limit int) ([]*types.SyncConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.SyncConfig
	for _, cfg := range s.configs {
		if !cfg.Enabled {
			continue
		}
		cp := *cfg
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AthleteID < out[j].AthleteID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpdateSyncConfig(ctx context.Context, athleteID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[athleteID]
	if !ok {
		return fmt.Errorf("sync config %s not found", athleteID)
	}
	applySyncConfigUpdate(cfg, data)
	return nil
}

// --- Helpers ---

func inDateRange(date, start, end string) bool {
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}

func applySyncRunUpdate(run *types.SyncRun, data map[string]interface{}) {
	for key, value := range data {
		switch key {
		case "status":
			if v, ok := value.(string); ok {
				run.Status = v
			}
		case "completed_at":
			if v, ok := value.(time.Time); ok {
				run.CompletedAt = &v
			}
		case "duration_ms":
			if v, ok := value.(int64); ok {
				run.DurationMs = v
			}
		case "activities_imported":
			if v, ok := value.(int); ok {
				run.ActivitiesImported = v
			}
		case "activities_skipped":
			if v, ok := value.(int); ok {
				run.ActivitiesSkipped = v
			}
		case "wellness_imported":
			if v, ok := value.(int); ok {
				run.WellnessImported = v
			}
		case "wellness_skipped":
			if v, ok := value.(int); ok {
				run.WellnessSkipped = v
			}
		case "errors":
			if v, ok := value.([]*types.SyncError); ok {
				run.Errors = v
			}
		}
	}
}

func applySyncConfigUpdate(cfg *types.SyncConfig, data map[string]interface{}) {
	for key, value := range data {
		switch key {
		case "enabled":
			if v, ok := value.(bool); ok {
				cfg.Enabled = v
			}
		case "frequency":
			if v, ok := value.(string); ok {
				cfg.Frequency = v
			}
		case "preferred_time":
			if v, ok := value.(string); ok {
				cfg.PreferredTime = v
			}
		case "last_sync_at":
			if v, ok := value.(time.Time); ok {
				cfg.LastSyncAt = &v
			}
		case "next_sync_at":
			if v, ok := value.(time.Time); ok {
				cfg.NextSyncAt = &v
			}
		case "data_types":
			if v, ok := value.([]string); ok {
				cfg.DataTypes = v
			}
		}
	}
}
