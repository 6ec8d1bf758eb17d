package mocks

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/stridewell/server/pkg/types"
)

// --- Mock Store ---

type MockStore struct {
	InsertSessionFunc            func(ctx context.Context, session *types.CanonicalSession) error
	GetSessionBySourceRecordFunc func(ctx context.Context, athleteID, sourceType, sourceRecordID string) (*types.CanonicalSession, error)
	ListSessionsFunc             func(ctx context.Context, athleteID, startDate, endDate string, limit int) ([]*types.CanonicalSession, error)
	DeleteSessionsFunc           func(ctx context.Context, athleteID string, sessionIDs []string) (int, error)

	InsertWellnessFunc    func(ctx context.Context, record *types.WellnessRecord) error
	GetWellnessByDateFunc func(ctx context.Context, athleteID string, dataType types.WellnessType, date string) (*types.WellnessRecord, error)
	ListWellnessFunc      func(ctx context.Context, athleteID, startDate, endDate string, limit int) ([]*types.WellnessRecord, error)

	CreateSyncRunFunc     func(ctx context.Context, run *types.SyncRun) error
	UpdateSyncRunFunc     func(ctx context.Context, syncID string, data map[string]interface{}) error
	GetRunningSyncRunFunc func(ctx context.Context, athleteID string) (*types.SyncRun, error)

	GetSyncConfigFunc          func(ctx context.Context, athleteID string) (*types.SyncConfig, error)
	ListEnabledSyncConfigsFunc func(ctx context.Context, limit int) ([]*types.SyncConfig, error)
	UpdateSyncConfigFunc       func(ctx context.Context, athleteID string, data map[string]interface{}) error
}

func (m *MockStore) InsertSession(ctx context.Context, session *types.CanonicalSession) error {
	if m.InsertSessionFunc != nil {
		return m.InsertSessionFunc(ctx, session)
	}
	return nil
}

func (m *MockStore) GetSessionBySourceRecord(ctx context.Context, athleteID, sourceType, sourceRecordID string) (*types.CanonicalSession, error) {
	if m.GetSessionBySourceRecordFunc != nil {
		return m.GetSessionBySourceRecordFunc(ctx, athleteID, sourceType, sourceRecordID)
	}
	return nil, nil
}

func (m *MockStore) ListSessions(ctx context.Context, athleteID, startDate, endDate string, limit int) ([]*types.CanonicalSession, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx, athleteID, startDate, endDate, limit)
	}
	return nil, nil
}

func (m *MockStore) DeleteSessions(ctx context.Context, athleteID string, sessionIDs []string) (int, error) {
	if m.DeleteSessionsFunc != nil {
		return m.DeleteSessionsFunc(ctx, athleteID, sessionIDs)
	}
	return 0, nil
}

func (m *MockStore) InsertWellness(ctx context.Context, record *types.WellnessRecord) error {
	if m.InsertWellnessFunc != nil {
		return m.InsertWellnessFunc(ctx, record)
	}
	return nil
}

func (m *MockStore) GetWellnessByDate(ctx context.Context, athleteID string, dataType types.WellnessType, date string) (*types.WellnessRecord, error) {
	if m.GetWellnessByDateFunc != nil {
		return m.GetWellnessByDateFunc(ctx, athleteID, dataType, date)
	}
	return nil, nil
}

func (m *MockStore) ListWellness(ctx context.Context, athleteID, startDate, endDate string, limit int) ([]*types.WellnessRecord, error) {
	if m.ListWellnessFunc != nil {
		return m.ListWellnessFunc(ctx, athleteID, startDate, endDate, limit)
	}
	return nil, nil
}

func (m *MockStore) CreateSyncRun(ctx context.Context, run *types.SyncRun) error {
	if m.CreateSyncRunFunc != nil {
		return m.CreateSyncRunFunc(ctx, run)
	}
	return nil
}

func (m *MockStore) UpdateSyncRun(ctx context.Context, syncID string, data map[string]interface{}) error {
	if m.UpdateSyncRunFunc != nil {
		return m.UpdateSyncRunFunc(ctx, syncID, data)
	}
	return nil
}

func (m *MockStore) GetRunningSyncRun(ctx context.Context, athleteID string) (*types.SyncRun, error) {
	if m.GetRunningSyncRunFunc != nil {
		return m.GetRunningSyncRunFunc(ctx, athleteID)
	}
	return nil, nil
}

func (m *MockStore) GetSyncConfig(ctx context.Context, athleteID string) (*types.SyncConfig, error) {
	if m.GetSyncConfigFunc != nil {
		return m.GetSyncConfigFunc(ctx, athleteID)
	}
	return nil, nil
}

func (m *MockStore) ListEnabledSyncConfigs(ctx context.Context, limit int) ([]*types.SyncConfig, error) {
	if m.ListEnabledSyncConfigsFunc != nil {
		return m.ListEnabledSyncConfigsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockStore) UpdateSyncConfig(ctx context.Context, athleteID string, data map[string]interface{}) error {
	if m.UpdateSyncConfigFunc != nil {
		return m.UpdateSyncConfigFunc(ctx, athleteID, data)
	}
	return nil
}

// --- Mock Telemetry Reader ---

type MockReader struct {
	ReadActivitiesFunc func(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error)
	ReadWellnessFunc   func(ctx context.Context, startDate, endDate string) (*types.RawWellnessBatch, error)
}

func (m *MockReader) ReadActivities(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error) {
	if m.ReadActivitiesFunc != nil {
		return m.ReadActivitiesFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockReader) ReadWellness(ctx context.Context, startDate, endDate string) (*types.RawWellnessBatch, error) {
	if m.ReadWellnessFunc != nil {
		return m.ReadWellnessFunc(ctx, startDate, endDate)
	}
	return &types.RawWellnessBatch{}, nil
}

// --- Mock Publisher ---

type MockPublisher struct {
	PublishCloudEventFunc func(ctx context.Context, topic string, e event.Event) (string, error)
}

func (m *MockPublisher) PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error) {
	if m.PublishCloudEventFunc != nil {
		return m.PublishCloudEventFunc(ctx, topic, e)
	}
	return "msg-id", nil
}

// --- Mock Blob Store ---

type MockBlobStore struct {
	WriteFunc func(ctx context.Context, bucket, object string, data []byte) error
	ReadFunc  func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *MockBlobStore) Write(ctx context.Context, bucket, object string, data []byte) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, bucket, object, data)
	}
	return nil
}

func (m *MockBlobStore) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, bucket, object)
	}
	return []byte("mock-data"), nil
}
