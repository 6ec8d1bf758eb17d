package shared

import (
	"context"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/stridewell/server/pkg/types"
)

// --- Persistence Interfaces ---

// Store is the persisted datastore surface the core consumes. Backends offer
// only simple predicate operations (equality/range/limit): no joins, no
// transactions. Consistency is application-level.
type Store interface {
	// Sessions (append/dedupe, never update)
	InsertSession(ctx context.Context, session *types.CanonicalSession) error
	GetSessionBySourceRecord(ctx context.Context, athleteID, sourceType, sourceRecordID string) (*types.CanonicalSession, error)
	ListSessions(ctx context.Context, athleteID string, startDate, endDate string, limit int) ([]*types.CanonicalSession, error)
	DeleteSessions(ctx context.Context, athleteID string, sessionIDs []string) (int, error)

	// Wellness (one record per athlete/type/date)
	InsertWellness(ctx context.Context, record *types.WellnessRecord) error
	GetWellnessByDate(ctx context.Context, athleteID string, dataType types.WellnessType, date string) (*types.WellnessRecord, error)
	ListWellness(ctx context.Context, athleteID string, startDate, endDate string, limit int) ([]*types.WellnessRecord, error)

	// Sync runs (append-then-update lifecycle)
	CreateSyncRun(ctx context.Context, run *types.SyncRun) error
	UpdateSyncRun(ctx context.Context, syncID string, data map[string]interface{}) error
	GetRunningSyncRun(ctx context.Context, athleteID string) (*types.SyncRun, error)

	// Sync configs (owned by user settings, read/rewritten by the scheduler)
	GetSyncConfig(ctx context.Context, athleteID string) (*types.SyncConfig, error)
	ListEnabledSyncConfigs(ctx context.Context, limit int) ([]*types.SyncConfig, error)
	UpdateSyncConfig(ctx context.Context, athleteID string, data map[string]interface{}) error
}

// --- Telemetry Reader Interfaces ---

// TelemetryReader yields raw device-export records. Implementations exist for
// FIT file directories and JSON exports; tests use the func-field mock.
type TelemetryReader interface {
	ReadActivities(ctx context.Context, filter *types.FilterSpec) ([]*types.RawActivityRecord, error)
	ReadWellness(ctx context.Context, startDate, endDate string) (*types.RawWellnessBatch, error)
}

// --- Messaging Interfaces ---

type Publisher interface {
	PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error)
}

// --- Storage Interfaces ---

type BlobStore interface {
	Write(ctx context.Context, bucket, object string, data []byte) error
	Read(ctx context.Context, bucket, object string) ([]byte, error)
}

// --- Clock ---

// NowFunc injects time into schedulers and trackers so tests never sleep.
type NowFunc func() time.Time
