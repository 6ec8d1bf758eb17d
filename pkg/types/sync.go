package types

import "time"

// Sync frequencies a config can request.
const (
	FrequencyDaily      = "daily"
	FrequencyWeekly     = "weekly"
	FrequencyManualOnly = "manual_only"
)

// Sync run states. A run is created as running before any work starts and
// updated exactly once at completion; a crash mid-run leaves an observable
// running record rather than silence.
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// How a run was triggered.
const (
	SyncTypeManual    = "manual"
	SyncTypeScheduled = "scheduled"
)

// Data type keys a sync can request.
const (
	DataTypeActivities = "activities"
	DataTypeSleep      = "sleep"
	DataTypeRHR        = "rhr"
	DataTypeWeight     = "weight"
)

// SyncConfig is the per-athlete scheduling record owned by user settings.
// The scheduler reads it to decide due-ness and rewrites last_sync_at /
// next_sync_at after each scheduled trigger.
type SyncConfig struct {
	AthleteID          string     `json:"athlete_id" firestore:"athlete_id"`
	Frequency          string     `json:"frequency" firestore:"frequency"`
	PreferredTime      string     `json:"preferred_time" firestore:"preferred_time"` // "HH:MM:SS"
	LastSyncAt         *time.Time `json:"last_sync_at,omitempty" firestore:"last_sync_at,omitempty"`
	NextSyncAt         *time.Time `json:"next_sync_at,omitempty" firestore:"next_sync_at,omitempty"`
	DataTypes          []string   `json:"data_types" firestore:"data_types"`
	Enabled            bool       `json:"enabled" firestore:"enabled"`
	ActivitySourcePath string     `json:"activity_source_path,omitempty" firestore:"activity_source_path,omitempty"`
	WellnessSourcePath string     `json:"wellness_source_path,omitempty" firestore:"wellness_source_path,omitempty"`
}

// SyncRun is the auditable record of one background sync.
type SyncRun struct {
	SyncID             string            `json:"sync_id" firestore:"sync_id"`
	AthleteID          string            `json:"athlete_id" firestore:"athlete_id"`
	SyncType           string            `json:"sync_type" firestore:"sync_type"`
	DataTypes          []string          `json:"data_types" firestore:"data_types"`
	Status             string            `json:"status" firestore:"status"`
	StartedAt          time.Time         `json:"started_at" firestore:"started_at"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty" firestore:"completed_at,omitempty"`
	DurationMs         int64             `json:"duration_ms" firestore:"duration_ms"`
	ActivitiesImported int               `json:"activities_imported" firestore:"activities_imported"`
	ActivitiesSkipped  int               `json:"activities_skipped" firestore:"activities_skipped"`
	WellnessImported   int               `json:"wellness_imported" firestore:"wellness_imported"`
	WellnessSkipped    int               `json:"wellness_skipped" firestore:"wellness_skipped"`
	Errors             []*SyncError      `json:"errors,omitempty" firestore:"errors,omitempty"`
	ConfigSnapshot     map[string]string `json:"config_snapshot,omitempty" firestore:"config_snapshot,omitempty"`
}
