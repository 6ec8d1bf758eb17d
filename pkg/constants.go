package shared

import "time"

const (
	ProjectID = "stridewell-project" // Can be overridden by env var in main if needed

	TopicSyncCompleted = "topic-sync-completed"

	CollectionSessions    = "sessions"
	CollectionWellness    = "wellness"
	CollectionSyncRuns    = "sync_runs"
	CollectionSyncConfigs = "sync_configs"

	// DefaultBatchSize is the fixed batch size for bulk imports. Batches run
	// strictly sequentially to keep dedupe and error attribution deterministic.
	DefaultBatchSize = 50

	// DefaultSchedulerInterval is how often the scheduler polls for due configs.
	DefaultSchedulerInterval = 5 * time.Minute

	// DefaultMaxConcurrentSyncs bounds how many due configs one tick fetches.
	DefaultMaxConcurrentSyncs = 3

	// DefaultLookbackDays is the wellness context window.
	DefaultLookbackDays = 30

	// IncrementalOverlap widens incremental sync windows to tolerate
	// late-arriving or clock-skewed source records.
	IncrementalOverlap = 24 * time.Hour

	// DateLayout is the canonical YYYY-MM-DD date format.
	DateLayout = "2006-01-02"
)
