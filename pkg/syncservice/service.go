// Package syncservice orchestrates background sync runs: it pulls activity
// and wellness telemetry through the transform pipeline, persists results,
// and keeps an auditable sync run record for every attempt.
package syncservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/domain/transform"
	"github.com/stridewell/server/pkg/domain/wellness"
	"github.com/stridewell/server/pkg/importer"
	"github.com/stridewell/server/pkg/infrastructure/pubsub"
	"github.com/stridewell/server/pkg/types"
)

// EventTypeSyncCompleted is the CloudEvent type published after every run.
const EventTypeSyncCompleted = "com.stridewell.sync.completed"

// Service runs one athlete's sync end to end. The run record is created
// before any work starts and updated exactly once at the end, so a crash
// mid-run leaves an observable running record.
type Service struct {
	store      shared.Store
	reader     shared.TelemetryReader
	importer   *importer.Importer
	wellness   *wellness.Transformer
	sourceType string
	logger     *slog.Logger

	publisher    shared.Publisher // optional
	blobs        shared.BlobStore // optional
	reportBucket string

	now   shared.NowFunc
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher enables the sync-completed CloudEvent. Publish failures are
// logged, never fatal.
func WithPublisher(p shared.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithReportArchive enables archival of the run report to blob storage.
// Archive failures are logged, never fatal.
func WithReportArchive(b shared.BlobStore, bucket string) Option {
	return func(s *Service) {
		s.blobs = b
		s.reportBucket = bucket
	}
}

func WithClock(now shared.NowFunc) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

func NewService(store shared.Store, reader shared.TelemetryReader, imp *importer.Importer, wt *wellness.Transformer, sourceType string, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:      store,
		reader:     reader,
		importer:   imp,
		wellness:   wt,
		sourceType: sourceType,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunOptions controls one sync run.
type RunOptions struct {
	AthleteID string
	// SyncType is "manual" or "scheduled".
	SyncType string
	// DataTypes defaults to the config's data types, or all of them.
	DataTypes []string
	// DryRun computes results without persisting sessions or wellness records.
	// The sync run record itself is still written.
	DryRun bool
	// ForceRefresh syncs the full history instead of the incremental window.
	ForceRefresh bool
}

// SyncAthleteData runs one sync. The error return is reserved for failures of
// the run record itself; everything else is collected into the run.
func (s *Service) SyncAthleteData(ctx context.Context, opts RunOptions) (*types.SyncRun, error) {
	started := s.now()

	cfg, err := s.store.GetSyncConfig(ctx, opts.AthleteID)
	if err != nil {
		s.logger.Warn("Could not load sync config, proceeding with defaults",
			"athlete_id", opts.AthleteID, "error", err)
	}

	dataTypes := resolveDataTypes(opts.DataTypes, cfg)

	run := &types.SyncRun{
		SyncID:         s.newID(),
		AthleteID:      opts.AthleteID,
		SyncType:       opts.SyncType,
		DataTypes:      dataTypes,
		Status:         types.SyncStatusRunning,
		StartedAt:      started,
		ConfigSnapshot: snapshotConfig(cfg),
	}

	// The run record must exist before any work starts. If this write fails
	// there is nothing to attribute results to, so the run aborts here.
	if err := s.store.CreateSyncRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create sync run: %w", err)
	}

	startDate, endDate := s.syncWindow(cfg, opts.ForceRefresh, started)

	s.logger.Info("Starting sync",
		"sync_id", run.SyncID,
		"athlete_id", opts.AthleteID,
		"sync_type", opts.SyncType,
		"data_types", dataTypes,
		"start_date", startDate,
		"end_date", endDate,
		"dry_run", opts.DryRun)

	if containsType(dataTypes, types.DataTypeActivities) {
		s.syncActivities(ctx, run, opts, startDate, endDate)
	}
	if wantsWellness(dataTypes) {
		s.syncWellness(ctx, run, opts, dataTypes, startDate, endDate)
	}

	completed := s.now()
	run.CompletedAt = &completed
	run.DurationMs = completed.Sub(started).Milliseconds()
	run.Status = types.SyncStatusCompleted
	if !runSucceeded(run) {
		run.Status = types.SyncStatusFailed
	}

	update := map[string]interface{}{
		"status":              run.Status,
		"completed_at":        completed,
		"duration_ms":         run.DurationMs,
		"activities_imported": run.ActivitiesImported,
		"activities_skipped":  run.ActivitiesSkipped,
		"wellness_imported":   run.WellnessImported,
		"wellness_skipped":    run.WellnessSkipped,
		"errors":              run.Errors,
	}
	if err := s.store.UpdateSyncRun(ctx, run.SyncID, update); err != nil {
		return run, fmt.Errorf("finalize sync run %s: %w", run.SyncID, err)
	}

	s.logger.Info("Sync finished",
		"sync_id", run.SyncID,
		"athlete_id", opts.AthleteID,
		"status", run.Status,
		"activities_imported", run.ActivitiesImported,
		"wellness_imported", run.WellnessImported,
		"errors", len(run.Errors),
		"duration_ms", run.DurationMs)

	s.publishCompletion(ctx, run)
	s.archiveReport(ctx, run)

	return run, nil
}

// syncActivities runs the bulk importer for the window. A reader failure
// fails the phase, not the whole run.
func (s *Service) syncActivities(ctx context.Context, run *types.SyncRun, opts RunOptions, startDate, endDate string) {
	result, err := s.importer.ImportActivities(ctx, importer.Options{
		AthleteID:       opts.AthleteID,
		SourceType:      s.sourceType,
		Filter:          &types.FilterSpec{StartDate: startDate, EndDate: endDate},
		DryRun:          opts.DryRun,
		ContinueOnError: true,
	})
	if err != nil {
		run.Errors = append(run.Errors, &types.SyncError{
			Kind:    types.ErrSync,
			Phase:   "activities",
			Message: err.Error(),
		})
		return
	}

	run.ActivitiesImported = result.Imported
	run.ActivitiesSkipped = result.Skipped
	for _, e := range result.Errors {
		if e.Phase == "" {
			e.Phase = "activities"
		}
		run.Errors = append(run.Errors, e)
	}
}

// syncWellness reads the raw batch, transforms the requested streams and
// persists one record per athlete/type/date, skipping dates already stored.
func (s *Service) syncWellness(ctx context.Context, run *types.SyncRun, opts RunOptions, dataTypes []string, startDate, endDate string) {
	batch, err := s.reader.ReadWellness(ctx, startDate, endDate)
	if err != nil {
		run.Errors = append(run.Errors, &types.SyncError{
			Kind:    types.ErrSync,
			Phase:   "wellness",
			Message: fmt.Sprintf("read wellness: %v", err),
		})
		return
	}

	if batch == nil {
		batch = &types.RawWellnessBatch{}
	}
	pruneBatch(batch, dataTypes)
	result := s.wellness.TransformBatch(batch, opts.AthleteID)
	run.Errors = append(run.Errors, result.Errors()...)

	for _, record := range result.Records() {
		existing, err := s.store.GetWellnessByDate(ctx, opts.AthleteID, record.DataType, record.Date)
		if err != nil {
			run.Errors = append(run.Errors, &types.SyncError{
				Kind:    types.ErrBatch,
				Phase:   "wellness",
				ItemID:  string(record.DataType) + "/" + record.Date,
				Message: fmt.Sprintf("duplicate check: %v", err),
			})
			continue
		}
		if existing != nil {
			run.WellnessSkipped++
			continue
		}

		if !opts.DryRun {
			if err := s.store.InsertWellness(ctx, record); err != nil {
				run.Errors = append(run.Errors, &types.SyncError{
					Kind:    types.ErrBatch,
					Phase:   "wellness",
					ItemID:  string(record.DataType) + "/" + record.Date,
					Message: fmt.Sprintf("insert wellness: %v", err),
				})
				continue
			}
		}
		run.WellnessImported++
	}
}

// syncWindow computes the date range for this run. Incremental runs start a
// day before the last sync to tolerate late-arriving source records; a force
// refresh or a never-synced config gets the full range.
func (s *Service) syncWindow(cfg *types.SyncConfig, forceRefresh bool, now time.Time) (string, string) {
	var since time.Time
	if !forceRefresh && cfg != nil && cfg.LastSyncAt != nil {
		since = *cfg.LastSyncAt
	}
	return transform.DateRangeFor(since, now)
}

func (s *Service) publishCompletion(ctx context.Context, run *types.SyncRun) {
	if s.publisher == nil {
		return
	}

	e, err := pubsub.NewCloudEvent("stridewell/syncservice", EventTypeSyncCompleted, run)
	if err != nil {
		s.logger.Warn("Could not encode sync completion event", "sync_id", run.SyncID, "error", err)
		return
	}
	e.SetID(run.SyncID)

	if _, err := s.publisher.PublishCloudEvent(ctx, shared.TopicSyncCompleted, e); err != nil {
		s.logger.Warn("Could not publish sync completion event", "sync_id", run.SyncID, "error", err)
	}
}

func (s *Service) archiveReport(ctx context.Context, run *types.SyncRun) {
	if s.blobs == nil || s.reportBucket == "" {
		return
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		s.logger.Warn("Could not encode sync report", "sync_id", run.SyncID, "error", err)
		return
	}

	object := fmt.Sprintf("sync-reports/%s/%s.json", run.AthleteID, run.SyncID)
	if err := s.blobs.Write(ctx, s.reportBucket, object, data); err != nil {
		s.logger.Warn("Could not archive sync report", "sync_id", run.SyncID, "object", object, "error", err)
	}
}

// runSucceeded applies the partial-success rule: a run completes when it
// produced no errors or imported at least one record.
func runSucceeded(run *types.SyncRun) bool {
	if len(run.Errors) == 0 {
		return true
	}
	return run.ActivitiesImported+run.WellnessImported > 0
}

func resolveDataTypes(requested []string, cfg *types.SyncConfig) []string {
	if len(requested) > 0 {
		return requested
	}
	if cfg != nil && len(cfg.DataTypes) > 0 {
		return cfg.DataTypes
	}
	return []string{types.DataTypeActivities, types.DataTypeSleep, types.DataTypeRHR, types.DataTypeWeight}
}

func containsType(dataTypes []string, want string) bool {
	for _, dt := range dataTypes {
		if dt == want {
			return true
		}
	}
	return false
}

func wantsWellness(dataTypes []string) bool {
	return containsType(dataTypes, types.DataTypeSleep) ||
		containsType(dataTypes, types.DataTypeRHR) ||
		containsType(dataTypes, types.DataTypeWeight)
}

// pruneBatch drops streams the run did not request.
func pruneBatch(batch *types.RawWellnessBatch, dataTypes []string) {
	if !containsType(dataTypes, types.DataTypeSleep) {
		batch.Sleep = nil
	}
	if !containsType(dataTypes, types.DataTypeRHR) {
		batch.RHR = nil
	}
	if !containsType(dataTypes, types.DataTypeWeight) {
		batch.Weight = nil
	}
}

func snapshotConfig(cfg *types.SyncConfig) map[string]string {
	if cfg == nil {
		return nil
	}
	snap := map[string]string{
		"frequency":      cfg.Frequency,
		"preferred_time": cfg.PreferredTime,
		"enabled":        strconv.FormatBool(cfg.Enabled),
	}
	if cfg.ActivitySourcePath != "" {
		snap["activity_source_path"] = cfg.ActivitySourcePath
	}
	if cfg.WellnessSourcePath != "" {
		snap["wellness_source_path"] = cfg.WellnessSourcePath
	}
	return snap
}
