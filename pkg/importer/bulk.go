package importer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/domain/transform"
	"github.com/stridewell/server/pkg/types"
)

// Importer is the bulk import orchestrator: it reads, filters, batches,
// transforms, deduplicates and persists activity records. Batches run
// strictly sequentially, items within a batch too. That keeps duplicate
// detection and error attribution deterministic and bounds peak memory.
type Importer struct {
	store       shared.Store
	reader      shared.TelemetryReader
	transformer *transform.ActivityTransformer
	logger      *slog.Logger
	batchSize   int
	now         shared.NowFunc
}

// Options controls one import run.
type Options struct {
	AthleteID  string
	SourceType string
	Filter     *types.FilterSpec
	// DryRun computes would-be results without persisting anything.
	DryRun bool
	// ContinueOnError keeps transforming past per-record failures. Batch-level
	// infrastructure failures are not retried either way.
	ContinueOnError bool
	// OnProgress, when set, receives a tracker snapshot after every record.
	OnProgress func(Snapshot)
}

// RunResult summarizes one import run. Success is true when nothing failed
// or when at least one record imported; partial success still counts.
type RunResult struct {
	Success            bool              `json:"success"`
	TotalRead          int               `json:"total_read"`
	Filtered           int               `json:"filtered"`
	Imported           int               `json:"imported"`
	Skipped            int               `json:"skipped"` // duplicates, counted apart from failures
	Failed             int               `json:"failed"`
	SuccessRatePct     int               `json:"success_rate_pct"`
	ImportedSessionIDs []string          `json:"imported_session_ids,omitempty"`
	Errors             []*types.SyncError `json:"errors,omitempty"`
	DurationMs         int64             `json:"duration_ms"`
}

// Option configures an Importer.
type Option func(*Importer)

func WithBatchSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

func WithClock(now shared.NowFunc) Option {
	return func(i *Importer) { i.now = now }
}

func NewImporter(store shared.Store, reader shared.TelemetryReader, transformer *transform.ActivityTransformer, logger *slog.Logger, opts ...Option) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	imp := &Importer{
		store:       store,
		reader:      reader,
		transformer: transformer,
		logger:      logger,
		batchSize:   shared.DefaultBatchSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// ImportActivities runs one full import. Per-record errors are collected in
// the result, never returned; the error return is reserved for failures that
// prevent the run from starting at all (the reader).
func (imp *Importer) ImportActivities(ctx context.Context, opts Options) (*RunResult, error) {
	started := imp.now()
	tracker := NewTracker(0, imp.now)
	result := &RunResult{}

	records, err := imp.reader.ReadActivities(ctx, opts.Filter)
	if err != nil {
		tracker.Fail()
		return nil, fmt.Errorf("read activities: %w", err)
	}
	result.TotalRead = len(records)

	filtered := transform.FilterActivities(records, opts.Filter, imp.transformer.SourceLocation)
	result.Filtered = len(filtered)
	tracker.SetTotal(len(filtered))

	imp.logger.Info("Starting activity import",
		"athlete_id", opts.AthleteID,
		"total_read", result.TotalRead,
		"filtered", result.Filtered,
		"dry_run", opts.DryRun)

	tracker.SetPhase(PhaseTransforming)
	results := imp.transformer.TransformBatch(filtered, opts.AthleteID, opts.SourceType, transform.BatchOptions{
		ContinueOnError: opts.ContinueOnError,
		OnProgress: func(processed, total int, res *transform.Result) {
			if !res.Success() {
				tracker.UpdateBatch(1, 0, 1, 0)
				tracker.RecordError(res.Err.Error())
			}
			if opts.OnProgress != nil {
				opts.OnProgress(tracker.Snapshot())
			}
		},
	})

	var sessions []*types.CanonicalSession
	for _, res := range results {
		if res.Success() {
			sessions = append(sessions, res.Session)
		} else {
			result.Failed++
			result.Errors = append(result.Errors, res.Err)
		}
	}

	tracker.SetPhase(PhaseImporting)
	batches := chunkSessions(sessions, imp.batchSize)
	for bi, batch := range batches {
		tracker.BeginBatch(bi+1, len(batches))
		imp.importBatch(ctx, batch, opts, tracker, result)
	}

	tracker.Complete()
	if opts.OnProgress != nil {
		opts.OnProgress(tracker.Snapshot())
	}

	result.DurationMs = imp.now().Sub(started).Milliseconds()
	result.Success = len(result.Errors) == 0 || result.Imported > 0
	if result.Filtered > 0 {
		result.SuccessRatePct = int(math.Round(float64(result.Imported) / float64(result.Filtered) * 100))
	}

	imp.logger.Info("Activity import finished",
		"athlete_id", opts.AthleteID,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"success_rate_pct", result.SuccessRatePct)

	return result, nil
}

// importBatch persists one batch. A store failure is a batch-level failure:
// the failing item and every item after it in the batch are marked failed
// with the same error, and processing resumes at the next batch. No per-item
// retry.
func (imp *Importer) importBatch(ctx context.Context, batch []*types.CanonicalSession, opts Options, tracker *Tracker, result *RunResult) {
	for i, session := range batch {
		sourceRecordID := ""
		if session.Metadata != nil {
			sourceRecordID = session.Metadata.SourceRecordID
		}

		existing, err := imp.store.GetSessionBySourceRecord(ctx, opts.AthleteID, opts.SourceType, sourceRecordID)
		if err != nil {
			imp.failRemainder(batch[i:], fmt.Sprintf("duplicate check: %v", err), tracker, result, opts)
			return
		}
		if existing != nil {
			result.Skipped++
			tracker.UpdateBatch(1, 0, 0, 1)
			if opts.OnProgress != nil {
				opts.OnProgress(tracker.Snapshot())
			}
			continue
		}

		if !opts.DryRun {
			if err := imp.store.InsertSession(ctx, session); err != nil {
				imp.failRemainder(batch[i:], fmt.Sprintf("insert session: %v", err), tracker, result, opts)
				return
			}
		}

		result.Imported++
		result.ImportedSessionIDs = append(result.ImportedSessionIDs, session.SessionID)
		tracker.UpdateBatch(1, 1, 0, 0)
		if opts.OnProgress != nil {
			opts.OnProgress(tracker.Snapshot())
		}
	}
}

func (imp *Importer) failRemainder(remaining []*types.CanonicalSession, msg string, tracker *Tracker, result *RunResult, opts Options) {
	for _, session := range remaining {
		itemID := session.SessionID
		if session.Metadata != nil && session.Metadata.SourceRecordID != "" {
			itemID = session.Metadata.SourceRecordID
		}
		batchErr := &types.SyncError{Kind: types.ErrBatch, ItemID: itemID, Message: msg}
		result.Failed++
		result.Errors = append(result.Errors, batchErr)
		tracker.UpdateBatch(1, 0, 1, 0)
		tracker.RecordError(batchErr.Error())
	}
	imp.logger.Error("Batch failed", "athlete_id", opts.AthleteID, "failed_items", len(remaining), "error", msg)
	if opts.OnProgress != nil {
		opts.OnProgress(tracker.Snapshot())
	}
}

// Rollback bulk-deletes previously imported sessions, scoped to one athlete.
// Used for crash recovery and re-run idempotency.
func (imp *Importer) Rollback(ctx context.Context, athleteID string, sessionIDs []string) (int, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	deleted, err := imp.store.DeleteSessions(ctx, athleteID, sessionIDs)
	if err != nil {
		return deleted, fmt.Errorf("rollback sessions: %w", err)
	}
	imp.logger.Info("Rolled back sessions", "athlete_id", athleteID, "deleted", deleted)
	return deleted, nil
}

func chunkSessions(sessions []*types.CanonicalSession, size int) [][]*types.CanonicalSession {
	if size <= 0 {
		size = shared.DefaultBatchSize
	}
	var out [][]*types.CanonicalSession
	for start := 0; start < len(sessions); start += size {
		end := start + size
		if end > len(sessions) {
			end = len(sessions)
		}
		out = append(out, sessions[start:end])
	}
	return out
}
