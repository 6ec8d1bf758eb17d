// Package importer implements batched bulk import of activity telemetry with
// progress tracking, deduplication and rollback.
package importer

import (
	"sync"
	"time"

	shared "github.com/stridewell/server/pkg"
)

// Phase is one stage of an import run. Phases only move forward; no phase is
// ever revisited.
type Phase string

const (
	PhaseReading      Phase = "reading"
	PhaseTransforming Phase = "transforming"
	PhaseImporting    Phase = "importing"
	PhaseComplete     Phase = "complete"
	PhaseError        Phase = "error"
)

var phaseRank = map[Phase]int{
	PhaseReading:      0,
	PhaseTransforming: 1,
	PhaseImporting:    2,
	PhaseComplete:     3,
	PhaseError:        3,
}

// maxTrackedErrors bounds the retained error messages. The error counter
// keeps incrementing past the cap so summaries stay numerically accurate
// while memory stays bounded.
const maxTrackedErrors = 50

// Tracker follows one import run. Created per run, discarded after. Safe for
// concurrent use, though imports process strictly sequentially.
type Tracker struct {
	mu sync.Mutex

	now       shared.NowFunc
	startedAt time.Time

	phase      Phase
	total      int
	processed  int
	succeeded  int
	failed     int
	skipped    int
	batchIndex int
	batchCount int

	errors     []string
	errorCount int
}

// Snapshot is a point-in-time copy of a Tracker's state.
type Snapshot struct {
	Phase            Phase    `json:"phase"`
	Total            int      `json:"total"`
	Processed        int      `json:"processed"`
	Succeeded        int      `json:"succeeded"`
	Failed           int      `json:"failed"`
	Skipped          int      `json:"skipped"`
	BatchIndex       int      `json:"batch_index"`
	BatchCount       int      `json:"batch_count"`
	Percentage       float64  `json:"percentage"`
	ThroughputPerSec float64  `json:"throughput_per_sec"`
	ETAMillis        *int64   `json:"eta_ms,omitempty"` // nil until one item is processed
	ElapsedMs        int64    `json:"elapsed_ms"`
	Errors           []string `json:"errors,omitempty"`
	ErrorCount       int      `json:"error_count"`
}

func NewTracker(total int, now shared.NowFunc) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		now:       now,
		startedAt: now(),
		phase:     PhaseReading,
		total:     total,
	}
}

// SetPhase advances the phase. Backward transitions are ignored.
func (t *Tracker) SetPhase(p Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if phaseRank[p] >= phaseRank[t.phase] {
		t.phase = p
	}
}

func (t *Tracker) SetTotal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = n
}

// BeginBatch records the current batch position.
func (t *Tracker) BeginBatch(index, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batchIndex = index
	t.batchCount = count
}

// UpdateBatch advances the processed/succeeded/failed/skipped counters.
func (t *Tracker) UpdateBatch(processed, succeeded, failed, skipped int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed += processed
	t.succeeded += succeeded
	t.failed += failed
	t.skipped += skipped
}

// RecordError appends to the bounded error list and bumps the unbounded
// counter.
func (t *Tracker) RecordError(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errorCount++
	t.errors = append(t.errors, msg)
	if len(t.errors) > maxTrackedErrors {
		t.errors = t.errors[len(t.errors)-maxTrackedErrors:]
	}
}

// Complete marks the run finished.
func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseComplete
}

// Fail marks the run aborted by an infrastructure failure.
func (t *Tracker) Fail() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseError
}

// Snapshot returns a consistent copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := t.now().Sub(t.startedAt)
	elapsedMs := elapsed.Milliseconds()

	s := Snapshot{
		Phase:      t.phase,
		Total:      t.total,
		Processed:  t.processed,
		Succeeded:  t.succeeded,
		Failed:     t.failed,
		Skipped:    t.skipped,
		BatchIndex: t.batchIndex,
		BatchCount: t.batchCount,
		ElapsedMs:  elapsedMs,
		Errors:     append([]string(nil), t.errors...),
		ErrorCount: t.errorCount,
	}

	switch {
	case t.phase == PhaseComplete:
		s.Percentage = 100
	case t.total > 0:
		s.Percentage = float64(t.processed) / float64(t.total) * 100
	}

	if elapsedMs > 0 {
		s.ThroughputPerSec = float64(t.processed) / float64(elapsedMs) * 1000
	}

	if t.phase == PhaseComplete || t.phase == PhaseError {
		zero := int64(0)
		s.ETAMillis = &zero
	} else if t.processed > 0 {
		avgPerItem := float64(elapsedMs) / float64(t.processed)
		eta := int64(avgPerItem * float64(t.total-t.processed))
		s.ETAMillis = &eta
	}

	return s
}
