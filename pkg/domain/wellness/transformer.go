package wellness

import (
	"github.com/google/uuid"

	"github.com/stridewell/server/pkg/types"
)

// rhrHistoryWindow caps how many preceding values feed a record's trend.
const rhrHistoryWindow = 14

// Transformer converts raw wellness rows into canonical records.
type Transformer struct {
	sourceType string
	heightM    *float64 // optional; enables BMI on weight records
	newID      func() string
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithAthleteHeight enables BMI computation on weight records.
func WithAthleteHeight(heightM float64) Option {
	return func(t *Transformer) { t.heightM = &heightM }
}

// WithIDGenerator overrides wellness id generation, for tests.
func WithIDGenerator(f func() string) Option {
	return func(t *Transformer) { t.newID = f }
}

func NewTransformer(sourceType string, opts ...Option) *Transformer {
	t := &Transformer{sourceType: sourceType, newID: uuid.NewString}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TypeResult aggregates one stream of a batch transform.
type TypeResult struct {
	Records  []*types.WellnessRecord
	Warnings []string
	Errors   []*types.SyncError
}

// BatchResult aggregates a full three-stream transform.
type BatchResult struct {
	Sleep  TypeResult
	RHR    TypeResult
	Weight TypeResult
}

func (b *BatchResult) Records() []*types.WellnessRecord {
	out := make([]*types.WellnessRecord, 0, len(b.Sleep.Records)+len(b.RHR.Records)+len(b.Weight.Records))
	out = append(out, b.Sleep.Records...)
	out = append(out, b.RHR.Records...)
	out = append(out, b.Weight.Records...)
	return out
}

func (b *BatchResult) Errors() []*types.SyncError {
	var out []*types.SyncError
	out = append(out, b.Sleep.Errors...)
	out = append(out, b.RHR.Errors...)
	out = append(out, b.Weight.Errors...)
	return out
}

func (b *BatchResult) SuccessCount() int {
	return len(b.Sleep.Records) + len(b.RHR.Records) + len(b.Weight.Records)
}

func (b *BatchResult) FailureCount() int {
	return len(b.Sleep.Errors) + len(b.RHR.Errors) + len(b.Weight.Errors)
}

// TransformBatch runs all three streams. RHR rows must arrive in
// chronological order: the historical context for record i is the up-to-14
// preceding accepted values.
func (t *Transformer) TransformBatch(batch *types.RawWellnessBatch, athleteID string) *BatchResult {
	out := &BatchResult{}
	if batch == nil {
		return out
	}

	for _, raw := range batch.Sleep {
		record, warnings, err := t.TransformSleep(raw, athleteID)
		collect(&out.Sleep, record, warnings, err, "sleep")
	}

	var history []int
	for _, raw := range batch.RHR {
		record, warnings, err := t.TransformRHR(raw, history, athleteID)
		collect(&out.RHR, record, warnings, err, "rhr")
		if err == nil {
			history = append(history, raw.RestingHeartRate)
			if len(history) > rhrHistoryWindow {
				history = history[len(history)-rhrHistoryWindow:]
			}
		}
	}

	for _, raw := range batch.Weight {
		record, warnings, err := t.TransformWeight(raw, athleteID)
		collect(&out.Weight, record, warnings, err, "weight")
	}

	return out
}

func collect(tr *TypeResult, record *types.WellnessRecord, warnings []string, err error, phase string) {
	tr.Warnings = append(tr.Warnings, warnings...)
	if err != nil {
		if se, ok := err.(*types.SyncError); ok {
			se.Phase = phase
			tr.Errors = append(tr.Errors, se)
		} else {
			tr.Errors = append(tr.Errors, &types.SyncError{Kind: types.ErrTransformation, Phase: phase, Message: err.Error()})
		}
		return
	}
	tr.Records = append(tr.Records, record)
}
