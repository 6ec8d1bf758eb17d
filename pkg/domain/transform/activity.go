// Package transform converts raw device-export rows into canonical session
// records: validation, sport mapping, timestamp and duration normalization,
// and metric extraction.
package transform

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/stridewell/server/pkg/domain/sport"
	"github.com/stridewell/server/pkg/types"
)

// ActivityTransformer turns RawActivityRecords into CanonicalSessions.
type ActivityTransformer struct {
	// SourceLocation interprets naive timestamps. Defaults to time.Local,
	// which is only correct when host and device share a timezone.
	SourceLocation *time.Location

	// NewID generates session ids. Defaults to uuid.NewString.
	NewID func() string
}

// Result is the outcome of transforming one record. Either Session is set and
// Err is nil, or the other way round. Warnings accumulate in both cases.
type Result struct {
	RecordID string
	Session  *types.CanonicalSession
	Err      *types.SyncError
	Warnings []string
}

func (r *Result) Success() bool {
	return r.Err == nil
}

// BatchOptions controls TransformBatch.
type BatchOptions struct {
	// ContinueOnError keeps going past failed records. When false the batch
	// stops at the first failure and returns only the results produced so far.
	ContinueOnError bool
	// OnProgress, when set, is invoked once per record after it is processed.
	OnProgress func(processed, total int, res *Result)
}

func NewActivityTransformer(loc *time.Location) *ActivityTransformer {
	return &ActivityTransformer{SourceLocation: loc, NewID: uuid.NewString}
}

// Transform runs the full pipeline for one record: validate raw, map sport,
// normalize timestamp, parse duration, convert distance, derive title,
// extract metrics, assemble, validate canonical.
func (t *ActivityTransformer) Transform(raw *types.RawActivityRecord, athleteID, sourceType string) *Result {
	recordID := strconv.FormatInt(raw.ID, 10)
	res := &Result{RecordID: recordID}

	rawCheck := ValidateRawActivity(raw)
	res.Warnings = append(res.Warnings, rawCheck.Warnings...)
	if !rawCheck.Valid() {
		res.Err = types.NewValidationError(recordID, joinReasons(rawCheck.Errors))
		return res
	}

	mapped := sport.Map(raw.Sport)

	instant, date, err := NormalizeTimestamp(raw.StartTime, t.SourceLocation)
	if err != nil {
		res.Err = types.NewValidationError(recordID, err.Error())
		return res
	}

	durationMin, err := ParseDurationMinutes(raw.MovingTime)
	if err != nil {
		res.Err = types.NewValidationError(recordID, fmt.Sprintf("moving time: %v", err))
		return res
	}

	var distanceM *int
	if raw.DistanceKM != nil {
		m := int(math.Round(*raw.DistanceKM * 1000))
		distanceM = &m
	}

	newID := t.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	session := &types.CanonicalSession{
		SessionID:         newID(),
		AthleteID:         athleteID,
		Date:              date,
		Sport:             mapped,
		Title:             deriveTitle(raw.Name, mapped, instant),
		ActualDurationMin: durationMin,
		ActualDistanceM:   distanceM,
		Status:            types.SessionStatusCompleted,
		SourceType:        sourceType,
		Metadata: &types.SessionMetadata{
			SourceRecordID: recordID,
			Performance:    ExtractPerformanceMetrics(raw, mapped),
			Environmental:  ExtractEnvironmentalMetrics(raw),
		},
	}

	canonCheck := ValidateCanonicalSession(session)
	res.Warnings = append(res.Warnings, canonCheck.Warnings...)
	if !canonCheck.Valid() {
		res.Err = types.NewValidationError(recordID, joinReasons(canonCheck.Errors))
		return res
	}

	res.Session = session
	return res
}

// TransformBatch processes records sequentially in input order.
func (t *ActivityTransformer) TransformBatch(records []*types.RawActivityRecord, athleteID, sourceType string, opts BatchOptions) []*Result {
	results := make([]*Result, 0, len(records))
	for i, raw := range records {
		res := t.Transform(raw, athleteID, sourceType)
		results = append(results, res)
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(records), res)
		}
		if !res.Success() && !opts.ContinueOnError {
			break
		}
	}
	return results
}

// deriveTitle prefers the source name, falling back to "{Sport} - {date}".
func deriveTitle(name string, s types.Sport, start time.Time) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%s - %s", s.DisplayName(), start.Format("Jan 2, 2006"))
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}
