package transform

import (
	"testing"
	"time"

	"github.com/stridewell/server/pkg/types"
)

func newTestTransformer() *ActivityTransformer {
	tr := NewActivityTransformer(time.UTC)
	n := 0
	tr.NewID = func() string {
		n++
		return "session-" + string(rune('a'+n-1))
	}
	return tr
}

func TestTransform_FullPipeline(t *testing.T) {
	tr := newTestTransformer()
	raw := &types.RawActivityRecord{
		ID:         42,
		Name:       "Tempo intervals",
		StartTime:  "2024-03-01T06:30:00Z",
		Sport:      "running",
		DistanceKM: floatPtr(12.345),
		MovingTime: "1:01:20",
		AvgHR:      intPtr(152),
		MaxHR:      intPtr(181),
	}

	res := tr.Transform(raw, "athlete-1", "garmin")
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	s := res.Session
	if s.Sport != types.SportRun {
		t.Errorf("sport = %q", s.Sport)
	}
	if s.Date != "2024-03-01" {
		t.Errorf("date = %q", s.Date)
	}
	if s.ActualDurationMin != 61 {
		t.Errorf("duration = %d, want 61", s.ActualDurationMin)
	}
	if s.ActualDistanceM == nil || *s.ActualDistanceM != 12345 {
		t.Errorf("distance = %v, want 12345", s.ActualDistanceM)
	}
	if s.Title != "Tempo intervals" {
		t.Errorf("title = %q", s.Title)
	}
	if s.Metadata == nil || s.Metadata.SourceRecordID != "42" {
		t.Errorf("metadata = %+v", s.Metadata)
	}
	if s.Metadata.Performance == nil || s.Metadata.Performance.AvgHR == nil {
		t.Error("expected performance metrics with HR pair")
	}
}

func TestTransform_DerivedTitle(t *testing.T) {
	tr := newTestTransformer()
	raw := &types.RawActivityRecord{
		ID:         7,
		StartTime:  "2024-03-01T06:30:00Z",
		Sport:      "cycling",
		MovingTime: "30:00",
	}
	res := tr.Transform(raw, "athlete-1", "garmin")
	if !res.Success() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if res.Session.Title != "Bike - Mar 1, 2024" {
		t.Errorf("title = %q", res.Session.Title)
	}
}

func TestTransform_ValidationFailureProducesNoSession(t *testing.T) {
	tr := newTestTransformer()
	raw := &types.RawActivityRecord{ID: 9, StartTime: "2024-03-01T06:30:00Z", Sport: "running"}
	// zero moving time -> duration 0 -> canonical validation rejects
	res := tr.Transform(raw, "athlete-1", "garmin")
	if res.Success() {
		t.Fatal("expected failure for zero duration")
	}
	if res.Err.Kind != types.ErrValidation {
		t.Errorf("kind = %q, want validation", res.Err.Kind)
	}
	if res.Session != nil {
		t.Error("failed transform must not produce a session")
	}
}

func TestTransformBatch_StopsOnFirstFailure(t *testing.T) {
	tr := newTestTransformer()
	records := []*types.RawActivityRecord{
		{ID: 1, StartTime: "2024-03-01T06:30:00Z", Sport: "running", MovingTime: "30:00"},
		{ID: 2, StartTime: "bad", Sport: "running", MovingTime: "30:00"},
		{ID: 3, StartTime: "2024-03-03T06:30:00Z", Sport: "running", MovingTime: "30:00"},
	}

	results := tr.TransformBatch(records, "athlete-1", "garmin", BatchOptions{ContinueOnError: false})
	if len(results) != 2 {
		t.Fatalf("expected 2 results (stop at first failure), got %d", len(results))
	}
	if results[0].Success() == false || results[1].Success() == true {
		t.Error("unexpected result statuses")
	}
}

func TestTransformBatch_ProgressCallback(t *testing.T) {
	tr := newTestTransformer()
	records := []*types.RawActivityRecord{
		{ID: 1, StartTime: "2024-03-01T06:30:00Z", Sport: "running", MovingTime: "30:00"},
		{ID: 2, StartTime: "2024-03-02T06:30:00Z", Sport: "running", MovingTime: "30:00"},
	}

	var calls []int
	tr.TransformBatch(records, "athlete-1", "garmin", BatchOptions{
		ContinueOnError: true,
		OnProgress: func(processed, total int, res *Result) {
			if total != 2 {
				t.Errorf("total = %d, want 2", total)
			}
			calls = append(calls, processed)
		},
	})
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("progress calls = %v, want [1 2]", calls)
	}
}
