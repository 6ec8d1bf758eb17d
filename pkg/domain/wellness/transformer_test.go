package wellness

import (
	"fmt"
	"testing"

	"github.com/stridewell/server/pkg/types"
)

func newTestTransformer(opts ...Option) *Transformer {
	n := 0
	opts = append(opts, WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("w-%d", n)
	}))
	return NewTransformer("garmin", opts...)
}

func TestTransformSleep_Efficiency(t *testing.T) {
	tr := newTestTransformer()
	record, warnings, err := tr.TransformSleep(&types.RawSleepRecord{
		Day:        "2024-03-01",
		TotalSleep: "8:00:00",
		DeepSleep:  "1:30:00",
		LightSleep: "4:30:00",
		REMSleep:   "1:45:00",
		AwakeTime:  "0:15:00",
	}, "athlete-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	sleep := record.Value.Sleep
	if sleep.TotalSleepMin != 480 {
		t.Errorf("total = %d, want 480", sleep.TotalSleepMin)
	}
	if sleep.SleepEfficiencyPct < 96.8 || sleep.SleepEfficiencyPct > 97.0 {
		t.Errorf("efficiency = %.1f, want ≈96.9", sleep.SleepEfficiencyPct)
	}
	if record.DataType != types.WellnessSleep || !record.MatchesVariant() {
		t.Error("record must carry exactly the sleep variant")
	}
}

func TestTransformSleep_ShortDurationWarning(t *testing.T) {
	tr := newTestTransformer()
	_, warnings, err := tr.TransformSleep(&types.RawSleepRecord{
		Day:        "2024-03-01",
		TotalSleep: "2:30:00", // 150 min
	}, "athlete-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, w := range warnings {
		if w == "short sleep duration: 150 min" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected short duration warning, got %v", warnings)
	}
}

func TestTransformSleep_ScorePassthrough(t *testing.T) {
	tr := newTestTransformer()
	score := 82
	record, _, err := tr.TransformSleep(&types.RawSleepRecord{
		Day:        "2024-03-01",
		TotalSleep: "7:00:00",
		Score:      &score,
	}, "athlete-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Value.Sleep.SleepScore == nil || *record.Value.Sleep.SleepScore != 82 {
		t.Error("score must pass through verbatim")
	}
}

func TestTransformRHR_HardReject(t *testing.T) {
	tr := newTestTransformer()
	for _, bpm := range []int{29, 121, 0, 200} {
		record, _, err := tr.TransformRHR(&types.RawRHRRecord{Day: "2024-03-01", RestingHeartRate: bpm}, nil, "athlete-1")
		if err == nil {
			t.Errorf("bpm=%d: expected hard rejection", bpm)
		}
		if record != nil {
			t.Errorf("bpm=%d: rejection must produce no record", bpm)
		}
	}
}

func TestTransformRHR_QualityBuckets(t *testing.T) {
	tests := []struct {
		bpm  int
		want string
	}{
		{45, "excellent"},
		{50, "excellent"},
		{52, "good"},
		{60, "good"},
		{65, "fair"},
		{75, "poor"},
	}
	for _, tc := range tests {
		if got := RHRQuality(tc.bpm); got != tc.want {
			t.Errorf("RHRQuality(%d) = %q, want %q", tc.bpm, got, tc.want)
		}
	}
}

func TestTransformRHR_SoftWarning(t *testing.T) {
	tr := newTestTransformer()
	_, warnings, err := tr.TransformRHR(&types.RawRHRRecord{Day: "2024-03-01", RestingHeartRate: 38}, nil, "athlete-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("expected one soft warning, got %v", warnings)
	}
}

func TestRHRTrend(t *testing.T) {
	if RHRTrend([]int{60, 60, 60, 60, 60, 60, 60}) != nil {
		t.Error("seven points or fewer must yield nil trend")
	}

	// previous mean 60, recent mean 55 -> improving (lower is better)
	history := []int{60, 60, 60, 60, 60, 60, 60, 55, 55, 55, 55, 55, 55, 55}
	trend := RHRTrend(history)
	if trend == nil || *trend != "improving" {
		t.Errorf("trend = %v, want improving", trend)
	}

	// previous mean 55, recent mean 60 -> declining
	rising := []int{55, 55, 55, 55, 55, 55, 55, 60, 60, 60, 60, 60, 60, 60}
	trend = RHRTrend(rising)
	if trend == nil || *trend != "declining" {
		t.Errorf("trend = %v, want declining", trend)
	}

	// within the ±2 deadband -> stable
	flat := []int{60, 60, 60, 60, 60, 60, 60, 61, 61, 61, 61, 61, 61, 61}
	trend = RHRTrend(flat)
	if trend == nil || *trend != "stable" {
		t.Errorf("trend = %v, want stable", trend)
	}
}

func TestTransformWeight_Bounds(t *testing.T) {
	tr := newTestTransformer()

	for _, kg := range []float64{29.9, 250.1} {
		record, _, err := tr.TransformWeight(&types.RawWeightRecord{Day: "2024-03-01", WeightKG: kg}, "athlete-1")
		if err == nil || record != nil {
			t.Errorf("kg=%.1f: expected hard rejection", kg)
		}
	}

	_, warnings, err := tr.TransformWeight(&types.RawWeightRecord{Day: "2024-03-01", WeightKG: 35}, "athlete-1")
	if err != nil {
		t.Fatalf("35 kg must pass with a warning: %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("expected soft warning, got %v", warnings)
	}
}

func TestTransformWeight_BMIOnlyWithConfiguredHeight(t *testing.T) {
	noHeight := newTestTransformer()
	record, _, err := noHeight.TransformWeight(&types.RawWeightRecord{Day: "2024-03-01", WeightKG: 72}, "athlete-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Value.Weight.BMI != nil {
		t.Error("BMI must be absent without a configured height")
	}

	withHeight := newTestTransformer(WithAthleteHeight(1.80))
	record, _, err = withHeight.TransformWeight(&types.RawWeightRecord{Day: "2024-03-01", WeightKG: 72}, "athlete-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Value.Weight.BMI == nil {
		t.Fatal("expected BMI with configured height")
	}
	if *record.Value.Weight.BMI != 22.2 {
		t.Errorf("BMI = %.1f, want 22.2", *record.Value.Weight.BMI)
	}
}

func TestTransformWeight_CompositionWarnings(t *testing.T) {
	tr := newTestTransformer()
	fat := 55.0
	water := 40.0
	_, warnings, err := tr.TransformWeight(&types.RawWeightRecord{
		Day:          "2024-03-01",
		WeightKG:     80,
		BodyFatPct:   &fat,
		BodyWaterPct: &water,
	}, "athlete-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 2 {
		t.Errorf("expected 2 composition warnings, got %v", warnings)
	}
}

func TestTransformBatch_CountsAndHistory(t *testing.T) {
	tr := newTestTransformer()

	batch := &types.RawWellnessBatch{
		Sleep: []*types.RawSleepRecord{
			{Day: "2024-03-01", TotalSleep: "7:00:00"},
			{Day: "2024-03-02"}, // missing total -> error
		},
		RHR: []*types.RawRHRRecord{
			{Day: "2024-03-01", RestingHeartRate: 55},
			{Day: "2024-03-02", RestingHeartRate: 300}, // rejected, excluded from history
			{Day: "2024-03-03", RestingHeartRate: 56},
		},
		Weight: []*types.RawWeightRecord{
			{Day: "2024-03-01", WeightKG: 71.5},
		},
	}

	res := tr.TransformBatch(batch, "athlete-1")
	if res.SuccessCount() != 4 {
		t.Errorf("successes = %d, want 4", res.SuccessCount())
	}
	if res.FailureCount() != 2 {
		t.Errorf("failures = %d, want 2", res.FailureCount())
	}
	if len(res.RHR.Records) != 2 {
		t.Errorf("rhr records = %d, want 2", len(res.RHR.Records))
	}
	for _, e := range res.Errors() {
		if e.Kind != types.ErrValidation {
			t.Errorf("unexpected error kind %q", e.Kind)
		}
		if e.Phase == "" {
			t.Error("batch errors must be phase-tagged")
		}
	}
}
