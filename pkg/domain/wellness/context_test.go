package wellness

import (
	"context"
	"fmt"
	"testing"
	"time"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/testing/mocks"
	"github.com/stridewell/server/pkg/types"
)

func dateOffset(base string, days int) string {
	t, _ := time.Parse(shared.DateLayout, base)
	return t.AddDate(0, 0, days).Format(shared.DateLayout)
}

func rhrRecord(date string, bpm int) *types.WellnessRecord {
	return &types.WellnessRecord{
		WellnessID: "w-" + date,
		AthleteID:  "athlete-1",
		Date:       date,
		DataType:   types.WellnessRHR,
		Value:      types.WellnessValue{RHR: &types.RHRData{BPM: bpm, Quality: RHRQuality(bpm)}},
	}
}

func sleepRecord(date string, totalMin int) *types.WellnessRecord {
	return &types.WellnessRecord{
		WellnessID: "w-" + date,
		AthleteID:  "athlete-1",
		Date:       date,
		DataType:   types.WellnessSleep,
		Value:      types.WellnessValue{Sleep: &types.SleepData{TotalSleepMin: totalMin}},
	}
}

func TestContextBuilder_Build(t *testing.T) {
	var records []*types.WellnessRecord
	// ten days of data ending at the target: RHR drifting down, sleep steady
	for i := 0; i < 10; i++ {
		date := dateOffset("2024-03-01", i)
		records = append(records, rhrRecord(date, 62-i))
		records = append(records, sleepRecord(date, 450))
	}

	store := &mocks.MockStore{
		ListWellnessFunc: func(ctx context.Context, athleteID, start, end string, limit int) ([]*types.WellnessRecord, error) {
			return records, nil
		},
	}

	builder := NewContextBuilder(store, nil)
	wc, err := builder.Build(context.Background(), "athlete-1", "2024-03-10", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wc.RHR == nil {
		t.Fatal("expected RHR context")
	}
	if wc.RHR.Recent != 53 {
		t.Errorf("recent RHR = %.0f, want 53", wc.RHR.Recent)
	}
	// falling RHR is the favorable direction
	if wc.RHR.Trend == nil || *wc.RHR.Trend != "improving" {
		t.Errorf("RHR trend = %v, want improving", wc.RHR.Trend)
	}

	if wc.Sleep == nil {
		t.Fatal("expected sleep context")
	}
	if wc.Sleep.Average != 450 {
		t.Errorf("sleep average = %.0f, want 450", wc.Sleep.Average)
	}
	if wc.Sleep.Trend == nil || *wc.Sleep.Trend != "stable" {
		t.Errorf("sleep trend = %v, want stable", wc.Sleep.Trend)
	}

	if wc.Weight != nil {
		t.Error("no weight records -> nil weight context")
	}

	// 20 of lookback*3 = 90 slots
	want := 22.2
	if wc.CompletenessPct != want {
		t.Errorf("completeness = %.1f, want %.1f", wc.CompletenessPct, want)
	}
}

func TestContextBuilder_TrendNeedsSixSamples(t *testing.T) {
	var records []*types.WellnessRecord
	for i := 0; i < 5; i++ {
		records = append(records, rhrRecord(dateOffset("2024-03-01", i), 60-i*2))
	}
	store := &mocks.MockStore{
		ListWellnessFunc: func(ctx context.Context, athleteID, start, end string, limit int) ([]*types.WellnessRecord, error) {
			return records, nil
		},
	}

	wc, err := NewContextBuilder(store, nil).Build(context.Background(), "athlete-1", "2024-03-05", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wc.RHR == nil {
		t.Fatal("expected RHR context")
	}
	if wc.RHR.Trend != nil {
		t.Errorf("trend with 5 samples = %v, want nil", wc.RHR.Trend)
	}
	if wc.RHR.Samples != 5 {
		t.Errorf("samples = %d", wc.RHR.Samples)
	}
}

func TestContextBuilder_WeightDeltaTrend(t *testing.T) {
	var records []*types.WellnessRecord
	for i := 0; i < 8; i++ {
		date := dateOffset("2024-03-01", i)
		kg := 70.0 + float64(i)*0.3 // +2.1 kg over the window
		records = append(records, &types.WellnessRecord{
			WellnessID: fmt.Sprintf("w-%d", i),
			AthleteID:  "athlete-1",
			Date:       date,
			DataType:   types.WellnessWeight,
			Value:      types.WellnessValue{Weight: &types.WeightData{WeightKG: kg}},
		})
	}
	store := &mocks.MockStore{
		ListWellnessFunc: func(ctx context.Context, athleteID, start, end string, limit int) ([]*types.WellnessRecord, error) {
			return records, nil
		},
	}

	wc, err := NewContextBuilder(store, nil).Build(context.Background(), "athlete-1", "2024-03-08", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wc.Weight == nil || wc.Weight.Trend == nil {
		t.Fatal("expected weight trend")
	}
	if *wc.Weight.Trend != "gaining" {
		t.Errorf("weight trend = %q, want gaining", *wc.Weight.Trend)
	}
}

func TestContextBuilder_InvalidDate(t *testing.T) {
	store := &mocks.MockStore{}
	if _, err := NewContextBuilder(store, nil).Build(context.Background(), "athlete-1", "03/10/2024", 30); err == nil {
		t.Error("expected error for malformed target date")
	}
}
