package wellness

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/types"
)

// Trend classification parameters for the context builder. Each stream has
// its own deadband; RHR polarity is inverted (higher recent RHR reads as
// declining).
const (
	contextTrendMinSamples = 6

	sleepTrendDeadbandMin = 15.0
	weightTrendDeadbandKG = 0.5
	weightTrendDeltaDays  = 7
)

// ContextBuilder assembles the derived wellness read model for the readiness
// consumer. Read-only and stateless per call.
type ContextBuilder struct {
	store  shared.Store
	logger *slog.Logger
}

func NewContextBuilder(store shared.Store, logger *slog.Logger) *ContextBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextBuilder{store: store, logger: logger}
}

// Build fetches persisted wellness records in [targetDate-lookbackDays,
// targetDate] and produces per-type recent/average/trend context plus a
// completeness percentage over the window.
func (b *ContextBuilder) Build(ctx context.Context, athleteID, targetDate string, lookbackDays int) (*types.WellnessContext, error) {
	if lookbackDays <= 0 {
		lookbackDays = shared.DefaultLookbackDays
	}

	target, err := time.Parse(shared.DateLayout, targetDate)
	if err != nil {
		return nil, fmt.Errorf("invalid target date %q: %w", targetDate, err)
	}
	startDate := target.AddDate(0, 0, -lookbackDays).Format(shared.DateLayout)

	records, err := b.store.ListWellness(ctx, athleteID, startDate, targetDate, 0)
	if err != nil {
		return nil, fmt.Errorf("list wellness: %w", err)
	}

	wc := &types.WellnessContext{
		AthleteID:    athleteID,
		Date:         targetDate,
		LookbackDays: lookbackDays,
	}

	var sleepVals, rhrVals, weightVals []datedValue
	for _, r := range records {
		switch r.DataType {
		case types.WellnessSleep:
			if r.Value.Sleep != nil {
				sleepVals = append(sleepVals, datedValue{r.Date, float64(r.Value.Sleep.TotalSleepMin)})
			}
		case types.WellnessRHR:
			if r.Value.RHR != nil {
				rhrVals = append(rhrVals, datedValue{r.Date, float64(r.Value.RHR.BPM)})
			}
		case types.WellnessWeight:
			if r.Value.Weight != nil {
				weightVals = append(weightVals, datedValue{r.Date, r.Value.Weight.WeightKG})
			}
		}
	}

	wc.Sleep = buildTypeContext(sleepVals, halvesTrend(sleepVals, sleepTrendDeadbandMin, false))
	wc.RHR = buildTypeContext(rhrVals, halvesTrend(rhrVals, rhrTrendDeadband, true))
	wc.Weight = buildTypeContext(weightVals, weightDeltaTrend(weightVals))

	present := len(sleepVals) + len(rhrVals) + len(weightVals)
	wc.CompletenessPct = math.Round(float64(present)/float64(lookbackDays*3)*1000) / 10

	b.logger.Debug("Built wellness context",
		"athlete_id", athleteID,
		"date", targetDate,
		"records", present,
		"completeness_pct", wc.CompletenessPct)

	return wc, nil
}

type datedValue struct {
	date  string
	value float64
}

func buildTypeContext(vals []datedValue, trend *string) *types.TypeContext {
	if len(vals) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += v.value
	}
	return &types.TypeContext{
		Recent:  vals[len(vals)-1].value,
		Average: math.Round(sum/float64(len(vals))*10) / 10,
		Trend:   trend,
		Samples: len(vals),
	}
}

// halvesTrend compares the mean of the older half of the window against the
// newer half. inverted flips polarity for metrics where lower is better.
func halvesTrend(vals []datedValue, deadband float64, inverted bool) *string {
	if len(vals) < contextTrendMinSamples {
		return nil
	}

	mid := len(vals) / 2
	older := mean(vals[:mid])
	newer := mean(vals[mid:])
	diff := newer - older

	var trend string
	switch {
	case diff > deadband:
		trend = "improving"
	case diff < -deadband:
		trend = "declining"
	default:
		trend = "stable"
	}
	if inverted && trend != "stable" {
		if trend == "improving" {
			trend = "declining"
		} else {
			trend = "improving"
		}
	}
	return &trend
}

// weightDeltaTrend classifies weight by the change against the value closest
// to 7 days before the most recent sample. Weight direction is goal-dependent,
// so the labels are gaining/losing/stable rather than better/worse.
func weightDeltaTrend(vals []datedValue) *string {
	if len(vals) < contextTrendMinSamples {
		return nil
	}

	latest := vals[len(vals)-1]
	latestDate, err := time.Parse(shared.DateLayout, latest.date)
	if err != nil {
		return nil
	}
	cutoff := latestDate.AddDate(0, 0, -weightTrendDeltaDays).Format(shared.DateLayout)

	// earliest sample on or after the cutoff; values arrive date-ascending
	baseline := vals[0]
	for _, v := range vals {
		if v.date >= cutoff {
			baseline = v
			break
		}
	}

	diff := latest.value - baseline.value
	var trend string
	switch {
	case diff > weightTrendDeadbandKG:
		trend = "gaining"
	case diff < -weightTrendDeadbandKG:
		trend = "losing"
	default:
		trend = "stable"
	}
	return &trend
}

func mean(vals []datedValue) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v.value
	}
	return sum / float64(len(vals))
}
