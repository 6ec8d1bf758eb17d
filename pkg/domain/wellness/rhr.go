package wellness

import (
	"fmt"

	"github.com/stridewell/server/pkg/types"
)

// Resting heart rate bounds. Outside the hard window the reading is sensor
// garbage and no record is produced; outside the soft window it is unusual
// enough to flag.
const (
	hardMinRHR = 30
	hardMaxRHR = 120
	softMinRHR = 40
	softMaxRHR = 100
)

// Deadband for the 7-vs-7 trend comparison, bpm.
const rhrTrendDeadband = 2.0

// rhrTrendWindow is how many historical points feed each side of the trend.
const rhrTrendWindow = 7

// TransformRHR converts one raw resting-heart-rate row. history is the
// preceding values in chronological order (oldest first), at most 14 points,
// and feeds the trend classification.
func (t *Transformer) TransformRHR(raw *types.RawRHRRecord, history []int, athleteID string) (*types.WellnessRecord, []string, error) {
	if raw.Day == "" {
		return nil, nil, types.NewValidationError("", "rhr record missing day")
	}
	bpm := raw.RestingHeartRate
	if bpm < hardMinRHR || bpm > hardMaxRHR {
		return nil, nil, types.NewValidationError(raw.Day,
			fmt.Sprintf("resting heart rate %d outside valid range [%d,%d]", bpm, hardMinRHR, hardMaxRHR))
	}

	var warnings []string
	if bpm < softMinRHR || bpm > softMaxRHR {
		warnings = append(warnings, fmt.Sprintf("unusual resting heart rate: %d bpm", bpm))
	}

	record := &types.WellnessRecord{
		WellnessID: t.newID(),
		AthleteID:  athleteID,
		Date:       raw.Day,
		DataType:   types.WellnessRHR,
		SourceType: t.sourceType,
		Value: types.WellnessValue{
			RHR: &types.RHRData{
				BPM:     bpm,
				Quality: RHRQuality(bpm),
				Trend:   RHRTrend(history),
			},
		},
	}
	return record, warnings, nil
}

// RHRQuality buckets a resting heart rate. Lower is better.
func RHRQuality(bpm int) string {
	switch {
	case bpm <= 50:
		return "excellent"
	case bpm <= 60:
		return "good"
	case bpm <= 70:
		return "fair"
	}
	return "poor"
}

// RHRTrend compares the mean of the most recent 7 historical points against
// the points preceding them, with a ±2 bpm deadband. Lower recent RHR is the
// favorable direction, so it reads "improving". Needs more than 7 points of
// history; otherwise nil.
func RHRTrend(history []int) *string {
	if len(history) <= rhrTrendWindow {
		return nil
	}

	recent := history[len(history)-rhrTrendWindow:]
	previous := history[:len(history)-rhrTrendWindow]
	if len(previous) > rhrTrendWindow {
		previous = previous[len(previous)-rhrTrendWindow:]
	}

	diff := meanInt(recent) - meanInt(previous)
	var trend string
	switch {
	case diff < -rhrTrendDeadband:
		trend = "improving"
	case diff > rhrTrendDeadband:
		trend = "declining"
	default:
		trend = "stable"
	}
	return &trend
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
