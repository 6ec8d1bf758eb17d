// Package wellness transforms daily health telemetry (sleep, resting heart
// rate, weight) into canonical wellness records and builds the derived
// context consumed by the readiness score.
package wellness

import (
	"fmt"
	"math"

	"github.com/stridewell/server/pkg/domain/transform"
	"github.com/stridewell/server/pkg/types"
)

// Sleep duration plausibility window, minutes.
const (
	shortSleepMin = 180
	longSleepMin  = 720

	lowEfficiencyPct = 70
)

// TransformSleep converts one raw sleep row. Stage durations are parsed with
// the shared duration parser; efficiency = (total-awake)/total. The source
// score passes through verbatim when present.
func (t *Transformer) TransformSleep(raw *types.RawSleepRecord, athleteID string) (*types.WellnessRecord, []string, error) {
	if raw.Day == "" {
		return nil, nil, types.NewValidationError("", "sleep record missing day")
	}

	total, err := transform.ParseDurationMinutes(raw.TotalSleep)
	if err != nil {
		return nil, nil, types.NewValidationError(raw.Day, fmt.Sprintf("total sleep: %v", err))
	}
	if total <= 0 {
		return nil, nil, types.NewValidationError(raw.Day, "total sleep must be positive")
	}

	deep, err := transform.ParseDurationMinutes(raw.DeepSleep)
	if err != nil {
		return nil, nil, types.NewValidationError(raw.Day, fmt.Sprintf("deep sleep: %v", err))
	}
	light, err := transform.ParseDurationMinutes(raw.LightSleep)
	if err != nil {
		return nil, nil, types.NewValidationError(raw.Day, fmt.Sprintf("light sleep: %v", err))
	}
	rem, err := transform.ParseDurationMinutes(raw.REMSleep)
	if err != nil {
		return nil, nil, types.NewValidationError(raw.Day, fmt.Sprintf("rem sleep: %v", err))
	}
	awake, err := transform.ParseDurationMinutes(raw.AwakeTime)
	if err != nil {
		return nil, nil, types.NewValidationError(raw.Day, fmt.Sprintf("awake time: %v", err))
	}

	efficiency := math.Round(float64(total-awake)/float64(total)*1000) / 10

	var warnings []string
	if total < shortSleepMin {
		warnings = append(warnings, fmt.Sprintf("short sleep duration: %d min", total))
	} else if total > longSleepMin {
		warnings = append(warnings, fmt.Sprintf("long sleep duration: %d min", total))
	}
	if efficiency < lowEfficiencyPct {
		warnings = append(warnings, fmt.Sprintf("low sleep efficiency: %.1f%%", efficiency))
	}

	record := &types.WellnessRecord{
		WellnessID: t.newID(),
		AthleteID:  athleteID,
		Date:       raw.Day,
		DataType:   types.WellnessSleep,
		SourceType: t.sourceType,
		Value: types.WellnessValue{
			Sleep: &types.SleepData{
				TotalSleepMin:      total,
				DeepSleepMin:       deep,
				LightSleepMin:      light,
				REMSleepMin:        rem,
				AwakeMin:           awake,
				SleepEfficiencyPct: efficiency,
				SleepScore:         raw.Score,
				Bedtime:            raw.Bedtime,
				WakeTime:           raw.WakeTime,
			},
		},
	}
	return record, warnings, nil
}
