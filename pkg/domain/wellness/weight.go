package wellness

import (
	"fmt"
	"math"

	"github.com/stridewell/server/pkg/types"
)

// Weight bounds, kg.
const (
	hardMinWeight = 30
	hardMaxWeight = 250
	softMinWeight = 40
	softMaxWeight = 200
)

// Body composition plausibility windows, percent.
const (
	minBodyFatPct   = 3
	maxBodyFatPct   = 50
	minBodyWaterPct = 45
	maxBodyWaterPct = 75
)

// TransformWeight converts one raw weigh-in. BMI is computed only when the
// transformer was configured with an athlete height; there is no assumed
// default height.
func (t *Transformer) TransformWeight(raw *types.RawWeightRecord, athleteID string) (*types.WellnessRecord, []string, error) {
	if raw.Day == "" {
		return nil, nil, types.NewValidationError("", "weight record missing day")
	}
	kg := raw.WeightKG
	if kg < hardMinWeight || kg > hardMaxWeight {
		return nil, nil, types.NewValidationError(raw.Day,
			fmt.Sprintf("weight %.1f kg outside valid range [%d,%d]", kg, hardMinWeight, hardMaxWeight))
	}

	var warnings []string
	if kg < softMinWeight || kg > softMaxWeight {
		warnings = append(warnings, fmt.Sprintf("unusual weight: %.1f kg", kg))
	}
	if raw.BodyFatPct != nil && (*raw.BodyFatPct < minBodyFatPct || *raw.BodyFatPct > maxBodyFatPct) {
		warnings = append(warnings, fmt.Sprintf("body fat %.1f%% outside plausible range [%d,%d]", *raw.BodyFatPct, minBodyFatPct, maxBodyFatPct))
	}
	if raw.BodyWaterPct != nil && (*raw.BodyWaterPct < minBodyWaterPct || *raw.BodyWaterPct > maxBodyWaterPct) {
		warnings = append(warnings, fmt.Sprintf("body water %.1f%% outside plausible range [%d,%d]", *raw.BodyWaterPct, minBodyWaterPct, maxBodyWaterPct))
	}

	var bmi *float64
	if t.heightM != nil && *t.heightM > 0 {
		v := math.Round(kg / (*t.heightM * *t.heightM) * 10) / 10
		bmi = &v
	}

	record := &types.WellnessRecord{
		WellnessID: t.newID(),
		AthleteID:  athleteID,
		Date:       raw.Day,
		DataType:   types.WellnessWeight,
		SourceType: t.sourceType,
		Value: types.WellnessValue{
			Weight: &types.WeightData{
				WeightKG:     kg,
				BMI:          bmi,
				BodyFatPct:   raw.BodyFatPct,
				MuscleMassKG: raw.MuscleMassKG,
				BoneMassKG:   raw.BoneMassKG,
				BodyWaterPct: raw.BodyWaterPct,
			},
		},
	}
	return record, warnings, nil
}
