package types

// WellnessType distinguishes the three daily wellness streams.
type WellnessType string

const (
	WellnessSleep  WellnessType = "sleep"
	WellnessRHR    WellnessType = "rhr"
	WellnessWeight WellnessType = "weight"
)

// WellnessTypes lists every valid wellness stream.
var WellnessTypes = []WellnessType{WellnessSleep, WellnessRHR, WellnessWeight}

// RawSleepRecord is one night of sleep as the device export yields it. Stage
// durations are source-formatted strings ("H:MM:SS" and friends).
type RawSleepRecord struct {
	Day        string `json:"day"`
	TotalSleep string `json:"total_sleep"`
	DeepSleep  string `json:"deep_sleep,omitempty"`
	LightSleep string `json:"light_sleep,omitempty"`
	REMSleep   string `json:"rem_sleep,omitempty"`
	AwakeTime  string `json:"awake_time,omitempty"`
	Score      *int   `json:"score,omitempty"`
	Bedtime    string `json:"bedtime,omitempty"`
	WakeTime   string `json:"wake_time,omitempty"`
}

// RawRHRRecord is one day's resting heart rate.
type RawRHRRecord struct {
	Day              string `json:"day"`
	RestingHeartRate int    `json:"resting_heart_rate"`
}

// RawWeightRecord is one weigh-in with optional body composition fields.
type RawWeightRecord struct {
	Day          string   `json:"day"`
	WeightKG     float64  `json:"weight_kg"`
	BodyFatPct   *float64 `json:"body_fat_pct,omitempty"`
	MuscleMassKG *float64 `json:"muscle_mass_kg,omitempty"`
	BoneMassKG   *float64 `json:"bone_mass_kg,omitempty"`
	BodyWaterPct *float64 `json:"body_water_pct,omitempty"`
}

// RawWellnessBatch bundles the three streams a reader returns for a range.
type RawWellnessBatch struct {
	Sleep  []*RawSleepRecord  `json:"sleep,omitempty"`
	RHR    []*RawRHRRecord    `json:"rhr,omitempty"`
	Weight []*RawWeightRecord `json:"weight,omitempty"`
}

// SleepData is the canonical sleep payload.
type SleepData struct {
	TotalSleepMin      int     `json:"total_sleep_min" firestore:"total_sleep_min"`
	DeepSleepMin       int     `json:"deep_sleep_min" firestore:"deep_sleep_min"`
	LightSleepMin      int     `json:"light_sleep_min" firestore:"light_sleep_min"`
	REMSleepMin        int     `json:"rem_sleep_min" firestore:"rem_sleep_min"`
	AwakeMin           int     `json:"awake_min" firestore:"awake_min"`
	SleepEfficiencyPct float64 `json:"sleep_efficiency_pct" firestore:"sleep_efficiency_pct"`
	SleepScore         *int    `json:"sleep_score,omitempty" firestore:"sleep_score,omitempty"`
	Bedtime            string  `json:"bedtime,omitempty" firestore:"bedtime,omitempty"`
	WakeTime           string  `json:"wake_time,omitempty" firestore:"wake_time,omitempty"`
}

// RHRData is the canonical resting heart rate payload.
type RHRData struct {
	BPM     int     `json:"bpm" firestore:"bpm"`
	Quality string  `json:"quality" firestore:"quality"` // excellent|good|fair|poor
	Trend   *string `json:"trend,omitempty" firestore:"trend,omitempty"`
}

// WeightData is the canonical weight payload. BMI is present only when an
// athlete height was configured for the transform.
type WeightData struct {
	WeightKG     float64  `json:"weight_kg" firestore:"weight_kg"`
	BMI          *float64 `json:"bmi,omitempty" firestore:"bmi,omitempty"`
	BodyFatPct   *float64 `json:"body_fat_pct,omitempty" firestore:"body_fat_pct,omitempty"`
	MuscleMassKG *float64 `json:"muscle_mass_kg,omitempty" firestore:"muscle_mass_kg,omitempty"`
	BoneMassKG   *float64 `json:"bone_mass_kg,omitempty" firestore:"bone_mass_kg,omitempty"`
	BodyWaterPct *float64 `json:"body_water_pct,omitempty" firestore:"body_water_pct,omitempty"`
}

// WellnessValue is the variant payload of a wellness record. Exactly one of
// the three pointers matches the record's DataType.
type WellnessValue struct {
	Sleep  *SleepData  `json:"sleep,omitempty" firestore:"sleep,omitempty"`
	RHR    *RHRData    `json:"rhr,omitempty" firestore:"rhr,omitempty"`
	Weight *WeightData `json:"weight,omitempty" firestore:"weight,omitempty"`
}

// WellnessRecord is one canonical daily health datapoint.
type WellnessRecord struct {
	WellnessID string            `json:"wellness_id" firestore:"wellness_id"`
	AthleteID  string            `json:"athlete_id" firestore:"athlete_id"`
	Date       string            `json:"date" firestore:"date"` // YYYY-MM-DD
	DataType   WellnessType      `json:"data_type" firestore:"data_type"`
	Value      WellnessValue     `json:"value_json" firestore:"value_json"`
	SourceType string            `json:"source_type" firestore:"source_type"`
	Metadata   map[string]string `json:"metadata,omitempty" firestore:"metadata,omitempty"`
}

// MatchesVariant reports whether exactly one payload variant is set and it
// matches DataType.
func (r *WellnessRecord) MatchesVariant() bool {
	set := 0
	if r.Value.Sleep != nil {
		set++
	}
	if r.Value.RHR != nil {
		set++
	}
	if r.Value.Weight != nil {
		set++
	}
	if set != 1 {
		return false
	}
	switch r.DataType {
	case WellnessSleep:
		return r.Value.Sleep != nil
	case WellnessRHR:
		return r.Value.RHR != nil
	case WellnessWeight:
		return r.Value.Weight != nil
	}
	return false
}

// TypeContext is the per-stream slice of a WellnessContext.
type TypeContext struct {
	Recent  float64 `json:"recent"`
	Average float64 `json:"average"`
	// improving|stable|declining (weight: gaining|losing|stable), nil below sample floor
	Trend   *string `json:"trend,omitempty"`
	Samples int     `json:"samples"`
}

// WellnessContext is the derived read model handed to the readiness consumer.
// It is computed per call and never persisted.
type WellnessContext struct {
	AthleteID       string       `json:"athlete_id"`
	Date            string       `json:"date"`
	LookbackDays    int          `json:"lookback_days"`
	Sleep           *TypeContext `json:"sleep,omitempty"`
	RHR             *TypeContext `json:"rhr,omitempty"`
	Weight          *TypeContext `json:"weight,omitempty"`
	CompletenessPct float64      `json:"completeness_pct"`
}
