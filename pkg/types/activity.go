package types

// Sport is one of the five canonical training categories every source label
// collapses into.
type Sport string

const (
	SportRun      Sport = "run"
	SportBike     Sport = "bike"
	SportSwim     Sport = "swim"
	SportStrength Sport = "strength"
	SportMobility Sport = "mobility"
)

// CanonicalSports lists every valid Sport value.
var CanonicalSports = []Sport{SportRun, SportBike, SportSwim, SportStrength, SportMobility}

// IsCanonicalSport reports whether s is one of the five canonical categories.
func IsCanonicalSport(s Sport) bool {
	switch s {
	case SportRun, SportBike, SportSwim, SportStrength, SportMobility:
		return true
	}
	return false
}

// DisplayName returns the human label used when deriving session titles.
func (s Sport) DisplayName() string {
	switch s {
	case SportRun:
		return "Run"
	case SportBike:
		return "Bike"
	case SportSwim:
		return "Swim"
	case SportStrength:
		return "Strength"
	case SportMobility:
		return "Mobility"
	}
	return "Workout"
}

const SessionStatusCompleted = "completed"

// RawActivityRecord is one row of the device export, exactly as the telemetry
// reader yields it. All timestamps and durations are source-formatted strings;
// optional numeric fields are nil when the device did not record them.
type RawActivityRecord struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name,omitempty"`
	StartTime     string   `json:"start_time"`
	Sport         string   `json:"sport"`
	DistanceKM    *float64 `json:"distance_km,omitempty"`
	MovingTime    string   `json:"moving_time,omitempty"`
	AvgHR         *int     `json:"avg_hr,omitempty"`
	MaxHR         *int     `json:"max_hr,omitempty"`
	AvgPower      *int     `json:"avg_power,omitempty"`
	MaxPower      *int     `json:"max_power,omitempty"`
	AvgSpeedKmh   *float64 `json:"avg_speed_kmh,omitempty"`
	MaxSpeedKmh   *float64 `json:"max_speed_kmh,omitempty"`
	AvgCadence    *int     `json:"avg_cadence,omitempty"`
	MaxCadence    *int     `json:"max_cadence,omitempty"`
	Calories      *int     `json:"calories,omitempty"`
	AerobicTE     *float64 `json:"aerobic_te,omitempty"`
	AnaerobicTE   *float64 `json:"anaerobic_te,omitempty"`
	ElevationGain *float64 `json:"elevation_gain_m,omitempty"`
	ElevationLoss *float64 `json:"elevation_loss_m,omitempty"`
	TemperatureC  *float64 `json:"temperature_c,omitempty"`
}

// PerformanceMetrics holds the optional per-session performance bundle. A pair
// (avg+max) is present only when the source recorded both halves.
type PerformanceMetrics struct {
	AvgHR          *int     `json:"avg_hr,omitempty" firestore:"avg_hr,omitempty"`
	MaxHR          *int     `json:"max_hr,omitempty" firestore:"max_hr,omitempty"`
	AvgPowerW      *int     `json:"avg_power_w,omitempty" firestore:"avg_power_w,omitempty"`
	MaxPowerW      *int     `json:"max_power_w,omitempty" firestore:"max_power_w,omitempty"`
	AvgSpeedKmh    *float64 `json:"avg_speed_kmh,omitempty" firestore:"avg_speed_kmh,omitempty"`
	MaxSpeedKmh    *float64 `json:"max_speed_kmh,omitempty" firestore:"max_speed_kmh,omitempty"`
	AvgCadence     *int     `json:"avg_cadence,omitempty" firestore:"avg_cadence,omitempty"`
	MaxCadence     *int     `json:"max_cadence,omitempty" firestore:"max_cadence,omitempty"`
	Calories       *int     `json:"calories,omitempty" firestore:"calories,omitempty"`
	AerobicTE      *float64 `json:"aerobic_te,omitempty" firestore:"aerobic_te,omitempty"`
	AnaerobicTE    *float64 `json:"anaerobic_te,omitempty" firestore:"anaerobic_te,omitempty"`
	PaceMinPerKm   *float64 `json:"pace_min_per_km,omitempty" firestore:"pace_min_per_km,omitempty"`
	HRIntensityPct *float64 `json:"hr_intensity_pct,omitempty" firestore:"hr_intensity_pct,omitempty"`
}

// IsEmpty reports whether no metric qualified for inclusion.
func (m *PerformanceMetrics) IsEmpty() bool {
	if m == nil {
		return true
	}
	return m.AvgHR == nil && m.AvgPowerW == nil && m.AvgSpeedKmh == nil &&
		m.AvgCadence == nil && m.Calories == nil && m.AerobicTE == nil &&
		m.PaceMinPerKm == nil && m.HRIntensityPct == nil
}

// EnvironmentalMetrics holds elevation and temperature context.
type EnvironmentalMetrics struct {
	ElevationGainM *float64 `json:"elevation_gain_m,omitempty" firestore:"elevation_gain_m,omitempty"`
	ElevationLossM *float64 `json:"elevation_loss_m,omitempty" firestore:"elevation_loss_m,omitempty"`
	TemperatureC   *float64 `json:"temperature_c,omitempty" firestore:"temperature_c,omitempty"`
}

func (m *EnvironmentalMetrics) IsEmpty() bool {
	if m == nil {
		return true
	}
	return m.ElevationGainM == nil && m.ElevationLossM == nil && m.TemperatureC == nil
}

// SessionMetadata links a canonical session back to its source record and
// carries the optional metric bundles.
type SessionMetadata struct {
	SourceRecordID string                `json:"source_record_id" firestore:"source_record_id"`
	Performance    *PerformanceMetrics   `json:"performance_metrics,omitempty" firestore:"performance_metrics,omitempty"`
	Environmental  *EnvironmentalMetrics `json:"environmental,omitempty" firestore:"environmental,omitempty"`
}

// CanonicalSession is the normalized output of the activity transform.
// Sessions are append-only: import dedupes against the source record id and
// never mutates an existing session.
type CanonicalSession struct {
	SessionID         string           `json:"session_id" firestore:"session_id"`
	AthleteID         string           `json:"athlete_id" firestore:"athlete_id"`
	Date              string           `json:"date" firestore:"date"` // YYYY-MM-DD, UTC
	Sport             Sport            `json:"sport" firestore:"sport"`
	Title             string           `json:"title" firestore:"title"`
	ActualDurationMin int              `json:"actual_duration_min" firestore:"actual_duration_min"`
	ActualDistanceM   *int             `json:"actual_distance_m,omitempty" firestore:"actual_distance_m,omitempty"`
	Status            string           `json:"status" firestore:"status"`
	SourceType        string           `json:"source_type" firestore:"source_type"`
	Metadata          *SessionMetadata `json:"metadata,omitempty" firestore:"metadata,omitempty"`
}

// FilterSpec narrows a raw record batch before transformation. A nil field
// means "no constraint". Pure value object.
type FilterSpec struct {
	StartDate string   `json:"start_date,omitempty"` // YYYY-MM-DD, inclusive
	EndDate   string   `json:"end_date,omitempty"`   // YYYY-MM-DD, inclusive
	Sports    []string `json:"sports,omitempty"`     // case-insensitive allow-list
	Limit     int      `json:"limit,omitempty"`      // 0 = unlimited, applied last
}
