package transform

import (
	"math"

	"github.com/stridewell/server/pkg/types"
)

// ExtractPerformanceMetrics builds the optional performance bundle from a raw
// record. A metric pair is included only when both its avg and max halves are
// present; calories only when positive; training effect only when both the
// aerobic and anaerobic values exist. Returns nil when nothing qualifies,
// missing metrics are not an error.
func ExtractPerformanceMetrics(raw *types.RawActivityRecord, sport types.Sport) *types.PerformanceMetrics {
	m := &types.PerformanceMetrics{}

	if raw.AvgHR != nil && raw.MaxHR != nil {
		m.AvgHR = raw.AvgHR
		m.MaxHR = raw.MaxHR
	}
	if raw.AvgPower != nil && raw.MaxPower != nil {
		m.AvgPowerW = raw.AvgPower
		m.MaxPowerW = raw.MaxPower
	}
	if raw.AvgSpeedKmh != nil && raw.MaxSpeedKmh != nil {
		m.AvgSpeedKmh = raw.AvgSpeedKmh
		m.MaxSpeedKmh = raw.MaxSpeedKmh
	}
	if raw.AvgCadence != nil && raw.MaxCadence != nil {
		m.AvgCadence = raw.AvgCadence
		m.MaxCadence = raw.MaxCadence
	}
	if raw.Calories != nil && *raw.Calories > 0 {
		m.Calories = raw.Calories
	}
	if raw.AerobicTE != nil && raw.AnaerobicTE != nil {
		m.AerobicTE = raw.AerobicTE
		m.AnaerobicTE = raw.AnaerobicTE
	}

	if pace := RunningPace(raw, sport); pace != nil {
		m.PaceMinPerKm = pace
	}
	if intensity := HRIntensity(m.AvgHR, m.MaxHR); intensity != nil {
		m.HRIntensityPct = intensity
	}

	if m.IsEmpty() {
		return nil
	}
	return m
}

// ExtractEnvironmentalMetrics builds the elevation/temperature bundle, or nil
// when the source recorded none of it.
func ExtractEnvironmentalMetrics(raw *types.RawActivityRecord) *types.EnvironmentalMetrics {
	m := &types.EnvironmentalMetrics{
		ElevationGainM: raw.ElevationGain,
		ElevationLossM: raw.ElevationLoss,
		TemperatureC:   raw.TemperatureC,
	}
	if m.IsEmpty() {
		return nil
	}
	return m
}

// RunningPace derives min/km for run sessions with positive distance and a
// parsable moving time. Anything else yields nil.
func RunningPace(raw *types.RawActivityRecord, sport types.Sport) *float64 {
	if sport != types.SportRun || raw.DistanceKM == nil || *raw.DistanceKM <= 0 {
		return nil
	}
	minutes, err := ParseDurationMinutes(raw.MovingTime)
	if err != nil || minutes <= 0 {
		return nil
	}
	pace := round2(float64(minutes) / *raw.DistanceKM)
	return &pace
}

// HRIntensity is avg/max heart rate as a percentage, nil without both values.
func HRIntensity(avgHR, maxHR *int) *float64 {
	if avgHR == nil || maxHR == nil || *maxHR <= 0 {
		return nil
	}
	pct := round2(float64(*avgHR) / float64(*maxHR) * 100)
	return &pct
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
