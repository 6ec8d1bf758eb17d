package transform

import (
	"fmt"
	"regexp"

	"github.com/stridewell/server/pkg/types"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Soft heart-rate plausibility window. Readings outside it are warnings, not
// rejections: chest straps glitch, they do not lie consistently.
const (
	softMinHR = 30
	softMaxHR = 220
)

// ValidationResult accumulates the outcome of one validation pass. Errors
// block the transform (fail-closed); warnings ride along without blocking.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ValidateRawActivity runs the raw-record pass: required fields, numeric
// bounds, and avg-vs-max cross-field consistency. An avg exceeding its max is
// a hard error: that pairing is internally contradictory, not just odd.
func ValidateRawActivity(raw *types.RawActivityRecord) *ValidationResult {
	res := &ValidationResult{}

	if raw.ID == 0 {
		res.errorf("missing record id")
	}
	if raw.StartTime == "" {
		res.errorf("missing start timestamp")
	}
	if raw.Sport == "" {
		res.errorf("missing sport label")
	}

	if raw.DistanceKM != nil && *raw.DistanceKM < 0 {
		res.errorf("negative distance %.2f km", *raw.DistanceKM)
	}
	if raw.AvgHR != nil && (*raw.AvgHR < softMinHR || *raw.AvgHR > softMaxHR) {
		res.warnf("avg heart rate %d outside plausible range [%d,%d]", *raw.AvgHR, softMinHR, softMaxHR)
	}
	if raw.MaxHR != nil && (*raw.MaxHR < softMinHR || *raw.MaxHR > softMaxHR) {
		res.warnf("max heart rate %d outside plausible range [%d,%d]", *raw.MaxHR, softMinHR, softMaxHR)
	}
	if raw.AvgPower != nil && *raw.AvgPower < 0 {
		res.errorf("negative average power %d", *raw.AvgPower)
	}
	if raw.Calories != nil && *raw.Calories < 0 {
		res.errorf("negative calories %d", *raw.Calories)
	}

	if raw.AvgHR != nil && raw.MaxHR != nil && *raw.AvgHR > *raw.MaxHR {
		res.errorf("avg heart rate %d exceeds max %d", *raw.AvgHR, *raw.MaxHR)
	}
	if raw.AvgPower != nil && raw.MaxPower != nil && *raw.AvgPower > *raw.MaxPower {
		res.errorf("avg power %d exceeds max %d", *raw.AvgPower, *raw.MaxPower)
	}
	if raw.AvgSpeedKmh != nil && raw.MaxSpeedKmh != nil && *raw.AvgSpeedKmh > *raw.MaxSpeedKmh {
		res.errorf("avg speed %.2f exceeds max %.2f", *raw.AvgSpeedKmh, *raw.MaxSpeedKmh)
	}
	if raw.AvgCadence != nil && raw.MaxCadence != nil && *raw.AvgCadence > *raw.MaxCadence {
		res.errorf("avg cadence %d exceeds max %d", *raw.AvgCadence, *raw.MaxCadence)
	}

	return res
}

// ValidateCanonicalSession runs the canonical-record pass before a session is
// accepted for persistence.
func ValidateCanonicalSession(s *types.CanonicalSession) *ValidationResult {
	res := &ValidationResult{}

	if s.SessionID == "" {
		res.errorf("missing session id")
	}
	if s.AthleteID == "" {
		res.errorf("missing athlete id")
	}
	if s.Title == "" {
		res.errorf("missing title")
	}
	if !types.IsCanonicalSport(s.Sport) {
		res.errorf("sport %q is not a canonical category", s.Sport)
	}
	if !datePattern.MatchString(s.Date) {
		res.errorf("date %q does not match YYYY-MM-DD", s.Date)
	}
	if s.ActualDurationMin <= 0 {
		res.errorf("duration must be positive, got %d", s.ActualDurationMin)
	}
	if s.ActualDistanceM != nil && *s.ActualDistanceM < 0 {
		res.errorf("negative distance %d m", *s.ActualDistanceM)
	}
	if s.Status != types.SessionStatusCompleted {
		res.errorf("status %q is not %q", s.Status, types.SessionStatusCompleted)
	}

	return res
}
