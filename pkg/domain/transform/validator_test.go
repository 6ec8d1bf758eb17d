package transform

import (
	"testing"

	"github.com/stridewell/server/pkg/types"
)

func validRaw() *types.RawActivityRecord {
	return &types.RawActivityRecord{
		ID:        1001,
		StartTime: "2024-03-01 06:30:00",
		Sport:     "running",
	}
}

func TestValidateRawActivity_RequiredFields(t *testing.T) {
	res := ValidateRawActivity(&types.RawActivityRecord{})
	if res.Valid() {
		t.Fatal("empty record must fail validation")
	}
	if len(res.Errors) != 3 {
		t.Errorf("expected 3 missing-field errors, got %v", res.Errors)
	}
}

func TestValidateRawActivity_AvgExceedsMaxIsHardError(t *testing.T) {
	raw := validRaw()
	raw.AvgHR = intPtr(190)
	raw.MaxHR = intPtr(170)

	res := ValidateRawActivity(raw)
	if res.Valid() {
		t.Fatal("avg HR above max must be a hard error, not a warning")
	}
}

func TestValidateRawActivity_HRBoundsAreWarnings(t *testing.T) {
	raw := validRaw()
	raw.AvgHR = intPtr(25)
	raw.MaxHR = intPtr(240)

	res := ValidateRawActivity(raw)
	if !res.Valid() {
		t.Fatalf("implausible HR must warn, not block: %v", res.Errors)
	}
	if len(res.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", res.Warnings)
	}
}

func TestValidateRawActivity_NegativeDistance(t *testing.T) {
	raw := validRaw()
	raw.DistanceKM = floatPtr(-1)
	if ValidateRawActivity(raw).Valid() {
		t.Error("negative distance must be a hard error")
	}
}

func TestValidateCanonicalSession(t *testing.T) {
	good := &types.CanonicalSession{
		SessionID:         "s1",
		AthleteID:         "a1",
		Date:              "2024-03-01",
		Sport:             types.SportRun,
		Title:             "Morning Run",
		ActualDurationMin: 45,
		Status:            types.SessionStatusCompleted,
	}
	if res := ValidateCanonicalSession(good); !res.Valid() {
		t.Fatalf("valid session rejected: %v", res.Errors)
	}

	tests := []struct {
		name   string
		mutate func(*types.CanonicalSession)
	}{
		{"bad sport", func(s *types.CanonicalSession) { s.Sport = "parkour" }},
		{"bad date", func(s *types.CanonicalSession) { s.Date = "03/01/2024" }},
		{"zero duration", func(s *types.CanonicalSession) { s.ActualDurationMin = 0 }},
		{"missing athlete", func(s *types.CanonicalSession) { s.AthleteID = "" }},
		{"wrong status", func(s *types.CanonicalSession) { s.Status = "planned" }},
	}
	for _, tc := range tests {
		s := *good
		tc.mutate(&s)
		if ValidateCanonicalSession(&s).Valid() {
			t.Errorf("%s: expected validation failure", tc.name)
		}
	}
}
