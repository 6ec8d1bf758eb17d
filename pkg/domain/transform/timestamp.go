package transform

import (
	"fmt"
	"time"

	shared "github.com/stridewell/server/pkg"
)

// Timestamp sanity bounds. Device clocks reset to epoch or drift into the
// future; anything outside this window is junk, not data.
const (
	minTimestampYear = 2020
	maxTimestampYear = 2030
)

const (
	naiveLayout    = "2006-01-02 15:04:05"
	zonelessLayout = "2006-01-02T15:04:05"
)

// NormalizeTimestamp parses a source timestamp into a UTC instant plus its
// UTC date string. Three shapes are accepted: the export's naive local form
// ("YYYY-MM-DD HH:MM:SS"), ISO-8601 without a zone designator, and full
// ISO-8601 with a zone.
//
// Zoneless inputs are interpreted in loc. This assumes the source device and
// this process share a timezone, which is an approximation; pass the device's
// location when it is known. A nil loc falls back to time.Local.
func NormalizeTimestamp(s string, loc *time.Location) (time.Time, string, error) {
	if s == "" {
		return time.Time{}, "", fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.Local
	}

	var t time.Time
	var err error
	if t, err = time.ParseInLocation(naiveLayout, s, loc); err != nil {
		if t, err = time.ParseInLocation(zonelessLayout, s, loc); err != nil {
			if t, err = time.Parse(time.RFC3339, s); err != nil {
				return time.Time{}, "", fmt.Errorf("unrecognized timestamp %q", s)
			}
		}
	}

	utc := t.UTC()
	if err := ValidateTimestamp(utc); err != nil {
		return time.Time{}, "", err
	}
	return utc, utc.Format(shared.DateLayout), nil
}

// ValidateTimestamp rejects instants outside the supported year window.
func ValidateTimestamp(t time.Time) error {
	year := t.UTC().Year()
	if year < minTimestampYear || year > maxTimestampYear {
		return fmt.Errorf("timestamp year %d outside supported range [%d,%d]", year, minTimestampYear, maxTimestampYear)
	}
	return nil
}
