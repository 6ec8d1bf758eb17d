// Package scheduler polls sync configs and triggers due background syncs.
package scheduler

import (
	"fmt"
	"time"

	"github.com/stridewell/server/pkg/types"
)

// parsePreferredTime parses "HH:MM:SS". An empty value defaults to midnight.
func parsePreferredTime(s string) (hour, min, sec int, err error) {
	if s == "" {
		return 0, 0, 0, nil
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid preferred time %q: %w", s, err)
	}
	hour, min, sec = t.Clock()
	return hour, min, sec, nil
}

// frequencyInterval returns the step between scheduled runs. Manual-only
// configs have no interval.
func frequencyInterval(frequency string) (time.Duration, bool) {
	switch frequency {
	case types.FrequencyDaily:
		return 24 * time.Hour, true
	case types.FrequencyWeekly:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// NextRunAfter computes the next scheduled instant strictly after the given
// reference: the config's preferred time of day, stepped forward by the
// frequency interval until it clears the reference. Manual-only configs never
// schedule; the second return is false.
func NextRunAfter(cfg *types.SyncConfig, after time.Time) (time.Time, bool, error) {
	interval, ok := frequencyInterval(cfg.Frequency)
	if !ok {
		return time.Time{}, false, nil
	}

	hour, min, sec, err := parsePreferredTime(cfg.PreferredTime)
	if err != nil {
		return time.Time{}, false, err
	}

	next := time.Date(after.Year(), after.Month(), after.Day(), hour, min, sec, 0, after.Location())
	for !next.After(after) {
		next = next.Add(interval)
	}
	return next, true, nil
}

// IsDue reports whether a config should sync now. Disabled and manual-only
// configs are never due. A config that has never synced is due immediately;
// otherwise due-ness follows next_sync_at when present, or is derived from
// last_sync_at.
func IsDue(cfg *types.SyncConfig, now time.Time) bool {
	if cfg == nil || !cfg.Enabled {
		return false
	}
	if _, ok := frequencyInterval(cfg.Frequency); !ok {
		return false
	}

	if cfg.NextSyncAt != nil {
		return !now.Before(*cfg.NextSyncAt)
	}
	if cfg.LastSyncAt == nil {
		return true
	}

	next, ok, err := NextRunAfter(cfg, *cfg.LastSyncAt)
	if err != nil || !ok {
		return false
	}
	return !now.Before(next)
}
