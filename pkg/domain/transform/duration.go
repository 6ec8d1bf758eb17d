package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDurationMinutes converts a source duration string to whole minutes.
// Accepted shapes: "H:MM:SS", "MM:SS", "SS". Leftover seconds of 30 or more
// round the result up. Empty input means "not recorded" and yields 0; any
// other token count is a format error.
func ParseDurationMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	parts := strings.Split(s, ":")
	var hours, minutes, seconds int
	var err error

	switch len(parts) {
	case 3:
		if hours, err = parseDurationPart(parts[0]); err != nil {
			return 0, err
		}
		if minutes, err = parseDurationPart(parts[1]); err != nil {
			return 0, err
		}
		if seconds, err = parseDurationPart(parts[2]); err != nil {
			return 0, err
		}
	case 2:
		if minutes, err = parseDurationPart(parts[0]); err != nil {
			return 0, err
		}
		if seconds, err = parseDurationPart(parts[1]); err != nil {
			return 0, err
		}
	case 1:
		if seconds, err = parseDurationPart(parts[0]); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("invalid duration format %q: expected H:MM:SS, MM:SS or SS", s)
	}

	totalSeconds := hours*3600 + minutes*60 + seconds
	total := totalSeconds / 60
	if totalSeconds%60 >= 30 {
		total++
	}
	return total, nil
}

func parseDurationPart(p string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(p))
	if err != nil {
		return 0, fmt.Errorf("invalid duration component %q", p)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative duration component %q", p)
	}
	return n, nil
}
