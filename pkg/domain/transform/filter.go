package transform

import (
	"strings"
	"time"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/types"
)

// FilterActivities applies spec to records: inclusive date range, then
// case-insensitive sport allow-list, then the result cap. Records whose
// timestamps cannot be parsed are silently excluded by the date filter.
// Input order is preserved; the cap truncates without re-sorting, so any
// ordering guarantee must come from the upstream reader.
func FilterActivities(records []*types.RawActivityRecord, spec *types.FilterSpec, loc *time.Location) []*types.RawActivityRecord {
	if spec == nil {
		return records
	}

	out := records
	if spec.StartDate != "" || spec.EndDate != "" {
		out = filterByDateRange(out, spec.StartDate, spec.EndDate, loc)
	}
	if len(spec.Sports) > 0 {
		out = filterBySport(out, spec.Sports)
	}
	if spec.Limit > 0 && len(out) > spec.Limit {
		out = out[:spec.Limit]
	}
	return out
}

func filterByDateRange(records []*types.RawActivityRecord, start, end string, loc *time.Location) []*types.RawActivityRecord {
	var out []*types.RawActivityRecord
	for _, r := range records {
		_, date, err := NormalizeTimestamp(r.StartTime, loc)
		if err != nil {
			continue
		}
		if start != "" && date < start {
			continue
		}
		if end != "" && date > end {
			continue
		}
		out = append(out, r)
	}
	return out
}

func filterBySport(records []*types.RawActivityRecord, sports []string) []*types.RawActivityRecord {
	allowed := make(map[string]bool, len(sports))
	for _, s := range sports {
		allowed[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var out []*types.RawActivityRecord
	for _, r := range records {
		if r.Sport == "" {
			continue
		}
		if allowed[strings.ToLower(strings.TrimSpace(r.Sport))] {
			out = append(out, r)
		}
	}
	return out
}

// DateRangeFor returns the YYYY-MM-DD bounds [start, end] for an incremental
// window ending at now. A zero since means a full-range sync.
func DateRangeFor(since time.Time, now time.Time) (string, string) {
	end := now.UTC().Format(shared.DateLayout)
	if since.IsZero() {
		return "", end
	}
	start := since.Add(-shared.IncrementalOverlap).UTC().Format(shared.DateLayout)
	return start, end
}
