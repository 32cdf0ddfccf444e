package search

import (
	"sort"
	"time"

	"github.com/brensch/campwatch/internal/providers"
)

// normalizeDay returns t truncated to 00:00:00 UTC.
func normalizeDay(t time.Time) time.Time {
	tt := t.UTC()
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.UTC)
}

// Normalize collapses per-month availability entries into a map from campsite
// ID to the sorted days that site is free. When siteType is non-empty only
// sites whose declared type matches it exactly are kept. Sites left with no
// free days are omitted. Duplicate days across month payloads collapse to one.
func Normalize(states []providers.CampsiteAvailability, siteType string) map[string][]time.Time {
	sets := map[string]map[time.Time]struct{}{}
	for _, s := range states {
		if !s.Available {
			continue
		}
		if siteType != "" && s.SiteType != siteType {
			continue
		}
		d := normalizeDay(s.Date)
		if sets[s.ID] == nil {
			sets[s.ID] = map[time.Time]struct{}{}
		}
		sets[s.ID][d] = struct{}{}
	}
	out := make(map[string][]time.Time, len(sets))
	for id, set := range sets {
		days := make([]time.Time, 0, len(set))
		for d := range set {
			days = append(days, d)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
		out[id] = days
	}
	return out
}
