package search

import (
	"log/slog"
	"sort"
	"time"
)

// Window describes what the user is hunting for: the date range (End is the
// leave day, so the last countable night is End minus one day), how many
// consecutive nights are needed, and whether every night counts or only
// weekend nights (Friday through Sunday, the default).
type Window struct {
	Start     time.Time
	End       time.Time
	Nights    int
	AllNights bool
}

// SiteResult is one qualifying campsite and its booking options. Each option
// is a maximal run of consecutive free nights, ascending, at least as long as
// the effective nights requirement.
type SiteResult struct {
	SiteID  string
	Options [][]time.Time
}

// Result is the outcome of analyzing one campground's availability map.
type Result struct {
	Available int // sites with at least one qualifying run
	Maximum   int // all sites present in the input map
	Sites     []SiteResult
}

// dayOrdinal converts a UTC midnight day to a day number. Works because
// midnight UTC is always an exact multiple of 86400 seconds.
func dayOrdinal(t time.Time) int64 {
	return t.Unix() / 86400
}

// ordinalDay is the inverse of dayOrdinal.
func ordinalDay(ord int64) time.Time {
	return time.Unix(ord*86400, 0).UTC()
}

// weekendNight reports whether d is a Friday, Saturday or Sunday night.
func weekendNight(d time.Time) bool {
	switch d.Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return true
	}
	return false
}

// candidateNights returns the set of nights in [Start, End) that the window
// cares about.
func candidateNights(w Window) map[time.Time]struct{} {
	out := map[time.Time]struct{}{}
	for d := normalizeDay(w.Start); d.Before(normalizeDay(w.End)); d = d.AddDate(0, 0, 1) {
		if !w.AllNights && !weekendNight(d) {
			continue
		}
		out[d] = struct{}{}
	}
	return out
}

// qualifyingRuns sorts the days, partitions them into maximal runs of
// consecutive ordinals, and returns every run of at least nights days.
func qualifyingRuns(days []time.Time, nights int) [][]time.Time {
	if len(days) == 0 {
		return nil
	}
	ords := make([]int64, len(days))
	for i, d := range days {
		ords[i] = dayOrdinal(normalizeDay(d))
	}
	sort.Slice(ords, func(i, j int) bool { return ords[i] < ords[j] })

	var out [][]time.Time
	runStart := 0
	flush := func(end int) {
		if end-runStart < nights {
			return
		}
		run := make([]time.Time, 0, end-runStart)
		for _, o := range ords[runStart:end] {
			run = append(run, ordinalDay(o))
		}
		out = append(out, run)
	}
	for i := 1; i < len(ords); i++ {
		if ords[i] != ords[i-1]+1 {
			flush(i)
			runStart = i
		}
	}
	flush(len(ords))
	return out
}

// CountAvailableSites intersects each site's free days with the window's
// candidate nights and reports the sites holding a long-enough run of
// consecutive nights. Pure function of its inputs.
func CountAvailableSites(avail map[string][]time.Time, w Window) Result {
	res := Result{Maximum: len(avail)}

	numDays := int(dayOrdinal(normalizeDay(w.End)) - dayOrdinal(normalizeDay(w.Start)))
	nights := w.Nights
	if nights < 1 || nights > numDays {
		nights = numDays
		slog.Debug("setting number of nights to full range", slog.Int("nights", nights))
	}
	if nights < 1 {
		return res
	}

	want := candidateNights(w)
	for siteID, days := range avail {
		var desired []time.Time
		for _, d := range days {
			if _, ok := want[normalizeDay(d)]; ok {
				desired = append(desired, d)
			}
		}
		if len(desired) == 0 {
			continue
		}
		runs := qualifyingRuns(desired, nights)
		if len(runs) == 0 {
			continue
		}
		res.Available++
		res.Sites = append(res.Sites, SiteResult{SiteID: siteID, Options: runs})
	}
	sort.Slice(res.Sites, func(i, j int) bool { return res.Sites[i].SiteID < res.Sites[j].SiteID })
	return res
}
