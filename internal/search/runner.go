package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/brensch/campwatch/internal/providers"
	"golang.org/x/time/rate"
)

const (
	successEmoji = "🏕"
	failureEmoji = "❌"
)

// Notifier pushes a park's qualifying results somewhere other than stdout.
type Notifier interface {
	NotifyAvailability(ctx context.Context, rep ParkReport, w Window) error
}

// ParkReport is the outcome of searching one park.
type ParkReport struct {
	ParkID string
	Name   string
	URL    string
	Result Result
}

// GroupResult is the explicit outcome of one group in grouped mode. Err is
// set when the group failed partway; Found means at least one of its parks
// had a qualifying site.
type GroupResult struct {
	Group string
	Found bool
	Err   error
}

// Runner walks parks sequentially through fetch, normalize and analyze,
// pacing requests so upstream rate limiting stays quiet.
type Runner struct {
	prov     providers.Provider
	limiter  *rate.Limiter
	notifier Notifier
	out      io.Writer
}

// NewRunner builds a runner. delay is the pause inserted between parks;
// notifier may be nil.
func NewRunner(prov providers.Provider, delay time.Duration, notifier Notifier, out io.Writer) *Runner {
	if delay <= 0 {
		delay = time.Nanosecond
	}
	return &Runner{
		prov:     prov,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		notifier: notifier,
		out:      out,
	}
}

// SearchPark runs the full pipeline for a single park. A failed name lookup
// skips the park (nil report, nil error); any other failure is returned.
func (r *Runner) SearchPark(ctx context.Context, parkID string, w Window, siteType string) (*ParkReport, error) {
	states, err := r.prov.FetchAvailability(ctx, parkID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("fetch availability for %s: %w", parkID, err)
	}
	avail := Normalize(states, siteType)
	slog.Debug("normalized availability", slog.String("park", parkID), slog.Int("sites", len(avail)))

	name, err := r.prov.FetchCampgroundName(ctx, parkID)
	if err != nil {
		slog.Warn("skipping park, name lookup failed", slog.String("park", parkID), slog.Any("err", err))
		return nil, nil
	}

	res := CountAvailableSites(avail, w)
	rep := &ParkReport{ParkID: parkID, Name: name, URL: r.prov.CampgroundURL(parkID), Result: res}
	r.printReport(rep)

	if res.Available > 0 && r.notifier != nil {
		if err := r.notifier.NotifyAvailability(ctx, *rep, w); err != nil {
			slog.Warn("notification failed", slog.String("park", parkID), slog.Any("err", err))
		}
	}
	return rep, nil
}

// SearchParks searches each park in order and reports whether any park had a
// qualifying site. The first non-skip error aborts the remaining parks.
func (r *Runner) SearchParks(ctx context.Context, parkIDs []string, w Window, siteType string) (bool, error) {
	found := false
	for _, parkID := range parkIDs {
		if err := r.limiter.Wait(ctx); err != nil {
			return found, err
		}
		rep, err := r.SearchPark(ctx, parkID, w, siteType)
		if err != nil {
			return found, err
		}
		if rep != nil && rep.Result.Available > 0 {
			found = true
		}
	}
	if found {
		fmt.Fprintf(r.out, "There are campsites available from %s to %s!!!\n",
			w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	} else {
		fmt.Fprintln(r.out, "There are no campsites available :(")
	}
	return found, nil
}

// SearchGroups searches every group from the parks file and returns one
// result per group, in group-name order. A failure inside one group never
// aborts the rest.
func (r *Runner) SearchGroups(ctx context.Context, groups map[string][]string, w Window, siteType string) []GroupResult {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]GroupResult, 0, len(names))
	for _, name := range names {
		fmt.Fprintf(r.out, "Searching %s\n", name)
		found, err := r.SearchParks(ctx, groups[name], w, siteType)
		if err != nil {
			slog.Error("group search failed", slog.String("group", name), slog.Any("err", err))
		}
		out = append(out, GroupResult{Group: name, Found: found, Err: err})
		if ctx.Err() != nil {
			break
		}
	}
	return out
}

func (r *Runner) printReport(rep *ParkReport) {
	emoji := failureEmoji
	if rep.Result.Available > 0 {
		emoji = successEmoji
	}
	fmt.Fprintf(r.out, "%s %s (%s): %d site(s) available out of %d site(s)\n",
		emoji, rep.Name, rep.ParkID, rep.Result.Available, rep.Result.Maximum)
	for _, site := range rep.Result.Sites {
		fmt.Fprintf(r.out, "  site %s %s\n", site.SiteID, r.prov.CampsiteURL(rep.ParkID, site.SiteID))
		for i, run := range site.Options {
			fmt.Fprintf(r.out, "    option %d: %s\n", i+1, formatRun(run))
		}
	}
}

// formatRun renders a consecutive run as "2024-06-07 to 2024-06-09 (3 nights)".
func formatRun(run []time.Time) string {
	if len(run) == 0 {
		return ""
	}
	if len(run) == 1 {
		return run[0].Format("2006-01-02") + " (1 night)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s to %s (%d nights)",
		run[0].Format("2006-01-02"), run[len(run)-1].Format("2006-01-02"), len(run))
	return b.String()
}
