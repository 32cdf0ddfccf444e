package providers

import (
	"context"
	"time"
)

// CampsiteAvailability is one campsite's status on one night, as reported by
// the upstream API. Date is normalized to 00:00:00 UTC.
type CampsiteAvailability struct {
	ID        string
	Date      time.Time
	SiteType  string // e.g. "STANDARD NONELECTRIC"
	Available bool
}

type Provider interface {
	Name() string
	// FetchAvailability returns campsite availability for the given campground
	// and date range. Months that fail upstream are dropped, not fatal.
	FetchAvailability(ctx context.Context, campgroundID string, start, end time.Time) ([]CampsiteAvailability, error)
	// FetchCampgroundName returns the campground's display name.
	FetchCampgroundName(ctx context.Context, campgroundID string) (string, error)
	// CampsiteURL returns a link to the campsite details page for this provider.
	// campgroundID may be ignored by providers that only key by campsiteID.
	CampsiteURL(campgroundID, campsiteID string) string
	// CampgroundURL returns a link to the campground page for this provider.
	CampgroundURL(campgroundID string) string
}

type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry { return &Registry{providers: map[string]Provider{}} }

func (r *Registry) Register(name string, p Provider) { r.providers[name] = p }

func (r *Registry) Get(name string) (Provider, bool) { p, ok := r.providers[name]; return p, ok }
