package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/brensch/campwatch/internal/httpx"
)

const recreationGovBaseURL = "https://www.recreation.gov"

type RecreationGov struct {
	client  *http.Client
	headers httpx.Headers
	baseURL string
}

// NewRecreationGov builds a provider using the shared client. An empty
// baseURL selects the real recreation.gov host; tests point it elsewhere.
func NewRecreationGov(headers httpx.Headers, baseURL string) *RecreationGov {
	if baseURL == "" {
		baseURL = recreationGovBaseURL
	}
	return &RecreationGov{client: httpx.Default(), headers: headers, baseURL: baseURL}
}

func (r *RecreationGov) Name() string { return "recreation_gov" }

// CampsiteURL implements providers.Provider
func (r *RecreationGov) CampsiteURL(_ string, campsiteID string) string {
	if campsiteID == "" {
		return ""
	}
	return recreationGovBaseURL + "/camping/campsites/" + campsiteID
}

// CampgroundURL implements providers.Provider
func (r *RecreationGov) CampgroundURL(campgroundID string) string {
	if campgroundID == "" {
		return ""
	}
	return recreationGovBaseURL + "/camping/campgrounds/" + campgroundID
}

// availability is monthly, keyed by campsite id then date
type recGovMonthResp struct {
	Campsites map[string]struct {
		Availabilities map[string]string `json:"availabilities"`
		CampsiteType   string            `json:"campsite_type"`
	} `json:"campsites"`
}

// monthStarts returns the first-of-month days from start's month through
// end's month inclusive, at 00:00:00 UTC.
func monthStarts(start, end time.Time) []time.Time {
	var out []time.Time
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	endMonth := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(endMonth) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// FetchAvailability fetches monthly availability pages between start and end
// (inclusive by month). A month that returns a non-2xx status contributes
// nothing; the remaining months still count.
func (r *RecreationGov) FetchAvailability(ctx context.Context, campgroundID string, start, end time.Time) ([]CampsiteAvailability, error) {
	var out []CampsiteAvailability
	for _, month := range monthStarts(start, end) {
		u, err := url.Parse(fmt.Sprintf("%s/api/camps/availability/campground/%s/month", r.baseURL, campgroundID))
		if err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
		q := u.Query()
		// Recreation.gov expects RFC3339 with milliseconds and Zulu time.
		q.Set("start_date", month.UTC().Format("2006-01-02T15:04:05.000Z"))
		u.RawQuery = q.Encode()
		slog.Debug("fetching availability", slog.String("campground", campgroundID), slog.String("url", u.String()))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("build availability request: %w", err)
		}
		r.headers.Apply(req)
		resp, err := r.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("availability GET failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("availability read body failed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			// Drop this month's data but keep going with the rest.
			slog.Warn("availability month dropped",
				slog.String("campground", campgroundID),
				slog.Time("month", month),
				slog.Int("status", resp.StatusCode),
				slog.String("body", clipBody(body)))
			continue
		}
		var parsed recGovMonthResp
		err = json.Unmarshal(body, &parsed)
		if err != nil {
			return nil, fmt.Errorf("availability JSON decode failed: %w; body: %s", err, clipBody(body))
		}
		for siteID, data := range parsed.Campsites {
			for dateStr, status := range data.Availabilities {
				d, err := time.Parse(time.RFC3339, dateStr)
				if err != nil {
					slog.Error("bad date from rec.gov", slog.String("date", dateStr))
					continue
				}
				out = append(out, CampsiteAvailability{
					ID:        siteID,
					Date:      d.UTC(),
					SiteType:  data.CampsiteType,
					Available: status == "Available",
				})
			}
		}
	}
	return out, nil
}

// FetchCampgroundName looks up the campground's display name via the
// metadata endpoint.
func (r *RecreationGov) FetchCampgroundName(ctx context.Context, campgroundID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/camps/campgrounds/%s", r.baseURL, campgroundID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build campground metadata request: %w", err)
	}
	r.headers.Apply(req)
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("campground metadata GET failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("campground metadata read body failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("campground metadata status %d; body: %s", resp.StatusCode, clipBody(body))
	}
	var parsed struct {
		Campground struct {
			FacilityName string `json:"facility_name"`
		} `json:"campground"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("campground metadata JSON decode failed: %w; body: %s", err, clipBody(body))
	}
	if parsed.Campground.FacilityName == "" {
		return "", fmt.Errorf("campground %s has no facility_name", campgroundID)
	}
	return parsed.Campground.FacilityName, nil
}

// clipBody returns a short string version of a response body for error messages.
// It limits to a reasonable size to avoid logging huge payloads.
func clipBody(b []byte) string {
	const max = 2048
	if len(b) == 0 {
		return ""
	}
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
