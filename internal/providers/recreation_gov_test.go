package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/brensch/campwatch/internal/httpx"
)

func newRecreationGovForTest(t *testing.T, srv *httptest.Server) *RecreationGov {
	t.Helper()
	return NewRecreationGov(httpx.RandomBrowserHeaders(), srv.URL)
}

func monthBody(campsites map[string]map[string]string) map[string]any {
	sites := map[string]any{}
	for id, avail := range campsites {
		sites[id] = map[string]any{
			"availabilities": avail,
			"campsite_type":  "STANDARD NONELECTRIC",
		}
	}
	return map[string]any{"campsites": sites}
}

func TestRecreationGov_FetchAvailability_OneRequestPerMonth(t *testing.T) {
	var captured []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/camps/availability/campground/") || !strings.HasSuffix(r.URL.Path, "/month") {
			http.NotFound(w, r)
			return
		}
		captured = append(captured, r.URL.Query().Get("start_date"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(monthBody(nil))
	}))
	defer srv.Close()

	p := newRecreationGovForTest(t, srv)

	// Crossing a month boundary must produce exactly two month-anchored requests.
	start := time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)
	_, err := p.FetchAvailability(context.Background(), "232448", start, end)
	if err != nil {
		t.Fatalf("FetchAvailability returned error: %v", err)
	}
	want := []string{"2024-06-01T00:00:00.000Z", "2024-07-01T00:00:00.000Z"}
	if len(captured) != len(want) {
		t.Fatalf("got %d requests want %d: %v", len(captured), len(want), captured)
	}
	for i := range want {
		if captured[i] != want[i] {
			t.Fatalf("request %d start_date got %q want %q", i, captured[i], want[i])
		}
	}
}

func TestRecreationGov_FetchAvailability_ParsesStates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(monthBody(map[string]map[string]string{
			"10040": {
				"2024-06-07T00:00:00Z": "Available",
				"2024-06-08T00:00:00Z": "Reserved",
			},
		}))
	}))
	defer srv.Close()

	p := newRecreationGovForTest(t, srv)
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	states, err := p.FetchAvailability(context.Background(), "232448", start, start.AddDate(0, 0, 9))
	if err != nil {
		t.Fatalf("FetchAvailability returned error: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("got %d states want 2: %+v", len(states), states)
	}
	byDate := map[string]CampsiteAvailability{}
	for _, s := range states {
		byDate[s.Date.Format("2006-01-02")] = s
	}
	if s := byDate["2024-06-07"]; !s.Available || s.ID != "10040" || s.SiteType != "STANDARD NONELECTRIC" {
		t.Fatalf("unexpected state for 2024-06-07: %+v", s)
	}
	if s := byDate["2024-06-08"]; s.Available {
		t.Fatalf("Reserved status should not be available: %+v", s)
	}
}

func TestRecreationGov_FetchAvailability_DropsFailedMonth(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "upstream sad", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(monthBody(map[string]map[string]string{
			"10040": {"2024-07-05T00:00:00Z": "Available"},
		}))
	}))
	defer srv.Close()

	p := newRecreationGovForTest(t, srv)
	start := time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)
	states, err := p.FetchAvailability(context.Background(), "232448", start, end)
	if err != nil {
		t.Fatalf("failed month must not be fatal, got: %v", err)
	}
	if calls != 2 {
		t.Fatalf("got %d calls want 2", calls)
	}
	if len(states) != 1 || !states[0].Date.Equal(time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("want only the surviving month's state, got %+v", states)
	}
}

func TestRecreationGov_FetchAvailability_QueryEncoded(t *testing.T) {
	var raw []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = append(raw, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(monthBody(nil))
	}))
	defer srv.Close()

	p := newRecreationGovForTest(t, srv)
	start := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
	_, err := p.FetchAvailability(context.Background(), "12345", start, start.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("FetchAvailability returned error: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("server did not receive any requests")
	}
	for _, q := range raw {
		parsed, _ := url.ParseQuery(q)
		if parsed.Get("start_date") == "" {
			t.Fatalf("start_date missing from query: %q", q)
		}
		if strings.ContainsAny(q, "+ :") {
			t.Fatalf("query appears not encoded: %q", q)
		}
	}
}

func TestRecreationGov_FetchCampgroundName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/camps/campgrounds/232448" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"campground": map[string]any{"facility_name": "TUOLUMNE MEADOWS"},
		})
	}))
	defer srv.Close()

	p := newRecreationGovForTest(t, srv)
	name, err := p.FetchCampgroundName(context.Background(), "232448")
	if err != nil {
		t.Fatalf("FetchCampgroundName returned error: %v", err)
	}
	if name != "TUOLUMNE MEADOWS" {
		t.Fatalf("got %q want TUOLUMNE MEADOWS", name)
	}

	_, err = p.FetchCampgroundName(context.Background(), "999999")
	if err == nil {
		t.Fatalf("missing campground must return an error")
	}
}

func Test_monthStarts(t *testing.T) {
	got := monthStarts(
		time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	)
	want := []time.Time{
		time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("month %d got %v want %v", i, got[i], want[i])
		}
	}
}
