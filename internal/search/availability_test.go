package search

import (
	"reflect"
	"testing"
	"time"

	"github.com/brensch/campwatch/internal/providers"
)

func Test_Normalize_FiltersAndSorts(t *testing.T) {
	states := []providers.CampsiteAvailability{
		{ID: "1", Date: day(2024, 6, 8), SiteType: "STANDARD NONELECTRIC", Available: true},
		{ID: "1", Date: day(2024, 6, 7), SiteType: "STANDARD NONELECTRIC", Available: true},
		{ID: "1", Date: day(2024, 6, 9), SiteType: "STANDARD NONELECTRIC", Available: false},
		{ID: "2", Date: day(2024, 6, 7), SiteType: "STANDARD NONELECTRIC", Available: false},
	}
	got := Normalize(states, "")
	want := map[string][]time.Time{
		"1": {day(2024, 6, 7), day(2024, 6, 8)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if _, ok := got["2"]; ok {
		t.Fatalf("site with no available dates should be omitted")
	}
}

func Test_Normalize_SiteTypeExactMatch(t *testing.T) {
	states := []providers.CampsiteAvailability{
		{ID: "1", Date: day(2024, 6, 7), SiteType: "STANDARD NONELECTRIC", Available: true},
		{ID: "2", Date: day(2024, 6, 7), SiteType: "STANDARD ELECTRIC", Available: true},
		{ID: "3", Date: day(2024, 6, 7), SiteType: "standard nonelectric", Available: true},
	}
	got := Normalize(states, "STANDARD NONELECTRIC")
	if len(got) != 1 {
		t.Fatalf("got %d sites want 1: %v", len(got), got)
	}
	if _, ok := got["1"]; !ok {
		t.Fatalf("exact-type site missing: %v", got)
	}
}

func Test_Normalize_DedupesMonthBoundary(t *testing.T) {
	// The same date showing up in two month payloads must collapse to one.
	states := []providers.CampsiteAvailability{
		{ID: "1", Date: day(2024, 6, 30), Available: true},
		{ID: "1", Date: day(2024, 6, 30), Available: true},
		{ID: "1", Date: day(2024, 7, 1), Available: true},
	}
	got := Normalize(states, "")
	want := []time.Time{day(2024, 6, 30), day(2024, 7, 1)}
	if !reflect.DeepEqual(got["1"], want) {
		t.Fatalf("got %v want %v", got["1"], want)
	}
}

func Test_Normalize_NormalizesTimesToUTC(t *testing.T) {
	loc := time.FixedZone("X", 7*3600)
	states := []providers.CampsiteAvailability{
		{ID: "1", Date: time.Date(2024, 6, 7, 12, 30, 0, 0, loc), Available: true},
	}
	got := Normalize(states, "")
	want := day(2024, 6, 7)
	if len(got["1"]) != 1 || !got["1"][0].Equal(want) {
		t.Fatalf("got %v want [%v]", got["1"], want)
	}
}
