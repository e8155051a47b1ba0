package analytics

import (
	"testing"
	"time"

	"github.com/banshee-data/commute.report/internal/trip"
)

var queryLat, queryLon = 51.5074, -0.1278

func historicalTrip(typeID string, lat, lon float64, age time.Duration, now time.Time) trip.Record {
	return trip.Record{
		ID:            "h",
		TripTypeID:    typeID,
		Start:         now.Add(-age),
		Duration:      25 * time.Minute,
		StartLocation: &trip.Location{Latitude: lat, Longitude: lon},
	}
}

func TestRankTypesNearBeatsFar(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	// "near" started exactly at the query location one day ago; "far"
	// started ~4 km east, also one day ago.
	history := []trip.Record{
		historicalTrip("near", queryLat, queryLon, 24*time.Hour, now),
		historicalTrip("far", queryLat, queryLon+0.0577, 24*time.Hour, now),
	}
	types := []trip.Type{
		{ID: "far", Name: "Far Office"},
		{ID: "near", Name: "Near Office"},
	}

	ranked := RankTypes(types, history, queryLat, queryLon, now)
	if ranked[0].Type.ID != "near" {
		t.Errorf("expected near type first, got %q", ranked[0].Type.ID)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("near score %f must exceed far score %f", ranked[0].Score, ranked[1].Score)
	}
	if ranked[1].Score <= 0 {
		t.Errorf("4 km history is within the radius and must still score, got %f", ranked[1].Score)
	}
}

func TestRankTypesRecencyWeight(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	history := []trip.Record{
		historicalTrip("fresh", queryLat, queryLon, 24*time.Hour, now),
		historicalTrip("stale", queryLat, queryLon, 90*24*time.Hour, now),
	}
	types := []trip.Type{
		{ID: "stale", Name: "Old Route"},
		{ID: "fresh", Name: "Current Route"},
	}

	ranked := RankTypes(types, history, queryLat, queryLon, now)
	if ranked[0].Type.ID != "fresh" {
		t.Errorf("expected fresh type first, got %q", ranked[0].Type.ID)
	}
}

func TestRankTypesBeyondRadiusScoresZero(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	// ~11 km away: outside the 5 km radius.
	history := []trip.Record{
		historicalTrip("remote", queryLat+0.1, queryLon, 24*time.Hour, now),
	}
	types := []trip.Type{{ID: "remote", Name: "Remote"}}

	ranked := RankTypes(types, history, queryLat, queryLon, now)
	if ranked[0].Score != 0 || ranked[0].SampleCount != 0 {
		t.Errorf("out-of-radius history must score 0, got %f (%d samples)", ranked[0].Score, ranked[0].SampleCount)
	}
}

func TestRankTypesFrequencyBonus(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	var history []trip.Record
	for i := 0; i < 5; i++ {
		history = append(history, historicalTrip("busy", queryLat, queryLon, time.Duration(i+1)*24*time.Hour, now))
	}
	history = append(history, historicalTrip("rare", queryLat, queryLon, 24*time.Hour, now))

	types := []trip.Type{
		{ID: "rare", Name: "Rare"},
		{ID: "busy", Name: "Busy"},
	}

	ranked := RankTypes(types, history, queryLat, queryLon, now)
	if ranked[0].Type.ID != "busy" {
		t.Errorf("frequency bonus must rank the busy type first, got %q", ranked[0].Type.ID)
	}
	if ranked[0].SampleCount != 5 {
		t.Errorf("SampleCount = %d, want 5", ranked[0].SampleCount)
	}
}

func TestRankTypesZeroScoreKeepsInputOrder(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	types := []trip.Type{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	}

	ranked := RankTypes(types, nil, queryLat, queryLon, now)
	for i, want := range []string{"a", "b", "c"} {
		if ranked[i].Type.ID != want {
			t.Errorf("position %d = %q, want %q (stable order for zero scores)", i, ranked[i].Type.ID, want)
		}
	}
}

func TestRankTypesIgnoresRecordsWithoutStartLocation(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	history := []trip.Record{
		{ID: "x", TripTypeID: "t", Start: now.Add(-24 * time.Hour)},
	}
	types := []trip.Type{{ID: "t", Name: "T"}}

	ranked := RankTypes(types, history, queryLat, queryLon, now)
	if ranked[0].Score != 0 {
		t.Errorf("records without a start location must not contribute, got %f", ranked[0].Score)
	}
}
