package codec

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/banshee-data/commute.report/internal/trip"
)

func fullRecord() trip.Record {
	start := time.Date(2026, 5, 4, 8, 10, 0, 0, time.UTC)
	return trip.Record{
		ID:         "rec-1",
		TripTypeID: "type-commute",
		Start:      start,
		End:        start.Add(25 * time.Minute),
		Duration:   25 * time.Minute,
		Metrics: trip.Metrics{
			BrakingCount:          4,
			HardBrakingCount:      1,
			RoughRoadCount:        7,
			SharpTurnCount:        2,
			SpeedViolationCount:   1,
			AccelerationCount:     3,
			PhoneDistractionCount: 1,
			HornCount:             2,
			SirenCount:            1,
			MaxSpeedKMH:           94.5,
			AvgSpeedKMH:           41.25,
			SlowTraffic:           3 * time.Minute,
			DistanceMeters:        17250.5,
		},
		StartLocation: &trip.Location{Latitude: 52.52, Longitude: 13.405},
		EndLocation:   &trip.Location{Latitude: 52.4, Longitude: 13.06},
		Path: []trip.PathPoint{
			{Latitude: 52.52, Longitude: 13.405, Time: start, SpeedKMH: 0, Accuracy: 8},
			{Latitude: 52.5, Longitude: 13.38, Time: start.Add(5 * time.Minute), SpeedKMH: 48, Accuracy: 5},
		},
		TrafficPeriods: []trip.HeavyTrafficPeriod{
			{
				Start: start.Add(10 * time.Minute), End: start.Add(12 * time.Minute),
				StartIndex: 40, EndIndex: 52, AvgSpeedKMH: 8.5, Duration: 2 * time.Minute,
			},
		},
		Events: eventOfEachType(start),
	}
}

// eventOfEachType builds one event per known event type so round-trip tests
// exercise the full vocabulary.
func eventOfEachType(start time.Time) []trip.Event {
	events := make([]trip.Event, 0, len(trip.EventTypes))
	for i, eventType := range trip.EventTypes {
		events = append(events, trip.Event{
			ID:        fmt.Sprintf("ev-%d", i+1),
			Type:      eventType,
			Latitude:  52.51 - 0.01*float64(i),
			Longitude: 13.39 - 0.02*float64(i),
			SpeedKMH:  62 - float64(i),
			Accuracy:  6,
			Intensity: 0.8 - 0.05*float64(i),
			Time:      start.Add(time.Duration(i+3) * time.Minute),
		})
	}
	return events
}

func TestRecordRoundTrip(t *testing.T) {
	orig := fullRecord()
	data, err := EncodeRecord(orig)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeRecord(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(orig, decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("record changed across encode/decode (-want +got):\n%s", diff)
	}
}

func TestDecodeRecordLegacyKeys(t *testing.T) {
	legacy := []byte(`{
		"id": "rec-2",
		"tripTypeID": "type-commute",
		"startDate": "2026-05-04 08:10:00",
		"endDate": 1777896600,
		"durationSeconds": 1500,
		"carHornEvents": 3,
		"policeCarEvents": 2,
		"routePoints": [
			{"latitude": 52.5, "longitude": 13.4, "time": "2026/05/04 08:11:00", "speedKmh": 30, "accuracy": 10}
		]
	}`)
	rec, err := DecodeRecord(legacy)
	if err != nil {
		t.Fatal(err)
	}

	if rec.Metrics.HornCount != 3 {
		t.Errorf("HornCount = %d, want 3 from legacy key", rec.Metrics.HornCount)
	}
	if rec.Metrics.SirenCount != 2 {
		t.Errorf("SirenCount = %d, want 2 from legacy key", rec.Metrics.SirenCount)
	}
	if rec.TripTypeID != "type-commute" {
		t.Errorf("TripTypeID = %q", rec.TripTypeID)
	}
	wantStart := time.Date(2026, 5, 4, 8, 10, 0, 0, time.UTC)
	if !rec.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", rec.Start, wantStart)
	}
	if len(rec.Path) != 1 {
		t.Fatalf("Path length = %d, want 1", len(rec.Path))
	}

	// Missing counters and lists come back zeroed, not as decode errors.
	if rec.Metrics.BrakingCount != 0 || rec.Metrics.SpeedViolationCount != 0 {
		t.Errorf("missing counters should default to 0, got %+v", rec.Metrics)
	}
	if len(rec.Events) != 0 || len(rec.TrafficPeriods) != 0 {
		t.Errorf("missing lists should default to empty")
	}
}

func TestDecodeRecordLegacyMatchesModern(t *testing.T) {
	modern := []byte(`{"id":"r","tripTypeId":"t","start":"2026-05-04T08:10:00Z","end":"2026-05-04T08:35:00Z","durationSeconds":1500,"hornEvents":5,"sirenEvents":1}`)
	legacy := []byte(`{"id":"r","tripTypeId":"t","start":"2026-05-04T08:10:00Z","end":"2026-05-04T08:35:00Z","durationSeconds":1500,"carHornEvents":5,"policeCarEvents":1}`)

	recModern, err := DecodeRecord(modern)
	if err != nil {
		t.Fatal(err)
	}
	recLegacy, err := DecodeRecord(legacy)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(recModern, recLegacy, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("legacy keys decode differently from modern keys (-modern +legacy):\n%s", diff)
	}
}

func TestDecodeRecordModernKeyWins(t *testing.T) {
	// When both the current key and its legacy alias are present, the
	// current one is authoritative.
	data := []byte(`{"id":"r","tripTypeId":"t","start":0,"end":0,"durationSeconds":0,"hornEvents":7,"carHornEvents":3}`)
	rec, err := DecodeRecord(data)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Metrics.HornCount != 7 {
		t.Errorf("HornCount = %d, want modern value 7", rec.Metrics.HornCount)
	}
}

func TestDecodeRecordRejectsUnknownEventType(t *testing.T) {
	data := []byte(`{
		"id": "r",
		"tripTypeId": "t",
		"start": "2026-05-04T08:10:00Z",
		"end": "2026-05-04T08:35:00Z",
		"durationSeconds": 1500,
		"events": [
			{"id":"ev-1","type":"teleportation","latitude":52.5,"longitude":13.4,"speedKmh":30,"accuracy":5,"intensity":0.5,"time":"2026-05-04T08:12:00Z"}
		]
	}`)
	_, err := DecodeRecord(data)
	if err == nil {
		t.Fatal("expected an error for an unrecognized event type")
	}
	if !strings.Contains(err.Error(), "teleportation") {
		t.Errorf("error should name the offending type, got %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	orig := trip.Settings{
		SpeedLimitKMH:    110,
		KeepScreenOn:     true,
		LocationOrdering: false,
		MotionEnabled:    true,
		LocationEnabled:  false,
		AudioEnabled:     true,
	}
	data, err := EncodeSettings(orig)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeSettings(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(orig, decoded); diff != "" {
		t.Errorf("settings changed across encode/decode:\n%s", diff)
	}
}

func TestDecodeSettingsPartialFallsBackToDefaults(t *testing.T) {
	decoded, err := DecodeSettings([]byte(`{"speedLimitKmh": 120}`))
	if err != nil {
		t.Fatal(err)
	}
	want := trip.DefaultSettings()
	want.SpeedLimitKMH = 120
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("partial settings decode:\n%s", diff)
	}
}
