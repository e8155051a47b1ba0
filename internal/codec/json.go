package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/banshee-data/commute.report/internal/trip"
)

// recordJSON is the JSON interchange shape of a trip.Record. The canonical
// field names below are the only ones ever written; older exports with
// different names are handled during decode by migrateRecord.
type recordJSON struct {
	ID         string   `json:"id"`
	TripTypeID string   `json:"tripTypeId"`
	Start      FlexTime `json:"start"`
	End        FlexTime `json:"end"`
	DurationS  float64  `json:"durationSeconds"`

	BrakingEvents          int `json:"brakingEvents"`
	HardBrakingEvents      int `json:"hardBrakingEvents"`
	RoughRoadEvents        int `json:"roughRoadEvents"`
	SharpTurnEvents        int `json:"sharpTurnEvents"`
	SpeedViolations        int `json:"speedViolations"`
	AccelerationEvents     int `json:"accelerationEvents"`
	PhoneDistractionEvents int `json:"phoneDistractionEvents"`
	HornEvents             int `json:"hornEvents"`
	SirenEvents            int `json:"sirenEvents"`

	MaxSpeedKMH  float64 `json:"maxSpeedKmh"`
	AvgSpeedKMH  float64 `json:"avgSpeedKmh"`
	SlowTrafficS float64 `json:"slowTrafficSeconds"`
	DistanceM    float64 `json:"distanceMeters"`

	StartLocation *locationJSON `json:"startLocation,omitempty"`
	EndLocation   *locationJSON `json:"endLocation,omitempty"`

	Path           []pathPointJSON `json:"path"`
	TrafficPeriods []trafficJSON   `json:"trafficPeriods"`
	Events         []eventJSON     `json:"events"`
}

type locationJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type pathPointJSON struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Time      FlexTime `json:"time"`
	SpeedKMH  float64  `json:"speedKmh"`
	Accuracy  float64  `json:"accuracy"`
}

type trafficJSON struct {
	Start       FlexTime `json:"start"`
	End         FlexTime `json:"end"`
	StartIndex  int      `json:"startIndex"`
	EndIndex    int      `json:"endIndex"`
	AvgSpeedKMH float64  `json:"avgSpeedKmh"`
	DurationS   float64  `json:"durationSeconds"`
}

type eventJSON struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	SpeedKMH  float64  `json:"speedKmh"`
	Accuracy  float64  `json:"accuracy"`
	Intensity float64  `json:"intensity"`
	Time      FlexTime `json:"time"`
}

type tripTypeJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Builtin bool   `json:"builtin"`
	OneOff  bool   `json:"oneOff"`
}

type settingsJSON struct {
	SpeedLimitKMH    float64 `json:"speedLimitKmh"`
	KeepScreenOn     bool    `json:"keepScreenOn"`
	LocationOrdering bool    `json:"locationOrdering"`
	MotionEnabled    bool    `json:"motionEnabled"`
	LocationEnabled  bool    `json:"locationEnabled"`
	AudioEnabled     bool    `json:"audioEnabled"`
}

func toRecordJSON(r trip.Record) recordJSON {
	out := recordJSON{
		ID:         r.ID,
		TripTypeID: r.TripTypeID,
		Start:      FlexTime(r.Start),
		End:        FlexTime(r.End),
		DurationS:  r.Duration.Seconds(),

		BrakingEvents:          r.Metrics.BrakingCount,
		HardBrakingEvents:      r.Metrics.HardBrakingCount,
		RoughRoadEvents:        r.Metrics.RoughRoadCount,
		SharpTurnEvents:        r.Metrics.SharpTurnCount,
		SpeedViolations:        r.Metrics.SpeedViolationCount,
		AccelerationEvents:     r.Metrics.AccelerationCount,
		PhoneDistractionEvents: r.Metrics.PhoneDistractionCount,
		HornEvents:             r.Metrics.HornCount,
		SirenEvents:            r.Metrics.SirenCount,

		MaxSpeedKMH:  r.Metrics.MaxSpeedKMH,
		AvgSpeedKMH:  r.Metrics.AvgSpeedKMH,
		SlowTrafficS: r.Metrics.SlowTraffic.Seconds(),
		DistanceM:    r.Metrics.DistanceMeters,

		Path:           make([]pathPointJSON, 0, len(r.Path)),
		TrafficPeriods: make([]trafficJSON, 0, len(r.TrafficPeriods)),
		Events:         make([]eventJSON, 0, len(r.Events)),
	}
	if r.StartLocation != nil {
		out.StartLocation = &locationJSON{Latitude: r.StartLocation.Latitude, Longitude: r.StartLocation.Longitude}
	}
	if r.EndLocation != nil {
		out.EndLocation = &locationJSON{Latitude: r.EndLocation.Latitude, Longitude: r.EndLocation.Longitude}
	}
	for _, p := range r.Path {
		out.Path = append(out.Path, pathPointJSON{
			Latitude: p.Latitude, Longitude: p.Longitude,
			Time: FlexTime(p.Time), SpeedKMH: p.SpeedKMH, Accuracy: p.Accuracy,
		})
	}
	for _, tp := range r.TrafficPeriods {
		out.TrafficPeriods = append(out.TrafficPeriods, trafficJSON{
			Start: FlexTime(tp.Start), End: FlexTime(tp.End),
			StartIndex: tp.StartIndex, EndIndex: tp.EndIndex,
			AvgSpeedKMH: tp.AvgSpeedKMH, DurationS: tp.Duration.Seconds(),
		})
	}
	for _, e := range r.Events {
		out.Events = append(out.Events, eventJSON{
			ID: e.ID, Type: string(e.Type),
			Latitude: e.Latitude, Longitude: e.Longitude,
			SpeedKMH: e.SpeedKMH, Accuracy: e.Accuracy,
			Intensity: e.Intensity, Time: FlexTime(e.Time),
		})
	}
	return out
}

func (r recordJSON) toRecord() (trip.Record, error) {
	out := trip.Record{
		ID:         r.ID,
		TripTypeID: r.TripTypeID,
		Start:      r.Start.Time(),
		End:        r.End.Time(),
		Duration:   secondsToDuration(r.DurationS),
		Metrics: trip.Metrics{
			BrakingCount:          r.BrakingEvents,
			HardBrakingCount:      r.HardBrakingEvents,
			RoughRoadCount:        r.RoughRoadEvents,
			SharpTurnCount:        r.SharpTurnEvents,
			SpeedViolationCount:   r.SpeedViolations,
			AccelerationCount:     r.AccelerationEvents,
			PhoneDistractionCount: r.PhoneDistractionEvents,
			HornCount:             r.HornEvents,
			SirenCount:            r.SirenEvents,
			MaxSpeedKMH:           r.MaxSpeedKMH,
			AvgSpeedKMH:           r.AvgSpeedKMH,
			SlowTraffic:           secondsToDuration(r.SlowTrafficS),
			DistanceMeters:        r.DistanceM,
		},
		Path:           make([]trip.PathPoint, 0, len(r.Path)),
		TrafficPeriods: make([]trip.HeavyTrafficPeriod, 0, len(r.TrafficPeriods)),
		Events:         make([]trip.Event, 0, len(r.Events)),
	}
	if r.StartLocation != nil {
		out.StartLocation = &trip.Location{Latitude: r.StartLocation.Latitude, Longitude: r.StartLocation.Longitude}
	}
	if r.EndLocation != nil {
		out.EndLocation = &trip.Location{Latitude: r.EndLocation.Latitude, Longitude: r.EndLocation.Longitude}
	}
	for _, p := range r.Path {
		out.Path = append(out.Path, trip.PathPoint{
			Latitude: p.Latitude, Longitude: p.Longitude,
			Time: p.Time.Time(), SpeedKMH: p.SpeedKMH, Accuracy: p.Accuracy,
		})
	}
	for _, tp := range r.TrafficPeriods {
		out.TrafficPeriods = append(out.TrafficPeriods, trip.HeavyTrafficPeriod{
			Start: tp.Start.Time(), End: tp.End.Time(),
			StartIndex: tp.StartIndex, EndIndex: tp.EndIndex,
			AvgSpeedKMH: tp.AvgSpeedKMH, Duration: secondsToDuration(tp.DurationS),
		})
	}
	for _, e := range r.Events {
		eventType := trip.EventType(e.Type)
		if !eventType.IsValid() {
			return trip.Record{}, fmt.Errorf("unknown event type %q", e.Type)
		}
		out.Events = append(out.Events, trip.Event{
			ID: e.ID, Type: eventType,
			Latitude: e.Latitude, Longitude: e.Longitude,
			SpeedKMH: e.SpeedKMH, Accuracy: e.Accuracy,
			Intensity: e.Intensity, Time: e.Time.Time(),
		})
	}
	return out, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// EncodeRecord serializes a trip record using the current schema.
func EncodeRecord(r trip.Record) ([]byte, error) {
	return json.Marshal(toRecordJSON(r))
}

// DecodeRecord deserializes a trip record from any supported schema version.
// Legacy field names and missing optional fields are migrated to the current
// shape before decoding. A record carrying an unrecognized event type is
// rejected as undecodable.
func DecodeRecord(data []byte) (trip.Record, error) {
	migrated, err := migrateRecord(data)
	if err != nil {
		return trip.Record{}, err
	}
	var dto recordJSON
	if err := json.Unmarshal(migrated, &dto); err != nil {
		return trip.Record{}, fmt.Errorf("decoding trip record: %w", err)
	}
	rec, err := dto.toRecord()
	if err != nil {
		return trip.Record{}, fmt.Errorf("decoding trip record: %w", err)
	}
	return rec, nil
}

// EncodeSettings serializes settings using the current schema.
func EncodeSettings(s trip.Settings) ([]byte, error) {
	return json.Marshal(settingsJSON(s))
}

// DecodeSettings deserializes settings; absent fields keep the defaults.
func DecodeSettings(data []byte) (trip.Settings, error) {
	dto := settingsJSON(trip.DefaultSettings())
	if err := json.Unmarshal(data, &dto); err != nil {
		return trip.Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return trip.Settings(dto), nil
}
