// Package trip defines the core data model of the telemetry engine: driving
// events, per-trip metrics, recorded paths, heavy-traffic periods and the
// immutable trip record, together with the pure analyses over them (driving
// score, traffic-window detection).
package trip

import "time"

// EventType classifies a detected driving event.
type EventType string

const (
	EventBraking          EventType = "braking"
	EventHardBraking      EventType = "hard_braking"
	EventAcceleration     EventType = "acceleration"
	EventSharpTurn        EventType = "sharp_turn"
	EventRoughRoad        EventType = "rough_road"
	EventPhoneDistraction EventType = "phone_distraction"
	EventHorn             EventType = "horn"
	EventSiren            EventType = "siren"
)

// EventTypes lists every valid event type.
var EventTypes = []EventType{
	EventBraking, EventHardBraking, EventAcceleration, EventSharpTurn,
	EventRoughRoad, EventPhoneDistraction, EventHorn, EventSiren,
}

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Event is a single classified driving event. Events are immutable once
// created and carry the location snapshot at detection time.
type Event struct {
	ID        string
	Type      EventType
	Latitude  float64
	Longitude float64
	SpeedKMH  float64
	Accuracy  float64 // horizontal accuracy of the location snapshot, metres
	Intensity float64 // 0.0 .. 1.0
	Time      time.Time
}

// Metrics accumulates the per-trip counters and extrema. It is mutated only
// by the session aggregator while a trip is active and frozen into the Record
// at trip end. The driving score is a pure function of this struct.
type Metrics struct {
	BrakingCount          int
	HardBrakingCount      int
	RoughRoadCount        int
	SharpTurnCount        int
	SpeedViolationCount   int
	AccelerationCount     int
	PhoneDistractionCount int
	HornCount             int
	SirenCount            int

	MaxSpeedKMH float64
	AvgSpeedKMH float64

	SlowTraffic    time.Duration // cumulative time below the slow-traffic threshold
	DistanceMeters float64
}

// PathPoint is one recorded location fix of a trip's path.
type PathPoint struct {
	Latitude  float64
	Longitude float64
	Time      time.Time
	SpeedKMH  float64
	Accuracy  float64 // horizontal accuracy, metres
}

// HeavyTrafficPeriod is a sustained interval of slow movement detected in a
// recorded path. Derived once at trip end; never mutated afterwards.
type HeavyTrafficPeriod struct {
	Start       time.Time
	End         time.Time
	StartIndex  int // index of the first path point in the run
	EndIndex    int // index of the last path point in the run
	AvgSpeedKMH float64
	Duration    time.Duration
}

// Location is a bare coordinate pair used for trip start/end positions.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Record is the immutable result of a finished trip: the unit of persistence,
// export and historical analytics.
type Record struct {
	ID         string
	TripTypeID string
	Start      time.Time
	End        time.Time
	Duration   time.Duration

	Metrics Metrics

	StartLocation *Location
	EndLocation   *Location

	Path           []PathPoint
	TrafficPeriods []HeavyTrafficPeriod
	Events         []Event
}

// Type is a named, reusable commute template (e.g. "Home to Office"),
// distinct from a single realised trip. The ID is the join key for
// historical analytics and never changes; only the display name is mutable.
type Type struct {
	ID      string
	Name    string
	Builtin bool // shipped default, cannot be deleted
	OneOff  bool // ad hoc trip, excluded from recurring-trip analytics
}
