// Package motion turns raw device-frame sensor samples into vehicle-frame
// acceleration and classified driving events. It owns the orientation
// resolver, the frame transform and the sliding-window event detector.
package motion

import (
	"math"
	"time"
)

// Vector3 is a 3-axis sensor reading in the device frame.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Magnitude returns the Euclidean norm of the vector.
func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// SampleFrame is one motion sample delivered by the device. Acceleration is
// user acceleration in g (gravity removed); Gravity is the unit gravity
// vector; RotationRate is in rad/s. MagneticField and RelativeAltitude are
// optional capabilities and nil when the hardware does not provide them.
type SampleFrame struct {
	Time             time.Time
	Acceleration     Vector3
	RotationRate     Vector3
	Gravity          Vector3
	MagneticField    *Vector3
	RelativeAltitude *float64
}

// VehicleAcceleration is acceleration expressed in the vehicle frame:
// forward along the direction of travel, lateral to the right, vertical up.
type VehicleAcceleration struct {
	Forward  float64
	Lateral  float64
	Vertical float64
}
