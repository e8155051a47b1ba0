package motion

import "math"

const (
	// smoothingAlpha weights the newest sample in the single-pole low-pass
	// filter applied to vehicle-frame acceleration.
	smoothingAlpha = 0.8

	// tiltGain scales the forward-axis correction for the horizontal
	// gravity component, suppressing incline-induced phantom acceleration.
	tiltGain = 0.1
)

// Rotate maps a device-frame vector into the vehicle frame for the given
// orientation using a fixed axis permutation and sign rule per pose.
// Portrait is the identity mapping (forward = device y, lateral = device x,
// vertical = device z); landscape left and right are sign mirrors of each
// other. An unknown orientation falls back to the portrait mapping.
func Rotate(o Orientation, v Vector3) VehicleAcceleration {
	switch o {
	case OrientationUpsideDown:
		return VehicleAcceleration{Forward: -v.Y, Lateral: -v.X, Vertical: v.Z}
	case OrientationLandscapeLeft:
		return VehicleAcceleration{Forward: -v.X, Lateral: v.Y, Vertical: v.Z}
	case OrientationLandscapeRight:
		return VehicleAcceleration{Forward: v.X, Lateral: -v.Y, Vertical: v.Z}
	case OrientationFaceUp:
		return VehicleAcceleration{Forward: v.Y, Lateral: v.X, Vertical: -v.Z}
	case OrientationFaceDown:
		return VehicleAcceleration{Forward: v.Y, Lateral: -v.X, Vertical: v.Z}
	default: // portrait and unknown
		return VehicleAcceleration{Forward: v.Y, Lateral: v.X, Vertical: v.Z}
	}
}

// FrameTransform converts device-frame acceleration into smoothed
// vehicle-frame acceleration. The rotation itself is the pure Rotate rule;
// the transform additionally carries the low-pass filter state.
type FrameTransform struct {
	filtered    VehicleAcceleration
	initialized bool
}

// NewFrameTransform returns a transform with empty filter state.
func NewFrameTransform() *FrameTransform {
	return &FrameTransform{}
}

// Apply rotates accel into the vehicle frame for the stable orientation,
// compensates the forward axis for incline tilt and runs the low-pass
// filter. Gravity is the same-sample gravity vector used for the tilt term.
func (t *FrameTransform) Apply(o Orientation, accel, gravity Vector3) VehicleAcceleration {
	va := Rotate(o, accel)

	// On an incline part of gravity leaks into the forward axis and shows
	// up as sustained phantom acceleration. Correct by the horizontal
	// gravity magnitude, signed by the leaked direction.
	horizontal := math.Hypot(gravity.X, gravity.Y)
	if va.Forward >= 0 {
		va.Forward -= tiltGain * horizontal
	} else {
		va.Forward += tiltGain * horizontal
	}

	if !t.initialized {
		t.filtered = va
		t.initialized = true
		return t.filtered
	}

	t.filtered = VehicleAcceleration{
		Forward:  smoothingAlpha*va.Forward + (1-smoothingAlpha)*t.filtered.Forward,
		Lateral:  smoothingAlpha*va.Lateral + (1-smoothingAlpha)*t.filtered.Lateral,
		Vertical: smoothingAlpha*va.Vertical + (1-smoothingAlpha)*t.filtered.Vertical,
	}
	return t.filtered
}

// Reset clears the filter state.
func (t *FrameTransform) Reset() {
	t.filtered = VehicleAcceleration{}
	t.initialized = false
}
