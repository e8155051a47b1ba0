package motion

// Orientation is the resolved pose of the device.
type Orientation string

const (
	OrientationUnknown        Orientation = "unknown"
	OrientationPortrait       Orientation = "portrait"
	OrientationUpsideDown     Orientation = "upside_down"
	OrientationLandscapeLeft  Orientation = "landscape_left"
	OrientationLandscapeRight Orientation = "landscape_right"
	OrientationFaceUp         Orientation = "face_up"
	OrientationFaceDown       Orientation = "face_down"
)

const (
	// dominanceThreshold is the minimum axis magnitude (in g) for that axis
	// to decide the orientation outright.
	dominanceThreshold = 0.7

	// orientationHistorySize is how many recent classifications vote on the
	// stable orientation.
	orientationHistorySize = 10
)

// OrientationResolver classifies per-sample device pose from the gravity
// vector and smooths the result with a majority vote over recent
// classifications so momentary flicker does not reorient the frame
// transform.
type OrientationResolver struct {
	history []Orientation
}

// NewOrientationResolver returns a resolver with empty history.
func NewOrientationResolver() *OrientationResolver {
	return &OrientationResolver{
		history: make([]Orientation, 0, orientationHistorySize),
	}
}

// Classify maps a gravity vector onto an orientation by dominant axis.
// Gravity conventions follow device motion frameworks: lying flat screen-up
// gives z near -1, held upright portrait gives y near -1.
func Classify(gravity Vector3) Orientation {
	absX, absY, absZ := abs(gravity.X), abs(gravity.Y), abs(gravity.Z)

	switch {
	case absZ > dominanceThreshold && absZ >= absX && absZ >= absY:
		if gravity.Z < 0 {
			return OrientationFaceUp
		}
		return OrientationFaceDown
	case absY > dominanceThreshold && absY >= absX:
		if gravity.Y < 0 {
			return OrientationPortrait
		}
		return OrientationUpsideDown
	case absX > dominanceThreshold:
		if gravity.X < 0 {
			return OrientationLandscapeLeft
		}
		return OrientationLandscapeRight
	default:
		return OrientationUnknown
	}
}

// Observe classifies one gravity sample, records it in the history and
// returns the instantaneous classification.
func (r *OrientationResolver) Observe(gravity Vector3) Orientation {
	o := Classify(gravity)
	if len(r.history) == orientationHistorySize {
		copy(r.history, r.history[1:])
		r.history = r.history[:orientationHistorySize-1]
	}
	r.history = append(r.history, o)
	return o
}

// Stable returns the most frequent orientation in the history, breaking ties
// in favour of the most recently observed value. With no history it returns
// OrientationUnknown.
func (r *OrientationResolver) Stable() Orientation {
	if len(r.history) == 0 {
		return OrientationUnknown
	}

	counts := make(map[Orientation]int, len(r.history))
	for _, o := range r.history {
		counts[o]++
	}

	best := OrientationUnknown
	bestCount := 0
	// Scan newest-first so the most recent value wins ties.
	for i := len(r.history) - 1; i >= 0; i-- {
		o := r.history[i]
		if counts[o] > bestCount {
			best = o
			bestCount = counts[o]
		}
	}
	return best
}

// Reset clears the classification history.
func (r *OrientationResolver) Reset() {
	r.history = r.history[:0]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
