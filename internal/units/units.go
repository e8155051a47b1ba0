// Package units provides shared constants and conversion helpers for speeds
// and distances used across the engine.
package units

// Unit constants
const (
	MPS  = "mps"
	KMPH = "kmph"
	KPH  = "kph"
	MPH  = "mph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, KMPH, KPH, MPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// MPSToKMH converts a speed in meters per second to kilometers per hour.
// GPS Doppler speeds can come in negative when the fix is poor; those are
// floored at zero before conversion.
func MPSToKMH(speedMPS float64) float64 {
	if speedMPS < 0 {
		speedMPS = 0
	}
	return speedMPS * 3.6
}

// KMHToMPS converts a speed in kilometers per hour to meters per second.
func KMHToMPS(speedKMH float64) float64 {
	return speedKMH / 3.6
}

// ConvertSpeed converts a speed from meters per second to the target units.
// All persisted speeds are stored in m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.23694 // m/s to mph
	case KMPH, KPH:
		return speedMPS * 3.6 // m/s to km/h
	case MPS:
		return speedMPS // no conversion needed
	default:
		return speedMPS // default to m/s if unknown unit
	}
}
