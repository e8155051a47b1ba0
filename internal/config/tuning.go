package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Tuning represents the tunable parameters of the telemetry engine. All
// fields are pointers so a partial JSON file overrides only the values it
// names; the Get* accessors supply defaults for anything left nil.
type Tuning struct {
	// Aggregator params
	TickInterval   *string  `json:"tick_interval,omitempty"`    // duration string like "2s"
	SpeedLimitKMH  *float64 `json:"speed_limit_kmh,omitempty"`  // speed-violation threshold
	SlowSpeedKMH   *float64 `json:"slow_speed_kmh,omitempty"`   // slow-traffic threshold
	FixMaxAccuracy *float64 `json:"fix_max_accuracy,omitempty"` // worst usable GPS accuracy, metres

	// Detector params
	BrakingThreshold      *float64 `json:"braking_threshold,omitempty"`       // forward decel, g
	HardBrakingThreshold  *float64 `json:"hard_braking_threshold,omitempty"`  // forward decel, g
	BrakingMagnitude      *float64 `json:"braking_magnitude,omitempty"`       // combined magnitude, g
	HardBrakingMagnitude  *float64 `json:"hard_braking_magnitude,omitempty"`  // combined magnitude, g
	AccelerationThreshold *float64 `json:"acceleration_threshold,omitempty"`  // forward accel, g
	SharpTurnGyro         *float64 `json:"sharp_turn_gyro,omitempty"`         // rad/s on z
	SharpTurnLateral      *float64 `json:"sharp_turn_lateral,omitempty"`      // lateral accel, g
	RoughRoadVariance     *float64 `json:"rough_road_variance,omitempty"`     // vertical accel variance
	RoughRoadPeakToPeak   *float64 `json:"rough_road_peak_to_peak,omitempty"` // vertical amplitude, g
	DistractionRotation   *float64 `json:"distraction_rotation,omitempty"`    // combined rotation rate, rad/s

	// Audio params. Label sets are substring matches against classifier
	// output; they are configuration because the broad secondary set is
	// known to produce false positives on some classifiers.
	HornConfidence          *float64 `json:"horn_confidence,omitempty"`
	HornSecondaryConfidence *float64 `json:"horn_secondary_confidence,omitempty"`
	SirenConfidence         *float64 `json:"siren_confidence,omitempty"`
	HornLabels              []string `json:"horn_labels,omitempty"`
	HornSecondaryLabels     []string `json:"horn_secondary_labels,omitempty"`
	SirenLabels             []string `json:"siren_labels,omitempty"`

	// Capacity params
	PathPointCap   *int `json:"path_point_cap,omitempty"`
	TripHistoryCap *int `json:"trip_history_cap,omitempty"`
	TripTypeCap    *int `json:"trip_type_cap,omitempty"`
}

// Default tuning values. These are the reference thresholds the detectors
// were calibrated against; override via a tuning JSON file.
const (
	DefaultTickInterval          = 2 * time.Second
	DefaultSpeedLimitKMH         = 80.0
	DefaultSlowSpeedKMH          = 15.0
	DefaultFixMaxAccuracy        = 50.0
	DefaultBrakingThreshold      = -0.1
	DefaultHardBrakingThreshold  = -0.25
	DefaultBrakingMagnitude      = 0.15
	DefaultHardBrakingMagnitude  = 0.35
	DefaultAccelerationThreshold = 0.15
	DefaultSharpTurnGyro         = 0.6
	DefaultSharpTurnLateral      = 0.25
	DefaultRoughRoadVariance     = 0.2
	DefaultRoughRoadPeakToPeak   = 0.8
	DefaultDistractionRotation   = 2.0
	DefaultHornConfidence        = 0.35
	DefaultHornSecondaryConf     = 0.2
	DefaultSirenConfidence       = 0.2
	DefaultPathPointCap          = 1000
	DefaultTripHistoryCap        = 100
	DefaultTripTypeCap           = 8
)

// Default audio label sets.
var (
	defaultHornLabels          = []string{"car horn", "honk", "vehicle horn", "air horn"}
	defaultHornSecondaryLabels = []string{"horn", "beep", "traffic noise"}
	defaultSirenLabels         = []string{"siren", "emergency vehicle", "ambulance", "police car"}
)

// Empty returns a Tuning with all fields set to nil. Every accessor will
// return its default.
func Empty() *Tuning {
	return &Tuning{}
}

// Load loads a Tuning from a JSON file. Fields omitted from the file retain
// their default values, so partial configs are safe.
func Load(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are in range.
func (c *Tuning) Validate() error {
	if c.TickInterval != nil && *c.TickInterval != "" {
		if d, err := time.ParseDuration(*c.TickInterval); err != nil {
			return fmt.Errorf("invalid tick_interval %q: %w", *c.TickInterval, err)
		} else if d <= 0 {
			return fmt.Errorf("tick_interval must be positive, got %s", d)
		}
	}
	if c.SpeedLimitKMH != nil && *c.SpeedLimitKMH <= 0 {
		return fmt.Errorf("speed_limit_kmh must be positive, got %f", *c.SpeedLimitKMH)
	}
	if c.SlowSpeedKMH != nil && *c.SlowSpeedKMH <= 0 {
		return fmt.Errorf("slow_speed_kmh must be positive, got %f", *c.SlowSpeedKMH)
	}
	if c.FixMaxAccuracy != nil && *c.FixMaxAccuracy <= 0 {
		return fmt.Errorf("fix_max_accuracy must be positive, got %f", *c.FixMaxAccuracy)
	}
	if c.BrakingThreshold != nil && *c.BrakingThreshold >= 0 {
		return fmt.Errorf("braking_threshold must be negative, got %f", *c.BrakingThreshold)
	}
	if c.HardBrakingThreshold != nil && *c.HardBrakingThreshold >= 0 {
		return fmt.Errorf("hard_braking_threshold must be negative, got %f", *c.HardBrakingThreshold)
	}
	for name, v := range map[string]*float64{
		"horn_confidence":           c.HornConfidence,
		"horn_secondary_confidence": c.HornSecondaryConfidence,
		"siren_confidence":          c.SirenConfidence,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}
	if c.PathPointCap != nil && *c.PathPointCap < 2 {
		return fmt.Errorf("path_point_cap must be at least 2, got %d", *c.PathPointCap)
	}
	if c.TripHistoryCap != nil && *c.TripHistoryCap < 1 {
		return fmt.Errorf("trip_history_cap must be at least 1, got %d", *c.TripHistoryCap)
	}
	if c.TripTypeCap != nil && *c.TripTypeCap < 1 {
		return fmt.Errorf("trip_type_cap must be at least 1, got %d", *c.TripTypeCap)
	}
	return nil
}

// GetTickInterval returns the aggregator tick interval.
func (c *Tuning) GetTickInterval() time.Duration {
	if c.TickInterval != nil && *c.TickInterval != "" {
		if d, err := time.ParseDuration(*c.TickInterval); err == nil {
			return d
		}
	}
	return DefaultTickInterval
}

// GetSpeedLimitKMH returns the speed-violation threshold in km/h.
func (c *Tuning) GetSpeedLimitKMH() float64 {
	return floatOr(c.SpeedLimitKMH, DefaultSpeedLimitKMH)
}

// GetSlowSpeedKMH returns the slow-traffic threshold in km/h.
func (c *Tuning) GetSlowSpeedKMH() float64 {
	return floatOr(c.SlowSpeedKMH, DefaultSlowSpeedKMH)
}

// GetFixMaxAccuracy returns the worst usable horizontal accuracy in metres.
func (c *Tuning) GetFixMaxAccuracy() float64 {
	return floatOr(c.FixMaxAccuracy, DefaultFixMaxAccuracy)
}

// GetBrakingThreshold returns the forward-deceleration braking threshold.
func (c *Tuning) GetBrakingThreshold() float64 {
	return floatOr(c.BrakingThreshold, DefaultBrakingThreshold)
}

// GetHardBrakingThreshold returns the forward-deceleration hard-braking threshold.
func (c *Tuning) GetHardBrakingThreshold() float64 {
	return floatOr(c.HardBrakingThreshold, DefaultHardBrakingThreshold)
}

// GetBrakingMagnitude returns the combined-magnitude braking threshold.
func (c *Tuning) GetBrakingMagnitude() float64 {
	return floatOr(c.BrakingMagnitude, DefaultBrakingMagnitude)
}

// GetHardBrakingMagnitude returns the combined-magnitude hard-braking threshold.
func (c *Tuning) GetHardBrakingMagnitude() float64 {
	return floatOr(c.HardBrakingMagnitude, DefaultHardBrakingMagnitude)
}

// GetAccelerationThreshold returns the forward-acceleration event threshold.
func (c *Tuning) GetAccelerationThreshold() float64 {
	return floatOr(c.AccelerationThreshold, DefaultAccelerationThreshold)
}

// GetSharpTurnGyro returns the z-gyro sharp-turn threshold.
func (c *Tuning) GetSharpTurnGyro() float64 {
	return floatOr(c.SharpTurnGyro, DefaultSharpTurnGyro)
}

// GetSharpTurnLateral returns the lateral-acceleration sharp-turn threshold.
func (c *Tuning) GetSharpTurnLateral() float64 {
	return floatOr(c.SharpTurnLateral, DefaultSharpTurnLateral)
}

// GetRoughRoadVariance returns the vertical-acceleration variance threshold.
func (c *Tuning) GetRoughRoadVariance() float64 {
	return floatOr(c.RoughRoadVariance, DefaultRoughRoadVariance)
}

// GetRoughRoadPeakToPeak returns the vertical peak-to-peak amplitude threshold.
func (c *Tuning) GetRoughRoadPeakToPeak() float64 {
	return floatOr(c.RoughRoadPeakToPeak, DefaultRoughRoadPeakToPeak)
}

// GetDistractionRotation returns the phone-distraction rotation-rate threshold.
func (c *Tuning) GetDistractionRotation() float64 {
	return floatOr(c.DistractionRotation, DefaultDistractionRotation)
}

// GetHornConfidence returns the primary horn confidence threshold.
func (c *Tuning) GetHornConfidence() float64 {
	return floatOr(c.HornConfidence, DefaultHornConfidence)
}

// GetHornSecondaryConfidence returns the secondary horn confidence threshold.
func (c *Tuning) GetHornSecondaryConfidence() float64 {
	return floatOr(c.HornSecondaryConfidence, DefaultHornSecondaryConf)
}

// GetSirenConfidence returns the siren confidence threshold.
func (c *Tuning) GetSirenConfidence() float64 {
	return floatOr(c.SirenConfidence, DefaultSirenConfidence)
}

// GetHornLabels returns the primary horn label set.
func (c *Tuning) GetHornLabels() []string {
	if len(c.HornLabels) > 0 {
		return c.HornLabels
	}
	return defaultHornLabels
}

// GetHornSecondaryLabels returns the broader secondary horn label set.
func (c *Tuning) GetHornSecondaryLabels() []string {
	if len(c.HornSecondaryLabels) > 0 {
		return c.HornSecondaryLabels
	}
	return defaultHornSecondaryLabels
}

// GetSirenLabels returns the siren label set.
func (c *Tuning) GetSirenLabels() []string {
	if len(c.SirenLabels) > 0 {
		return c.SirenLabels
	}
	return defaultSirenLabels
}

// GetPathPointCap returns the maximum retained path points per trip.
func (c *Tuning) GetPathPointCap() int {
	return intOr(c.PathPointCap, DefaultPathPointCap)
}

// GetTripHistoryCap returns the maximum retained trip records.
func (c *Tuning) GetTripHistoryCap() int {
	return intOr(c.TripHistoryCap, DefaultTripHistoryCap)
}

// GetTripTypeCap returns the maximum number of trip types.
func (c *Tuning) GetTripTypeCap() int {
	return intOr(c.TripTypeCap, DefaultTripTypeCap)
}

func floatOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}
