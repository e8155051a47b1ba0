package motion

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/commute.report/internal/config"
)

// Window sizes and rate limits for the sliding-window detectors.
const (
	// DetectorBufferSize bounds the rolling frame buffer (~20 s at 5 Hz).
	DetectorBufferSize = 100

	brakingWindow   = 5  // samples, ~1 s
	roughRoadWindow = 15 // samples, ~3 s
	sharpTurnWindow = 3  // samples

	accelerationInterval   = 2 * time.Second
	distractionInterval    = 3 * time.Second
	speedViolationInterval = 5 * time.Second
)

// frameSample is one transformed frame retained in the rolling buffer.
type frameSample struct {
	time     time.Time
	accel    VehicleAcceleration
	rotation Vector3
}

// BrakingResult reports the braking classification over the last window.
// Intensity is the combined forward+lateral magnitude and is meaningful even
// when neither flag is set.
type BrakingResult struct {
	Braking     bool
	HardBraking bool
	Intensity   float64
}

// Detector runs threshold classifiers over a rolling buffer of vehicle-frame
// frames. Detectors are stateless apart from the shared buffer and their own
// last-fired timestamp; below their minimum fill they report nothing rather
// than erroring. All timing uses sample timestamps so recorded traces replay
// deterministically.
type Detector struct {
	cfg *config.Tuning

	buf   [DetectorBufferSize]frameSample
	head  int // next write position
	count int

	lastAcceleration   time.Time
	lastDistraction    time.Time
	lastSpeedViolation time.Time
	speedViolationSeen bool
}

// NewDetector creates a Detector with the given tuning.
func NewDetector(cfg *config.Tuning) *Detector {
	if cfg == nil {
		cfg = config.Empty()
	}
	return &Detector{cfg: cfg}
}

// Push appends a transformed frame to the rolling buffer, evicting the
// oldest frame once the buffer is full.
func (d *Detector) Push(t time.Time, accel VehicleAcceleration, rotation Vector3) {
	d.buf[d.head] = frameSample{time: t, accel: accel, rotation: rotation}
	d.head = (d.head + 1) % DetectorBufferSize
	if d.count < DetectorBufferSize {
		d.count++
	}
}

// BufferedFrames returns the number of frames currently buffered.
func (d *Detector) BufferedFrames() int {
	return d.count
}

// Reset clears the buffer and all rate-limit state.
func (d *Detector) Reset() {
	d.head = 0
	d.count = 0
	d.lastAcceleration = time.Time{}
	d.lastDistraction = time.Time{}
	d.lastSpeedViolation = time.Time{}
	d.speedViolationSeen = false
}

// last returns the most recent n samples, oldest first. It returns nil when
// fewer than n samples are buffered.
func (d *Detector) last(n int) []frameSample {
	if d.count < n {
		return nil
	}
	out := make([]frameSample, n)
	start := (d.head - n + DetectorBufferSize) % DetectorBufferSize
	for i := 0; i < n; i++ {
		out[i] = d.buf[(start+i)%DetectorBufferSize]
	}
	return out
}

// newest returns the most recent sample.
func (d *Detector) newest() (frameSample, bool) {
	if d.count == 0 {
		return frameSample{}, false
	}
	idx := (d.head - 1 + DetectorBufferSize) % DetectorBufferSize
	return d.buf[idx], true
}

// Braking classifies the last braking window. Sustained forward deceleration
// or a combined forward+lateral spike both count; stricter thresholds
// upgrade the event to hard braking.
func (d *Detector) Braking() BrakingResult {
	window := d.last(brakingWindow)
	if window == nil {
		return BrakingResult{}
	}

	var forwardSum, lateralSum float64
	for _, s := range window {
		forwardSum += s.accel.Forward
		lateralSum += s.accel.Lateral
	}
	avgForward := forwardSum / float64(len(window))
	avgLateral := lateralSum / float64(len(window))
	combined := math.Hypot(avgForward, avgLateral)

	return BrakingResult{
		Braking:     avgForward < d.cfg.GetBrakingThreshold() || combined > d.cfg.GetBrakingMagnitude(),
		HardBraking: avgForward < d.cfg.GetHardBrakingThreshold() || combined > d.cfg.GetHardBrakingMagnitude(),
		Intensity:   combined,
	}
}

// RoughRoad reports sustained vertical agitation over the rough-road window:
// high variance or large peak-to-peak amplitude of vertical acceleration.
func (d *Detector) RoughRoad() bool {
	window := d.last(roughRoadWindow)
	if window == nil {
		return false
	}

	vertical := make([]float64, len(window))
	minV, maxV := window[0].accel.Vertical, window[0].accel.Vertical
	for i, s := range window {
		vertical[i] = s.accel.Vertical
		if s.accel.Vertical < minV {
			minV = s.accel.Vertical
		}
		if s.accel.Vertical > maxV {
			maxV = s.accel.Vertical
		}
	}

	variance := stat.Variance(vertical, nil)
	return variance > d.cfg.GetRoughRoadVariance() || maxV-minV > d.cfg.GetRoughRoadPeakToPeak()
}

// SharpTurn reports a hard rotation around the vertical axis or sustained
// lateral acceleration over the sharp-turn window.
func (d *Detector) SharpTurn() bool {
	latest, ok := d.newest()
	if !ok {
		return false
	}
	if math.Abs(latest.rotation.Z) > d.cfg.GetSharpTurnGyro() {
		return true
	}

	window := d.last(sharpTurnWindow)
	if window == nil {
		return false
	}
	var lateralSum float64
	for _, s := range window {
		lateralSum += s.accel.Lateral
	}
	return math.Abs(lateralSum/float64(len(window))) > d.cfg.GetSharpTurnLateral()
}

// Acceleration reports a sustained forward-acceleration event, rate-limited
// to one emission per accelerationInterval of sample time.
func (d *Detector) Acceleration() bool {
	window := d.last(brakingWindow)
	if window == nil {
		return false
	}

	var forwardSum float64
	for _, s := range window {
		forwardSum += s.accel.Forward
	}
	if forwardSum/float64(len(window)) <= d.cfg.GetAccelerationThreshold() {
		return false
	}

	now := window[len(window)-1].time
	if !d.lastAcceleration.IsZero() && now.Sub(d.lastAcceleration) < accelerationInterval {
		return false
	}
	d.lastAcceleration = now
	return true
}

// PhoneDistraction reports heavy device rotation (the phone being handled),
// rate-limited to one emission per distractionInterval.
func (d *Detector) PhoneDistraction() bool {
	latest, ok := d.newest()
	if !ok {
		return false
	}
	if latest.rotation.Magnitude() <= d.cfg.GetDistractionRotation() {
		return false
	}
	if !d.lastDistraction.IsZero() && latest.time.Sub(d.lastDistraction) < distractionInterval {
		return false
	}
	d.lastDistraction = latest.time
	return true
}

// SpeedViolation reports the current speed exceeding the configured limit,
// rate-limited to one emission per speedViolationInterval. The first
// violation of a trip always counts.
func (d *Detector) SpeedViolation(now time.Time, speedKMH float64) bool {
	if speedKMH <= d.cfg.GetSpeedLimitKMH() {
		return false
	}
	if d.speedViolationSeen && now.Sub(d.lastSpeedViolation) < speedViolationInterval {
		return false
	}
	d.speedViolationSeen = true
	d.lastSpeedViolation = now
	return true
}
