package motion

import (
	"testing"
	"time"

	"github.com/banshee-data/commute.report/internal/config"
)

var testStart = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

// pushFrames feeds n identical frames at 200 ms spacing starting at base.
func pushFrames(d *Detector, base time.Time, n int, accel VehicleAcceleration, rot Vector3) time.Time {
	t := base
	for i := 0; i < n; i++ {
		d.Push(t, accel, rot)
		t = t.Add(200 * time.Millisecond)
	}
	return t
}

func TestBrakingBelowMinimumFill(t *testing.T) {
	d := NewDetector(nil)
	pushFrames(d, testStart, 4, VehicleAcceleration{Forward: -0.5}, Vector3{})

	if got := d.Braking(); got.Braking || got.HardBraking {
		t.Errorf("expected no-data result below minimum fill, got %+v", got)
	}
}

func TestBrakingThresholds(t *testing.T) {
	tests := []struct {
		name    string
		forward float64
		lateral float64
		braking bool
		hard    bool
	}{
		{"gentle cruise", -0.02, 0.0, false, false},
		{"moderate braking", -0.15, 0.0, true, false},
		{"combined magnitude", -0.08, 0.14, true, false},
		{"hard braking", -0.30, 0.0, true, true},
		{"hard combined", -0.25, 0.26, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(nil)
			pushFrames(d, testStart, brakingWindow, VehicleAcceleration{Forward: tt.forward, Lateral: tt.lateral}, Vector3{})

			got := d.Braking()
			if got.Braking != tt.braking || got.HardBraking != tt.hard {
				t.Errorf("Braking() = %+v, want braking=%v hard=%v", got, tt.braking, tt.hard)
			}
			if got.Intensity <= 0 && (tt.forward != 0 || tt.lateral != 0) {
				t.Errorf("Intensity = %f, want positive", got.Intensity)
			}
		})
	}
}

func TestRoughRoadVariance(t *testing.T) {
	d := NewDetector(nil)

	// Alternating vertical acceleration: large variance and amplitude.
	ts := testStart
	for i := 0; i < roughRoadWindow; i++ {
		v := 0.6
		if i%2 == 0 {
			v = -0.6
		}
		d.Push(ts, VehicleAcceleration{Vertical: v}, Vector3{})
		ts = ts.Add(200 * time.Millisecond)
	}

	if !d.RoughRoad() {
		t.Error("expected rough road for alternating vertical acceleration")
	}
}

func TestRoughRoadSmoothSurface(t *testing.T) {
	d := NewDetector(nil)
	pushFrames(d, testStart, roughRoadWindow, VehicleAcceleration{Vertical: 0.02}, Vector3{})

	if d.RoughRoad() {
		t.Error("expected no rough road on a smooth surface")
	}
}

func TestRoughRoadBelowMinimumFill(t *testing.T) {
	d := NewDetector(nil)
	pushFrames(d, testStart, roughRoadWindow-1, VehicleAcceleration{Vertical: 5}, Vector3{})

	if d.RoughRoad() {
		t.Error("expected no-data result below minimum fill")
	}
}

func TestSharpTurnGyro(t *testing.T) {
	d := NewDetector(nil)
	d.Push(testStart, VehicleAcceleration{}, Vector3{Z: 0.8})

	if !d.SharpTurn() {
		t.Error("expected sharp turn for |gyro z| above threshold")
	}
}

func TestSharpTurnLateral(t *testing.T) {
	d := NewDetector(nil)
	pushFrames(d, testStart, sharpTurnWindow, VehicleAcceleration{Lateral: 0.3}, Vector3{})

	if !d.SharpTurn() {
		t.Error("expected sharp turn for sustained lateral acceleration")
	}
}

func TestSharpTurnQuiet(t *testing.T) {
	d := NewDetector(nil)
	pushFrames(d, testStart, sharpTurnWindow, VehicleAcceleration{Lateral: 0.1}, Vector3{Z: 0.2})

	if d.SharpTurn() {
		t.Error("expected no sharp turn below thresholds")
	}
}

func TestAccelerationRateLimit(t *testing.T) {
	d := NewDetector(nil)
	accel := VehicleAcceleration{Forward: 0.3}

	// First trigger fires.
	next := pushFrames(d, testStart, brakingWindow, accel, Vector3{})
	if !d.Acceleration() {
		t.Fatal("first acceleration trigger must fire")
	}

	// 0.5 s later: still within the 2 s interval, suppressed.
	pushFrames(d, next.Add(300*time.Millisecond), 1, accel, Vector3{})
	if d.Acceleration() {
		t.Error("trigger 0.5s after the first must be rate-limited")
	}

	// 3 s after the first: fires again.
	pushFrames(d, next.Add(3*time.Second), 1, accel, Vector3{})
	if !d.Acceleration() {
		t.Error("trigger 3s after the first must fire")
	}
}

func TestPhoneDistractionRateLimit(t *testing.T) {
	d := NewDetector(nil)
	spin := Vector3{X: 1.5, Y: 1.5, Z: 1.0}

	d.Push(testStart, VehicleAcceleration{}, spin)
	if !d.PhoneDistraction() {
		t.Fatal("first distraction trigger must fire")
	}

	d.Push(testStart.Add(time.Second), VehicleAcceleration{}, spin)
	if d.PhoneDistraction() {
		t.Error("distraction within 3s must be rate-limited")
	}

	d.Push(testStart.Add(4*time.Second), VehicleAcceleration{}, spin)
	if !d.PhoneDistraction() {
		t.Error("distraction after 3s must fire")
	}
}

func TestSpeedViolationFirstAlwaysCounts(t *testing.T) {
	d := NewDetector(nil)

	if !d.SpeedViolation(testStart, 100) {
		t.Fatal("first violation must always count")
	}
	if d.SpeedViolation(testStart.Add(2*time.Second), 100) {
		t.Error("violation within 5s must be rate-limited")
	}
	if !d.SpeedViolation(testStart.Add(6*time.Second), 100) {
		t.Error("violation after 5s must fire")
	}
	if d.SpeedViolation(testStart.Add(7*time.Second), 50) {
		t.Error("speed under the limit must not fire")
	}
}

func TestSpeedViolationCustomLimit(t *testing.T) {
	limit := 120.0
	cfg := &config.Tuning{SpeedLimitKMH: &limit}
	d := NewDetector(cfg)

	if d.SpeedViolation(testStart, 100) {
		t.Error("100 km/h under a 120 km/h limit must not fire")
	}
	if !d.SpeedViolation(testStart, 125) {
		t.Error("125 km/h over a 120 km/h limit must fire")
	}
}

func TestBufferEviction(t *testing.T) {
	d := NewDetector(nil)

	pushFrames(d, testStart, DetectorBufferSize+50, VehicleAcceleration{}, Vector3{})
	if got := d.BufferedFrames(); got != DetectorBufferSize {
		t.Errorf("BufferedFrames = %d, want %d", got, DetectorBufferSize)
	}

	// Newest sample must be the last pushed, not an evicted one.
	latest, ok := d.newest()
	if !ok {
		t.Fatal("expected a newest sample")
	}
	wantTime := testStart.Add(time.Duration(DetectorBufferSize+49) * 200 * time.Millisecond)
	if !latest.time.Equal(wantTime) {
		t.Errorf("newest sample time = %v, want %v", latest.time, wantTime)
	}
}

func TestDetectorReset(t *testing.T) {
	d := NewDetector(nil)
	pushFrames(d, testStart, brakingWindow, VehicleAcceleration{Forward: 0.3}, Vector3{})
	if !d.Acceleration() {
		t.Fatal("precondition: acceleration fires")
	}

	d.Reset()
	if d.BufferedFrames() != 0 {
		t.Error("Reset must clear the buffer")
	}
	if !d.SpeedViolation(testStart, 100) {
		t.Error("Reset must clear speed-violation state so the first violation counts again")
	}
}
