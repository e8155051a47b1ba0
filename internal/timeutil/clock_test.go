package timeutil

import (
	"testing"
	"time"
)

func TestMockClockNowAndSet(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", clock.Now(), start)
	}

	later := start.Add(time.Hour)
	clock.Set(later)
	if !clock.Now().Equal(later) {
		t.Errorf("Now() after Set = %v, want %v", clock.Now(), later)
	}
}

func TestMockClockSince(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	clock.Advance(90 * time.Second)

	if got := clock.Since(start); got != 90*time.Second {
		t.Errorf("Since = %v, want 90s", got)
	}
}

func TestMockTickerFiresOnAdvance(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	ticker := clock.NewTicker(2 * time.Second)

	clock.Advance(2 * time.Second)
	select {
	case <-ticker.C():
	default:
		t.Fatal("expected a tick after advancing one interval")
	}

	// No extra tick pending.
	select {
	case <-ticker.C():
		t.Fatal("unexpected second tick")
	default:
	}
}

func TestMockTickerStopped(t *testing.T) {
	clock := NewMockClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	ticker := clock.NewTicker(time.Second)
	ticker.Stop()

	clock.Advance(5 * time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker must not fire")
	default:
	}
}

func TestRealClockTicker(t *testing.T) {
	clock := RealClock{}
	ticker := clock.NewTicker(time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker did not fire")
	}
}
