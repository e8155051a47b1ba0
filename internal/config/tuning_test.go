package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestEmptyReturnsDefaults(t *testing.T) {
	cfg := Empty()

	if got := cfg.GetTickInterval(); got != DefaultTickInterval {
		t.Errorf("GetTickInterval = %v, want %v", got, DefaultTickInterval)
	}
	if got := cfg.GetSlowSpeedKMH(); got != DefaultSlowSpeedKMH {
		t.Errorf("GetSlowSpeedKMH = %v, want %v", got, DefaultSlowSpeedKMH)
	}
	if got := cfg.GetBrakingThreshold(); got != DefaultBrakingThreshold {
		t.Errorf("GetBrakingThreshold = %v, want %v", got, DefaultBrakingThreshold)
	}
	if got := cfg.GetPathPointCap(); got != DefaultPathPointCap {
		t.Errorf("GetPathPointCap = %v, want %v", got, DefaultPathPointCap)
	}
	if labels := cfg.GetHornLabels(); len(labels) == 0 {
		t.Error("default horn labels must not be empty")
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeTempConfig(t, `{"speed_limit_kmh": 110, "tick_interval": "1s"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.GetSpeedLimitKMH(); got != 110 {
		t.Errorf("GetSpeedLimitKMH = %v, want 110", got)
	}
	if got := cfg.GetTickInterval(); got != time.Second {
		t.Errorf("GetTickInterval = %v, want 1s", got)
	}
	// Unset fields keep defaults.
	if got := cfg.GetSlowSpeedKMH(); got != DefaultSlowSpeedKMH {
		t.Errorf("GetSlowSpeedKMH = %v, want default %v", got, DefaultSlowSpeedKMH)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	if _, err := Load("tuning.yaml"); err == nil {
		t.Fatal("expected error for non-json extension")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	bad := -5.0
	zero := 0.0
	over := 1.5
	tick := "nope"
	cap1 := 1

	tests := []struct {
		name string
		cfg  Tuning
	}{
		{"negative speed limit", Tuning{SpeedLimitKMH: &bad}},
		{"zero slow speed", Tuning{SlowSpeedKMH: &zero}},
		{"positive braking threshold", Tuning{BrakingThreshold: &over}},
		{"confidence above one", Tuning{HornConfidence: &over}},
		{"bad tick interval", Tuning{TickInterval: &tick}},
		{"path cap too small", Tuning{PathPointCap: &cap1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := Empty().Validate(); err != nil {
		t.Errorf("empty config must validate, got %v", err)
	}
}

func TestLabelOverride(t *testing.T) {
	cfg := Tuning{HornLabels: []string{"klaxon"}}
	labels := cfg.GetHornLabels()
	if len(labels) != 1 || labels[0] != "klaxon" {
		t.Errorf("GetHornLabels = %v, want [klaxon]", labels)
	}
}
