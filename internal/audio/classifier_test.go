package audio

import (
	"testing"
	"time"

	"github.com/banshee-data/commute.report/internal/config"
)

var base = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func TestMapHornPrimaryTier(t *testing.T) {
	tests := []struct {
		name       string
		label      string
		confidence float64
		expected   EventKind
	}{
		{"confident car horn", "Car Horn", 0.5, KindHorn},
		{"car horn below primary threshold", "car horn", 0.3, KindHorn}, // matches secondary "horn"
		{"car horn below all thresholds", "car horn", 0.1, KindNone},
		{"secondary label low confidence", "traffic noise", 0.25, KindHorn},
		{"secondary label under secondary threshold", "traffic noise", 0.15, KindNone},
		{"unrelated label", "dog bark", 0.9, KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapper(nil)
			got := m.Map(Classification{Label: tt.label, Confidence: tt.confidence, Time: base})
			if got != tt.expected {
				t.Errorf("Map(%q, %f) = %q, want %q", tt.label, tt.confidence, got, tt.expected)
			}
		})
	}
}

func TestMapSiren(t *testing.T) {
	m := NewMapper(nil)

	if got := m.Map(Classification{Label: "ambulance siren", Confidence: 0.25, Time: base}); got != KindSiren {
		t.Errorf("Map(siren, 0.25) = %q, want siren", got)
	}

	m.Reset()
	if got := m.Map(Classification{Label: "siren", Confidence: 0.1, Time: base}); got != KindNone {
		t.Errorf("Map(siren, 0.1) = %q, want none", got)
	}
}

func TestHornRateLimit(t *testing.T) {
	m := NewMapper(nil)

	first := m.Map(Classification{Label: "car horn", Confidence: 0.5, Time: base})
	second := m.Map(Classification{Label: "car horn", Confidence: 0.5, Time: base.Add(500 * time.Millisecond)})
	third := m.Map(Classification{Label: "car horn", Confidence: 0.5, Time: base.Add(1500 * time.Millisecond)})

	if first != KindHorn || second != KindNone || third != KindHorn {
		t.Errorf("horn rate limiting: got %q, %q, %q", first, second, third)
	}
}

func TestSirenRateLimit(t *testing.T) {
	m := NewMapper(nil)

	first := m.Map(Classification{Label: "police car siren", Confidence: 0.3, Time: base})
	second := m.Map(Classification{Label: "police car siren", Confidence: 0.3, Time: base.Add(30 * time.Second)})
	third := m.Map(Classification{Label: "police car siren", Confidence: 0.3, Time: base.Add(70 * time.Second)})

	if first != KindSiren || second != KindNone || third != KindSiren {
		t.Errorf("siren rate limiting: got %q, %q, %q", first, second, third)
	}
}

func TestConfigurableLabels(t *testing.T) {
	cfg := &config.Tuning{
		HornLabels:          []string{"klaxon"},
		HornSecondaryLabels: []string{"-none-"},
	}
	m := NewMapper(cfg)

	if got := m.Map(Classification{Label: "klaxon blast", Confidence: 0.5, Time: base}); got != KindHorn {
		t.Errorf("custom horn label: got %q, want horn", got)
	}
	if got := m.Map(Classification{Label: "car horn", Confidence: 0.9, Time: base.Add(2 * time.Second)}); got != KindNone {
		t.Errorf("default label must not match once overridden: got %q", got)
	}
}
