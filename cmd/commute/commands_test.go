package main

import (
	"math"
	"testing"

	"github.com/banshee-data/commute.report/internal/units"
)

func TestSpeedDisplayConversion(t *testing.T) {
	tests := []struct {
		units  string
		want   float64
		suffix string
	}{
		{units.KMPH, 72, "km/h"},
		{units.KPH, 72, "km/h"},
		{units.MPS, 20, "m/s"},
		{units.MPH, 44.7388, "mph"},
	}
	for _, tt := range tests {
		if got := speedIn(72, tt.units); math.Abs(got-tt.want) > 0.01 {
			t.Errorf("speedIn(72, %s) = %f, want %f", tt.units, got, tt.want)
		}
		if s := speedSuffix(tt.units); s != tt.suffix {
			t.Errorf("speedSuffix(%s) = %q, want %q", tt.units, s, tt.suffix)
		}
	}
}
