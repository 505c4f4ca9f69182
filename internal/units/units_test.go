package units

import (
	"math"
	"testing"
)

func TestConvertEnergy(t *testing.T) {
	tests := []struct {
		name     string
		energyEV float64
		units    string
		expected float64
	}{
		{"Mn K-alpha to keV", 5895.0, KeV, 5.895},
		{"eV unchanged", 5895.0, EV, 5895.0},
		{"unknown units default to eV", 1000.0, "erg", 1000.0},
		{"zero", 0.0, KeV, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertEnergy(tt.energyEV, tt.units)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertEnergy(%f, %s) = %f, want %f", tt.energyEV, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValidEnergy(t *testing.T) {
	for _, u := range []string{EV, KeV} {
		if !IsValidEnergy(u) {
			t.Errorf("IsValidEnergy(%q) = false", u)
		}
	}
	for _, u := range []string{"", "pix", "ev"} {
		if IsValidEnergy(u) {
			t.Errorf("IsValidEnergy(%q) = true", u)
		}
	}
}
