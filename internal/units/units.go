// Package units provides shared constants and conversion for catalog units
package units

// Unit constants
const (
	Pixel  = "pix"
	Second = "s"
	EV     = "eV"
	KeV    = "keV"
)

// EnergyUnits contains all valid energy unit values
var EnergyUnits = []string{EV, KeV}

// IsValidEnergy checks if the given unit is a valid energy unit
func IsValidEnergy(unit string) bool {
	for _, u := range EnergyUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// ConvertEnergy converts an energy in electron volts to the target units.
// The catalog stores energies in eV.
func ConvertEnergy(energyEV float64, targetUnits string) float64 {
	switch targetUnits {
	case KeV:
		return energyEV / 1000
	case EV:
		return energyEV
	default:
		return energyEV // default to eV if unknown unit
	}
}
