package l4events

import (
	"errors"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/xpolbeamline/internal/units"
)

// Fixed instrument calibration.
const (
	GainConstant  = 2.2  // electrons per count
	EVPerElectron = 3.66 // eV per electron-hole pair in silicon
	EnergyUnit    = units.EV
)

// Energy3x3 converts each event's 3×3 island into an energy in eV:
//
//	(sum(3X3) + U) × GainConstant × EVPerElectron
//
// where U is drawn uniformly from (-0.5, 0.5) to de-quantize integer counts.
// The result is non-deterministic unless rng is seeded deterministically.
// Events flagged as edge by the island extractor get no valid energy.
func Energy3x3(c *Catalog, rng *rand.Rand) (Column, error) {
	if rng == nil {
		return Column{}, errors.New("energy: nil random source")
	}
	if !c.HasIslands() {
		return Column{}, ErrNoIslands
	}
	n := c.Len()
	values := make([]float64, n)
	valid := make([]bool, n)
	for i, isl := range c.Island3x3 {
		values[i] = (mat.Sum(isl) + dequantize(rng)) * GainConstant * EVPerElectron
		valid[i] = len(c.Edge) != n || !c.Edge[i]
	}
	col := FloatColumn(values, EnergyUnit)
	col.Valid = valid
	return col, nil
}

// dequantize returns a draw from the open interval (-0.5, 0.5).
func dequantize(rng *rand.Rand) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return u - 0.5
}
