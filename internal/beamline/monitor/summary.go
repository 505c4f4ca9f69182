// Package monitor renders diagnostic output for an extraction run: an
// energy spectrum PNG and an HTML page with the ASCA grade distribution and
// the hot pixel map.
package monitor

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
)

// NumASCA is the number of ASCA categories.
const NumASCA = int(l4events.ASCAOther) + 1

// Summary holds run-level counts and energy statistics.
type Summary struct {
	Events    int
	OnEdge    int
	HotPixels int
	ASCA      [NumASCA]int

	// Energy statistics over the events kept for the spectrum.
	Energies   int
	EnergyMin  float64
	EnergyMax  float64
	EnergyMean float64
	EnergyStd  float64
}

// SpectrumEnergies returns the energies of events that have a valid energy
// and are neither on the edge nor on a hot pixel.
func SpectrumEnergies(cat *l4events.Catalog) []float64 {
	energy, ok := cat.Column(l4events.ColEnergy)
	if !ok || energy.Kind != l4events.KindFloat {
		return nil
	}
	var out []float64
	for i, v := range energy.Floats {
		if !energy.IsValid(i) {
			continue
		}
		ev := cat.Event(i)
		if ev.OnEdge || ev.HotPixel {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Summarize counts flags and grades and computes energy statistics.
func Summarize(cat *l4events.Catalog) Summary {
	s := Summary{Events: cat.Len()}
	for i := 0; i < cat.Len(); i++ {
		ev := cat.Event(i)
		if ev.OnEdge {
			s.OnEdge++
		}
		if ev.HotPixel {
			s.HotPixels++
		}
	}
	if asca, ok := cat.Column(l4events.ColASCA); ok && asca.Kind == l4events.KindInt {
		for _, g := range asca.Ints {
			if g >= 0 && g < NumASCA {
				s.ASCA[g]++
			}
		}
	}

	e := SpectrumEnergies(cat)
	s.Energies = len(e)
	if len(e) > 0 {
		s.EnergyMin = floats.Min(e)
		s.EnergyMax = floats.Max(e)
		s.EnergyMean, s.EnergyStd = stat.PopMeanStdDev(e, nil)
	}
	return s
}
