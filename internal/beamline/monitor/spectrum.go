package monitor

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
	"github.com/banshee-data/xpolbeamline/internal/fsutil"
	"github.com/banshee-data/xpolbeamline/internal/units"
)

// DefaultSpectrumBins is the histogram bin count for the energy spectrum.
const DefaultSpectrumBins = 100

// ErrNoEnergies is returned when no event qualifies for the spectrum.
var ErrNoEnergies = errors.New("no events with a usable energy")

// SpectrumPlot builds a histogram of the spectrum energies.
func SpectrumPlot(cat *l4events.Catalog, bins int) (*plot.Plot, error) {
	e := SpectrumEnergies(cat)
	if len(e) == 0 {
		return nil, ErrNoEnergies
	}
	if bins < 1 {
		bins = DefaultSpectrumBins
	}

	kev := make(plotter.Values, len(e))
	for i, v := range e {
		kev[i] = units.ConvertEnergy(v, units.KeV)
	}
	h, err := plotter.NewHist(kev, bins)
	if err != nil {
		return nil, fmt.Errorf("failed to build histogram: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Energy spectrum (%d events)", len(e))
	p.X.Label.Text = "Energy (" + units.KeV + ")"
	p.Y.Label.Text = "Counts"
	p.Add(h)
	return p, nil
}

// WriteSpectrumPNG renders the spectrum to path through fsys.
func WriteSpectrumPNG(fsys fsutil.FileSystem, path string, cat *l4events.Catalog, bins int) error {
	p, err := SpectrumPlot(cat, bins)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return err
	}
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
