package monitor

import (
	"errors"
	"path/filepath"

	"github.com/banshee-data/xpolbeamline/internal/beamline"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
	"github.com/banshee-data/xpolbeamline/internal/fsutil"
)

// Output file names inside the plot directory.
const (
	SpectrumFile = "spectrum.png"
	ReportFile   = "report.html"
)

// WritePlots writes the spectrum and the report into dir and returns the
// paths written. A run with no usable energies gets the report only.
func WritePlots(fsys fsutil.FileSystem, dir string, cat *l4events.Catalog, hot *l4events.HotPixelTable) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	s := Summarize(cat)
	beamline.Diagf("summary: events=%d edge=%d hot=%d energies=%d mean=%.1f eV std=%.1f eV",
		s.Events, s.OnEdge, s.HotPixels, s.Energies, s.EnergyMean, s.EnergyStd)

	var written []string
	spectrum := filepath.Join(dir, SpectrumFile)
	switch err := WriteSpectrumPNG(fsys, spectrum, cat, DefaultSpectrumBins); {
	case errors.Is(err, ErrNoEnergies):
		beamline.Diagf("skipping %s: %v", spectrum, err)
	case err != nil:
		return written, err
	default:
		written = append(written, spectrum)
	}

	report := filepath.Join(dir, ReportFile)
	if err := WriteReportHTML(fsys, report, s, hot); err != nil {
		return written, err
	}
	written = append(written, report)
	beamline.Opsf("wrote %d plot files to %s", len(written), dir)
	return written, nil
}
