package l3peaks

import (
	"fmt"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
)

// Defaults for IdentifySigmaClip.
const (
	DefaultSigmaClipLevel = 5.0
	DefaultPeakSize       = 3
)

// Candidate is a pixel selected as an event, in window-local coordinates.
type Candidate struct {
	Frame int
	X     int
	Y     int
}

// Params configures IdentifySigmaClip.
type Params struct {
	SigmaClipLevel float64 // rejection level in standard deviations, both sides
	PeakSize       int     // odd side length of the local maximum window
}

// DefaultParams returns the standard clip level and peak window.
func DefaultParams() Params {
	return Params{SigmaClipLevel: DefaultSigmaClipLevel, PeakSize: DefaultPeakSize}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if !(p.SigmaClipLevel > 0) {
		return fmt.Errorf("sigma_clip_level must be positive, got %v", p.SigmaClipLevel)
	}
	if p.PeakSize < 1 || p.PeakSize%2 == 0 {
		return fmt.Errorf("peak_size must be an odd integer >= 1, got %d", p.PeakSize)
	}
	return nil
}

// IdentifySigmaClip finds events in a background subtracted stack. A pixel
// is an event when its value is above the upper sigma-clip bound of the whole
// stack and equal to the maximum of its PeakSize × PeakSize neighbourhood in
// the same frame. Candidates are returned frame-major, then by x, then by y.
func IdentifySigmaClip(clean *l1frames.Stack, p Params) ([]Candidate, ClipResult, error) {
	if err := p.Validate(); err != nil {
		return nil, ClipResult{}, err
	}
	if err := clean.Validate(); err != nil {
		return nil, ClipResult{}, err
	}

	clip, err := SigmaClip(clean.Values(), p.SigmaClipLevel, p.SigmaClipLevel)
	if err != nil {
		return nil, clip, err
	}

	nx, _ := clean.Dims()
	var out []Candidate
	for f, frame := range clean.Frames {
		mf := MaximumFilter(frame, p.PeakSize)
		for x := 0; x < nx; x++ {
			row := frame.RawRowView(x)
			maxRow := mf.RawRowView(x)
			for y, v := range row {
				if v > clip.Upper && v == maxRow[y] {
					out = append(out, Candidate{Frame: f, X: x, Y: y})
				}
			}
		}
	}
	return out, clip, nil
}
