package l4events

import (
	"fmt"
	"math"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"gonum.org/v1/gonum/mat"
)

// Island geometry.
const (
	IslandSize      = 5
	InnerIslandSize = 3
	// IslandFill is stored for island pixels outside the frame.
	IslandFill = 0.0
)

// ExtractIsland cuts a size × size window centered on (x, y) from frame.
// Positions outside the frame hold IslandFill; complete is false when any
// position was outside.
func ExtractIsland(frame *mat.Dense, x, y, size int) (island *mat.Dense, complete bool) {
	nx, ny := frame.Dims()
	half := size / 2
	island = mat.NewDense(size, size, nil)
	complete = true
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			fx, fy := x-half+i, y-half+j
			if fx < 0 || fx >= nx || fy < 0 || fy >= ny {
				island.Set(i, j, IslandFill)
				complete = false
				continue
			}
			island.Set(i, j, frame.At(fx, fy))
		}
	}
	return island, complete
}

// AddIslands5533 extracts the 5×5 island around every event's window
// position from clean, plus its inner 3×3 crop, and records the edge flag.
// clean must be the stack the events were detected in.
func AddIslands5533(c *Catalog, clean *l1frames.Stack) error {
	n := c.Len()
	c.Island5x5 = make([]*mat.Dense, n)
	c.Island3x3 = make([]*mat.Dense, n)
	c.Edge = make([]bool, n)
	for i := 0; i < n; i++ {
		f := c.Frame[i]
		if f < 0 || f >= clean.Len() {
			c.Island5x5, c.Island3x3, c.Edge = nil, nil, nil
			return c.rowError(i, fmt.Errorf("frame index outside stack of %d frames", clean.Len()))
		}
		isl, complete := ExtractIsland(clean.Frames[f], c.WindowX[i], c.WindowY[i], IslandSize)
		off := (IslandSize - InnerIslandSize) / 2
		c.Island5x5[i] = isl
		c.Island3x3[i] = mat.DenseCopyOf(isl.Slice(off, off+InnerIslandSize, off, off+InnerIslandSize))
		c.Edge[i] = !complete
	}
	return nil
}

// OnEdge flags events whose energy is missing or not finite. Without an
// ENERGY column it falls back to the extractor's edge flag.
func OnEdge(c *Catalog) (Column, error) {
	out := make([]bool, c.Len())
	energy, ok := c.Column(ColEnergy)
	if !ok {
		if len(c.Edge) != c.Len() {
			return Column{}, ErrNoIslands
		}
		copy(out, c.Edge)
		return BoolColumn(out), nil
	}
	if energy.Kind != KindFloat {
		return Column{}, fmt.Errorf("column %s is %s, want float", ColEnergy, energy.Kind)
	}
	for i, v := range energy.Floats {
		out[i] = !energy.IsValid(i) || math.IsNaN(v) || math.IsInf(v, 0)
	}
	return BoolColumn(out), nil
}
