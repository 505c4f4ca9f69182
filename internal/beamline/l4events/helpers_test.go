package l4events

import (
	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l3peaks"
	"gonum.org/v1/gonum/mat"
)

// catalogAt builds a catalog with one event per (frame, x, y) triple.
func catalogAt(triples ...[3]int) *Catalog {
	cands := make([]l3peaks.Candidate, len(triples))
	for i, tr := range triples {
		cands[i] = l3peaks.Candidate{Frame: tr[0], X: tr[1], Y: tr[2]}
	}
	return NewCatalog(cands)
}

// catalogWith3x3 builds a catalog whose events carry the given 3×3 islands.
func catalogWith3x3(islands ...[]float64) *Catalog {
	triples := make([][3]int, len(islands))
	c := catalogAt(triples...)
	c.Island5x5 = make([]*mat.Dense, len(islands))
	c.Island3x3 = make([]*mat.Dense, len(islands))
	c.Edge = make([]bool, len(islands))
	for i, v := range islands {
		c.Island3x3[i] = mat.NewDense(3, 3, v)
		c.Island5x5[i] = mat.NewDense(5, 5, nil)
		c.Island5x5[i].Slice(1, 4, 1, 4).(*mat.Dense).Copy(c.Island3x3[i])
	}
	return c
}

// rampStack returns a stack where pixel (f, x, y) holds 100f + 10x + y.
func rampStack(frames, nx, ny int) *l1frames.Stack {
	s := l1frames.NewStack(frames, nx, ny)
	for f := 0; f < frames; f++ {
		for x := 0; x < nx; x++ {
			for y := 0; y < ny; y++ {
				s.Set(f, x, y, float64(100*f+10*x+y))
			}
		}
	}
	return s
}
