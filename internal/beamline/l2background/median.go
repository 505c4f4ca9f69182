package l2background

import (
	"sort"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"gonum.org/v1/gonum/mat"
)

// Baseline returns the per-column medians of every frame: row f of the
// result holds, for each column y, the median of frame f's values along x.
func Baseline(raw *l1frames.Stack) *mat.Dense {
	nx, ny := raw.Dims()
	out := mat.NewDense(raw.Len(), ny, nil)
	col := make([]float64, nx)
	for f, frame := range raw.Frames {
		for y := 0; y < ny; y++ {
			mat.Col(col, y, frame)
			out.Set(f, y, median(col))
		}
	}
	return out
}

// MedianColumnRemover returns a new stack with the per-column median of each
// frame subtracted from every pixel of that column. The input is not
// modified.
//
// For integer counts, which is what detector frames hold, adding Baseline
// back reproduces the input exactly. Fractional input recovers only to within
// float64 rounding of the subtraction.
func MedianColumnRemover(raw *l1frames.Stack) *l1frames.Stack {
	base := Baseline(raw)
	out := raw.Clone()
	nx, ny := raw.Dims()
	for f, frame := range out.Frames {
		for y := 0; y < ny; y++ {
			m := base.At(f, y)
			for x := 0; x < nx; x++ {
				frame.Set(x, y, frame.At(x, y)-m)
			}
		}
	}
	return out
}

// median returns the middle value of v, or the mean of the two middle values
// for even lengths. v is sorted in place.
func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}
