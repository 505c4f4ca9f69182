package l3peaks

import (
	"gonum.org/v1/gonum/mat"
)

// MaximumFilter returns, for every pixel of frame, the largest value inside
// the size × size window centered on it. Window positions outside the frame
// are ignored, so border pixels see a truncated window. size must be odd.
func MaximumFilter(frame *mat.Dense, size int) *mat.Dense {
	nx, ny := frame.Dims()
	half := size / 2

	// The rectangular max is separable: filter along y, then along x.
	rowPass := mat.NewDense(nx, ny, nil)
	for x := 0; x < nx; x++ {
		src := frame.RawRowView(x)
		dst := rowPass.RawRowView(x)
		for y := 0; y < ny; y++ {
			lo, hi := clampWindow(y, half, ny)
			m := src[lo]
			for k := lo + 1; k <= hi; k++ {
				if src[k] > m {
					m = src[k]
				}
			}
			dst[y] = m
		}
	}

	out := mat.NewDense(nx, ny, nil)
	for x := 0; x < nx; x++ {
		lo, hi := clampWindow(x, half, nx)
		for y := 0; y < ny; y++ {
			m := rowPass.At(lo, y)
			for k := lo + 1; k <= hi; k++ {
				if v := rowPass.At(k, y); v > m {
					m = v
				}
			}
			out.Set(x, y, m)
		}
	}
	return out
}

// clampWindow returns the inclusive index range [i-half, i+half] cut to [0, n).
func clampWindow(i, half, n int) (lo, hi int) {
	lo, hi = i-half, i+half
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}
