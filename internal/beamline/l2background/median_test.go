package l2background

import (
	"math/rand"
	"testing"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 7.0, median([]float64{7}))
}

func TestBaseline_ColumnAxisIsY(t *testing.T) {
	// Frame 0: column y=0 holds {1,5,3}, column y=1 holds {10,10,40}.
	raw, err := l1frames.StackFromSlices([][][]float64{
		{{1, 10}, {5, 10}, {3, 40}},
	})
	require.NoError(t, err)

	base := Baseline(raw)
	r, c := base.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 3.0, base.At(0, 0))
	assert.Equal(t, 10.0, base.At(0, 1))

	clean := MedianColumnRemover(raw)
	assert.Equal(t, -2.0, clean.At(0, 0, 0))
	assert.Equal(t, 2.0, clean.At(0, 1, 0))
	assert.Equal(t, 30.0, clean.At(0, 2, 1))
	// Input untouched.
	assert.Equal(t, 1.0, raw.At(0, 0, 0))
}

func TestMedianColumnRemover_RoundTripExact(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		nf, nx, ny := 1+rng.Intn(4), 1+rng.Intn(9), 1+rng.Intn(9)
		raw := l1frames.NewStack(nf, nx, ny)
		for f := 0; f < nf; f++ {
			for x := 0; x < nx; x++ {
				for y := 0; y < ny; y++ {
					raw.Set(f, x, y, float64(rng.Intn(4096)))
				}
			}
		}

		clean := MedianColumnRemover(raw)
		base := Baseline(raw)
		for f := 0; f < nf; f++ {
			for x := 0; x < nx; x++ {
				for y := 0; y < ny; y++ {
					if got := clean.At(f, x, y) + base.At(f, y); got != raw.At(f, x, y) {
						t.Fatalf("trial %d (%d,%d,%d): result+baseline = %v, want %v",
							trial, f, x, y, got, raw.At(f, x, y))
					}
				}
			}
		}
	}
}

func TestMedianColumnRemover_PerFrame(t *testing.T) {
	raw := l1frames.NewStack(2, 3, 1)
	for x := 0; x < 3; x++ {
		raw.Set(0, x, 0, 100)
		raw.Set(1, x, 0, 200)
	}
	raw.Set(1, 1, 0, 260)

	clean := MedianColumnRemover(raw)
	assert.Equal(t, 0.0, clean.At(0, 1, 0))
	assert.Equal(t, 60.0, clean.At(1, 1, 0))
	assert.Equal(t, 0.0, clean.At(1, 0, 0))
}

func TestMedianColumnRemover_RoundTripFractional(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	raw := l1frames.NewStack(2, 6, 5)
	for f := 0; f < 2; f++ {
		for x := 0; x < 6; x++ {
			for y := 0; y < 5; y++ {
				raw.Set(f, x, y, rng.Float64()*1000)
			}
		}
	}

	clean := MedianColumnRemover(raw)
	base := Baseline(raw)
	for f := 0; f < 2; f++ {
		for x := 0; x < 6; x++ {
			for y := 0; y < 5; y++ {
				assert.InDelta(t, raw.At(f, x, y), clean.At(f, x, y)+base.At(f, y), 1e-9)
			}
		}
	}
}
