package l3peaks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestMaximumFilter_Size3(t *testing.T) {
	frame := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 9, 0,
		0, 0, 0, 2,
	})
	mf := MaximumFilter(frame, 3)

	want := mat.NewDense(4, 4, []float64{
		1, 1, 0, 0,
		1, 9, 9, 9,
		0, 9, 9, 9,
		0, 9, 9, 9,
	})
	assert.True(t, mat.Equal(want, mf), "got\n%v", mat.Formatted(mf))
}

func TestMaximumFilter_Size1IsIdentity(t *testing.T) {
	frame := mat.NewDense(2, 3, []float64{1, 5, 2, 7, 3, 4})
	assert.True(t, mat.Equal(frame, MaximumFilter(frame, 1)))
}

func TestMaximumFilter_BorderWindowTruncated(t *testing.T) {
	// Corner pixel sees only the 2×2 in-frame part of its 3×3 window; a
	// large value two pixels away must not leak in.
	frame := mat.NewDense(3, 3, []float64{
		1, 0, 8,
		0, 0, 0,
		0, 0, 0,
	})
	mf := MaximumFilter(frame, 3)
	assert.Equal(t, 1.0, mf.At(0, 0))
	assert.Equal(t, 8.0, mf.At(0, 1))
	assert.Equal(t, 8.0, mf.At(1, 1))
	assert.Equal(t, 0.0, mf.At(2, 0))
}

func TestMaximumFilter_Size5(t *testing.T) {
	frame := mat.NewDense(5, 5, nil)
	frame.Set(0, 0, 3)
	mf := MaximumFilter(frame, 5)
	assert.Equal(t, 3.0, mf.At(2, 2))
	assert.Equal(t, 0.0, mf.At(3, 3))
	assert.Equal(t, 3.0, mf.At(0, 2))
}
