package l4events

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEnergy3x3_WithinDequantizationBand(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	islands := make([][]float64, 50)
	for i := range islands {
		v := make([]float64, 9)
		for j := range v {
			v[j] = float64(rng.Intn(200) - 20)
		}
		islands[i] = v
	}
	c := catalogWith3x3(islands...)

	col, err := Energy3x3(c, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, EnergyUnit, col.Unit)
	require.Len(t, col.Floats, 50)

	scale := GainConstant * EVPerElectron
	for i, e := range col.Floats {
		sum := mat.Sum(c.Island3x3[i])
		if d := math.Abs(e - math.Round(sum)*scale); d >= 0.5*scale {
			t.Fatalf("event %d: |energy - sum*scale| = %v, want < %v", i, d, 0.5*scale)
		}
		assert.True(t, col.IsValid(i))
	}
}

func TestEnergy3x3_ReproducibleWithSeed(t *testing.T) {
	c := catalogWith3x3([]float64{0, 0, 0, 0, 50, 0, 0, 0, 0}, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1})
	a, err := Energy3x3(c, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	b, err := Energy3x3(c, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	assert.Equal(t, a.Floats, b.Floats)
}

func TestEnergy3x3_EdgeEventsInvalid(t *testing.T) {
	c := catalogWith3x3(make([]float64, 9), make([]float64, 9))
	c.Edge = []bool{false, true}
	col, err := Energy3x3(c, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, col.Valid)
}

func TestEnergy3x3_Errors(t *testing.T) {
	c := catalogWith3x3(make([]float64, 9))
	_, err := Energy3x3(c, nil)
	assert.Error(t, err)

	_, err = Energy3x3(catalogAt([3]int{0, 1, 1}), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNoIslands)
}

func TestDequantizeOpenInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 10000; i++ {
		u := dequantize(rng)
		if u <= -0.5 || u >= 0.5 {
			t.Fatalf("draw %d = %v outside (-0.5, 0.5)", i, u)
		}
	}
}
