package l1frames

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_OrderAndReplace(t *testing.T) {
	h := NewHeader()
	h.Set("A", 1, "first")
	h.Set("B", 2.5, "")
	h.Set("C", "text", "")
	h.Set("A", 3, "")

	assert.Equal(t, []string{"A", "B", "C"}, h.Keys())
	c, ok := h.Get("A")
	require.True(t, ok)
	assert.Equal(t, int64(3), c.Value, "ints are normalized to int64")
	assert.Equal(t, "first", c.Comment, "empty comment keeps the old one")
}

func TestHeader_Pop(t *testing.T) {
	h := NewHeader()
	for _, k := range []string{"A", "B", "C", "D"} {
		h.Set(k, k, "")
	}
	c, ok := h.Pop("B")
	require.True(t, ok)
	assert.Equal(t, "B", c.Value)
	assert.Equal(t, []string{"A", "C", "D"}, h.Keys())

	// Index must be rebuilt after removal.
	c, ok = h.Get("D")
	require.True(t, ok)
	assert.Equal(t, "D", c.Value)

	_, ok = h.Pop("B")
	assert.False(t, ok)
}

func TestHeader_CloneIsIndependent(t *testing.T) {
	h := NewHeader()
	h.SetCard(Card{Key: "FRAMETIM", Value: 0.1, Unit: "s", Comment: "exposure"})
	cp := h.Clone()
	cp.Set("FRAMETIM", 0.2, "")
	cp.Set("EXTRA", true, "")

	if diff := cmp.Diff([]Card{{Key: "FRAMETIM", Value: 0.1, Unit: "s", Comment: "exposure"}}, h.Cards()); diff != "" {
		t.Fatalf("original header changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, cp.Len())
}

func TestHeader_TypedAccessors(t *testing.T) {
	h := NewHeader()
	h.Set("I", 7, "")
	h.Set("F", 4.0, "")
	h.Set("G", 4.5, "")
	h.Set("S", "name", "")

	i, err := h.Int("I")
	require.NoError(t, err)
	assert.Equal(t, int64(7), i)

	i, err = h.Int("F")
	require.NoError(t, err)
	assert.Equal(t, int64(4), i)

	_, err = h.Int("G")
	assert.Error(t, err)

	f, err := h.Float("I")
	require.NoError(t, err)
	assert.Equal(t, 7.0, f)

	_, err = h.Float("S")
	assert.Error(t, err)

	s, err := h.Text("S")
	require.NoError(t, err)
	assert.Equal(t, "name", s)

	_, err = h.Int("MISSING")
	assert.True(t, errors.Is(err, ErrMissingKey))
}

func TestHeader_Require(t *testing.T) {
	h := NewHeader()
	h.Set(KeyFrames, 3, "")
	h.Set(KeyFrameTime, 0.1, "")
	h.Set(KeyThrowout, 2, "")
	h.Set(KeyROIX0, 1, "")

	err := h.Require(RequiredKeys...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingKey))
	assert.Contains(t, err.Error(), KeyROIY0)

	h.Set(KeyROIY0, 1, "")
	assert.NoError(t, h.Require(RequiredKeys...))
}

func TestHeader_NormalizesIntegerKinds(t *testing.T) {
	h := NewHeader()
	h.Set("I8", int8(-3), "")
	h.Set("U8", uint8(200), "")
	h.Set("U", uint(7), "")
	h.Set("U64", uint64(1<<40), "")
	h.SetCard(Card{Key: "CARD", Value: uint8(9)})

	for key, want := range map[string]int64{"I8": -3, "U8": 200, "U": 7, "U64": 1 << 40, "CARD": 9} {
		got, err := h.Int(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}

	h.Set("HUGE", uint64(math.MaxUint64), "")
	c, _ := h.Get("HUGE")
	assert.IsType(t, float64(0), c.Value)
}
