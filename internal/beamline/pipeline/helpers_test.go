package pipeline

import (
	"math/rand"
	"testing"
	"time"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/testutil"
	"github.com/banshee-data/xpolbeamline/internal/timeutil"
)

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// frameHeader returns a header with the required keys and one WCS system.
func frameHeader() *l1frames.Header {
	h := l1frames.NewHeader()
	h.Set("INSTRUME", "XPOL", "")
	for _, c := range testutil.FrameHeader(3, 0.1, 2, 11, 21).Cards() {
		h.SetCard(c)
	}
	testutil.AddWCS(h, "DETECTOR", "")
	return h
}

// bumpSource registers a 3×10×10 zero stack under "run" with the given
// (frame, x, y) pixels set to 48.
func bumpSource(t *testing.T, h *l1frames.Header, bumps ...[3]int) *l1frames.MemorySource {
	t.Helper()
	src := l1frames.NewMemorySource()
	src.Add("run", testutil.BumpStack(3, 10, 10, 48, bumps...), h)
	return src
}

func testOptions(seed int64) []Option {
	return []Option{
		WithClock(timeutil.NewMockClock(testStart)),
		WithRand(rand.New(rand.NewSource(seed))),
	}
}
