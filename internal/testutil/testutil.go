// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"testing"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// FrameHeader returns a header carrying every key the extraction chain
// requires.
func FrameHeader(frames int, frametim float64, throwout, roix0, roiy0 int) *l1frames.Header {
	h := l1frames.NewHeader()
	h.Set(l1frames.KeyFrames, frames, "number of frames")
	h.Set(l1frames.KeyFrameTime, frametim, "[s] exposure time per frame")
	h.Set(l1frames.KeyThrowout, throwout, "frames discarded before the first stored one")
	h.Set(l1frames.KeyROIX0, roix0, "")
	h.Set(l1frames.KeyROIY0, roiy0, "")
	return h
}

// AddWCS adds a three-axis image WCS system named name. alt is the
// alternate system letter, "" for the primary one. CRVALn holds n-1.
func AddWCS(h *l1frames.Header, name, alt string) {
	h.Set("WCSNAME"+alt, name, "")
	h.Set("WCSAXES"+alt, 3, "")
	for axis, n := range []string{"1", "2", "3"} {
		h.Set("CRVAL"+n+alt, float64(axis), "")
		h.Set("CRPIX"+n+alt, 1.0, "")
		h.Set("CDELT"+n+alt, 1.0, "")
		h.Set("CUNIT"+n+alt, "pixel", "")
		h.Set("CTYPE"+n+alt, "DET", "")
	}
}

// BumpStack returns a zero stack of frames × nx × ny pixels with value at
// every (frame, x, y) in bumps.
func BumpStack(frames, nx, ny int, value float64, bumps ...[3]int) *l1frames.Stack {
	s := l1frames.NewStack(frames, nx, ny)
	for _, b := range bumps {
		s.Set(b[0], b[1], b[2], value)
	}
	return s
}
