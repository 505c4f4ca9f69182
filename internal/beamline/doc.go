// Package beamline is the root of the X-ray beamline event extraction code.
//
// Frames flow through numbered layers, each in its own package:
//
//	l1frames      frame stacks, headers and frame sources
//	l2background  per-column baseline removal
//	l3peaks       sigma-clipped local maximum detection
//	l4events      event catalog, islands, energy, grades, hot pixels
//
// The pipeline package is the composition root that wires the layers into
// an extraction chain. Dependency rule: a layer may import lower layers but
// never a higher one, and none of them import pipeline/ or storage/.
//
// This package itself only carries the shared logging streams.
package beamline
