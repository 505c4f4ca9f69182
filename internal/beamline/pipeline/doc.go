// Package pipeline composes the extraction layers into a single run: frames
// are loaded from a source, background corrected, searched for events, and
// turned into an event catalog whose derived columns are produced by an
// ordered list of stages.
//
// Chain.Process moves through the states
//
//	Loaded → BackgroundSubtracted → PeaksIdentified → MetadataAttached →
//	CoordinatesCorrected → IslandsExtracted → ColumnsComputed
//
// and ends in Failed on the first error, in which case no catalog is
// returned.
package pipeline
