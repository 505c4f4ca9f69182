// Package l3peaks owns Layer 3 (Peaks) of the beamline data model.
//
// Responsibilities: estimating a robust noise bound by iterative sigma
// clipping and selecting pixels that are both above that bound and the
// maximum of their spatial neighbourhood. Key types: Candidate, ClipResult.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
package l3peaks
