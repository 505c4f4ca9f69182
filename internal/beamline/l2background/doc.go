// Package l2background owns Layer 2 (Background) of the beamline data model.
//
// Responsibilities: removing the per-frame, per-column readout baseline from
// a raw stack so that peak detection sees counts above zero.
//
// Dependency rule: L2 may depend on L1, but never on L3+.
package l2background
