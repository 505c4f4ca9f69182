// Package l1frames owns Layer 1 (Frames) of the beamline data model.
//
// Responsibilities: the (frame, x, y) count stack, the ordered header that
// travels with it, and the Source interface through which stacks are
// loaded. Key types: Stack, Header, Card, Source.
//
// Dependency rule: L1 depends on nothing else in the beamline tree.
// No SQL/database code is allowed in this package.
package l1frames
