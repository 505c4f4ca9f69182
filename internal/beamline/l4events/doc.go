// Package l4events owns Layer 4 (Events) of the beamline data model.
//
// Responsibilities: the event catalog and every per-event computation made
// on it: island extraction, energy estimation, split-pattern grading, ASCA
// categories and hot-pixel flags. Key types: Catalog, Column, Event,
// HotPixelTable.
//
// Every computation here returns a new column of the catalog's row count;
// none of them add or drop rows.
//
// Dependency rule: L4 may depend on L1-L3, but never on pipeline/ or
// storage/. No SQL/database code is allowed in this package.
package l4events
