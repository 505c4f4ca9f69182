// Package sqlite stores extraction products in a single-file SQLite run
// archive.
//
// An archive holds named extensions the way a FITS file does: the PRIMARY
// image stack with its header, the EVENTS table and the HOTPIX table. Each
// extension keeps its ordered header cards and history; table columns and
// image planes are stored as gob+gzip blobs.
package sqlite
