package sqlite

import (
	"database/sql"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l3peaks"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
)

// Stored column kinds beyond l4events.Kind.
const kindIsland = "island"

type storedColumn struct {
	name string
	kind string
	unit string
	blob columnBlob
}

// eventColumns lays out the catalog as X, Y, FRAME, the island columns when
// present, then the derived columns in order.
func eventColumns(cat *l4events.Catalog) []storedColumn {
	cols := []storedColumn{
		{name: l4events.ColX, kind: l4events.KindInt.String(), unit: l4events.CoordinateUnit, blob: columnBlob{Ints: cat.X}},
		{name: l4events.ColY, kind: l4events.KindInt.String(), unit: l4events.CoordinateUnit, blob: columnBlob{Ints: cat.Y}},
		{name: l4events.ColFrame, kind: l4events.KindInt.String(), blob: columnBlob{Ints: cat.Frame}},
	}
	if cat.HasIslands() {
		cols = append(cols,
			islandColumn(l4events.ColIsland5x5, cat.Island5x5, l4events.IslandSize),
			islandColumn(l4events.ColIsland3x3, cat.Island3x3, l4events.InnerIslandSize),
		)
	}
	for _, name := range cat.ColumnNames() {
		col, _ := cat.Column(name)
		cols = append(cols, storedColumn{
			name: name,
			kind: col.Kind.String(),
			unit: col.Unit,
			blob: columnBlob{Ints: col.Ints, Floats: col.Floats, Valid: col.Valid, Bools: col.Bools},
		})
	}
	return cols
}

func islandColumn(name string, islands []*mat.Dense, size int) storedColumn {
	flat := make([]float64, 0, len(islands)*size*size)
	for _, isl := range islands {
		for r := 0; r < size; r++ {
			flat = append(flat, isl.RawRowView(r)...)
		}
	}
	return storedColumn{name: name, kind: kindIsland, blob: columnBlob{Floats: flat, Shape: [2]int{size, size}}}
}

// WriteEvents stores the catalog as the EVENTS extension, replacing any
// previous one.
func (a *Archive) WriteEvents(cat *l4events.Catalog) error {
	return a.writeTable(EventsExtName, cat.Len(), cat.Meta, cat.History, eventColumns(cat))
}

func (a *Archive) writeTable(extname string, nRows int, hdr *l1frames.Header, history []string, cols []storedColumn) error {
	blobs := make([][]byte, len(cols))
	for i, c := range cols {
		b, err := encodeBlob(c.blob)
		if err != nil {
			return fmt.Errorf("failed to encode column %s: %w", c.name, err)
		}
		blobs[i] = b
	}
	return a.withTx(func(tx *sql.Tx) error {
		id, err := a.replaceHDU(tx, extname, "table", nRows, hdr, history)
		if err != nil {
			return err
		}
		for i, c := range cols {
			if _, err := tx.Exec(`INSERT INTO table_columns (hdu_id, position, name, kind, unit, data_blob)
				VALUES (?, ?, ?, ?, ?, ?)`, id, i, c.name, c.kind, c.unit, blobs[i]); err != nil {
				return fmt.Errorf("column %s: %w", c.name, err)
			}
		}
		return nil
	})
}

func (a *Archive) readTable(extname string) (nRows int, hdr *l1frames.Header, history []string, cols []storedColumn, err error) {
	id, nRows, err := a.lookupHDU(extname, "table")
	if err != nil {
		return 0, nil, nil, nil, err
	}

	rows, err := a.db.Query(`SELECT name, kind, unit, data_blob FROM table_columns WHERE hdu_id = ? ORDER BY position`, id)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	for rows.Next() {
		var c storedColumn
		var blob []byte
		if err := rows.Scan(&c.name, &c.kind, &c.unit, &blob); err != nil {
			rows.Close()
			return 0, nil, nil, nil, err
		}
		if err := decodeBlob(blob, &c.blob); err != nil {
			rows.Close()
			return 0, nil, nil, nil, fmt.Errorf("column %s: %w", c.name, err)
		}
		cols = append(cols, c)
	}
	if err := rows.Close(); err != nil {
		return 0, nil, nil, nil, err
	}

	if hdr, err = a.readHeader(id); err != nil {
		return 0, nil, nil, nil, err
	}
	if history, err = a.readHistory(id); err != nil {
		return 0, nil, nil, nil, err
	}
	return nRows, hdr, history, cols, nil
}

// ReadEvents loads the EVENTS extension back into a catalog. Window-local
// coordinates are recovered from the ROIX0/ROIY0 cards when present. The
// extractor's edge flags are not stored; use the ONEDGE column.
func (a *Archive) ReadEvents() (*l4events.Catalog, error) {
	nRows, hdr, history, cols, err := a.readTable(EventsExtName)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]storedColumn, len(cols))
	for _, c := range cols {
		byName[c.name] = c
	}
	x, okX := byName[l4events.ColX]
	y, okY := byName[l4events.ColY]
	frame, okF := byName[l4events.ColFrame]
	if !okX || !okY || !okF {
		return nil, fmt.Errorf("%s table lacks X, Y or FRAME", EventsExtName)
	}
	for _, c := range []storedColumn{x, y, frame} {
		if len(c.blob.Ints) != nRows {
			return nil, fmt.Errorf("column %s has %d rows, want %d", c.name, len(c.blob.Ints), nRows)
		}
	}

	dx, dy := roiOffset(hdr)
	cands := make([]l3peaks.Candidate, nRows)
	for i := range cands {
		cands[i] = l3peaks.Candidate{Frame: frame.blob.Ints[i], X: x.blob.Ints[i] - dx, Y: y.blob.Ints[i] - dy}
	}
	cat := l4events.NewCatalog(cands)
	cat.OffsetCoordinates(dx, dy)
	cat.Meta = hdr
	cat.History = history

	for _, c := range cols {
		switch c.name {
		case l4events.ColX, l4events.ColY, l4events.ColFrame:
			continue
		case l4events.ColIsland5x5:
			if cat.Island5x5, err = unflattenIslands(c, nRows); err != nil {
				return nil, err
			}
			continue
		case l4events.ColIsland3x3:
			if cat.Island3x3, err = unflattenIslands(c, nRows); err != nil {
				return nil, err
			}
			continue
		}
		col, err := toColumn(c)
		if err != nil {
			return nil, err
		}
		if err := cat.SetColumn(c.name, col); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func roiOffset(hdr *l1frames.Header) (dx, dy int) {
	if x0, err := hdr.Int(l1frames.KeyROIX0); err == nil {
		dx = int(x0 - 1)
	}
	if y0, err := hdr.Int(l1frames.KeyROIY0); err == nil {
		dy = int(y0 - 1)
	}
	return dx, dy
}

func unflattenIslands(c storedColumn, nRows int) ([]*mat.Dense, error) {
	r, k := c.blob.Shape[0], c.blob.Shape[1]
	cell := r * k
	if cell == 0 || len(c.blob.Floats) != nRows*cell {
		return nil, fmt.Errorf("island column %s holds %d values for %d rows of %d×%d", c.name, len(c.blob.Floats), nRows, r, k)
	}
	out := make([]*mat.Dense, nRows)
	for i := range out {
		data := make([]float64, cell)
		copy(data, c.blob.Floats[i*cell:(i+1)*cell])
		out[i] = mat.NewDense(r, k, data)
	}
	return out, nil
}

func toColumn(c storedColumn) (l4events.Column, error) {
	switch c.kind {
	case l4events.KindFloat.String():
		col := l4events.FloatColumn(c.blob.Floats, c.unit)
		col.Valid = c.blob.Valid
		return col, nil
	case l4events.KindInt.String():
		col := l4events.IntColumn(c.blob.Ints)
		col.Unit = c.unit
		return col, nil
	case l4events.KindBool.String():
		col := l4events.BoolColumn(c.blob.Bools)
		col.Unit = c.unit
		return col, nil
	}
	return l4events.Column{}, fmt.Errorf("column %s has unknown kind %q", c.name, c.kind)
}
