package sqlite

import (
	"fmt"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
)

// WriteHotPixels stores t as the HOTPIX extension, replacing any previous
// one.
func (a *Archive) WriteHotPixels(t *l4events.HotPixelTable) error {
	cols := []storedColumn{
		{name: l4events.ColX, kind: l4events.KindInt.String(), unit: l4events.CoordinateUnit, blob: columnBlob{Ints: t.X}},
		{name: l4events.ColY, kind: l4events.KindInt.String(), unit: l4events.CoordinateUnit, blob: columnBlob{Ints: t.Y}},
	}
	return a.writeTable(HotPixExtName, t.Len(), t.Meta, t.History, cols)
}

// ReadHotPixels loads the HOTPIX extension.
func (a *Archive) ReadHotPixels() (*l4events.HotPixelTable, error) {
	nRows, hdr, history, cols, err := a.readTable(HotPixExtName)
	if err != nil {
		return nil, err
	}
	t := &l4events.HotPixelTable{Meta: hdr, History: history}
	for _, c := range cols {
		switch c.name {
		case l4events.ColX:
			t.X = c.blob.Ints
		case l4events.ColY:
			t.Y = c.blob.Ints
		}
	}
	if len(t.X) != nRows || len(t.Y) != nRows {
		return nil, fmt.Errorf("%s table has %d x and %d y for %d rows", HotPixExtName, len(t.X), len(t.Y), nRows)
	}
	return t, nil
}
