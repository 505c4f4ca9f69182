package l4events

import (
	"errors"
	"fmt"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l3peaks"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/xpolbeamline/internal/units"
)

// Standard column names.
const (
	ColX         = "X"
	ColY         = "Y"
	ColFrame     = "FRAME"
	ColTime      = "TIME"
	ColIsland5x5 = "5X5"
	ColIsland3x3 = "3X3"
	ColEnergy    = "ENERGY"
	ColGrade     = "GRADE"
	ColASCA      = "ASCA"
	ColHotPix    = "HOTPIX"
	ColOnEdge    = "ONEDGE"
)

// CoordinateUnit is the unit of the X and Y columns.
const CoordinateUnit = units.Pixel

var (
	// ErrRowCount is returned when a column does not match the catalog length.
	ErrRowCount = errors.New("column row count does not match catalog")
	// ErrNoIslands is returned by computations that need extracted islands.
	ErrNoIslands = errors.New("event islands have not been extracted")
)

// Kind is the element type of a derived column.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a derived per-event column. Exactly one of Floats, Ints or Bools
// is populated, according to Kind. Valid, when non-nil, marks which float
// entries hold a value; a nil Valid means every entry is valid.
type Column struct {
	Kind   Kind
	Unit   string
	Floats []float64
	Valid  []bool
	Ints   []int
	Bools  []bool
}

// FloatColumn returns a float column.
func FloatColumn(values []float64, unit string) Column {
	return Column{Kind: KindFloat, Unit: unit, Floats: values}
}

// IntColumn returns an integer column.
func IntColumn(values []int) Column {
	return Column{Kind: KindInt, Ints: values}
}

// BoolColumn returns a flag column.
func BoolColumn(values []bool) Column {
	return Column{Kind: KindBool, Bools: values}
}

// Len returns the number of rows in the column.
func (c Column) Len() int {
	switch c.Kind {
	case KindFloat:
		return len(c.Floats)
	case KindInt:
		return len(c.Ints)
	case KindBool:
		return len(c.Bools)
	}
	return 0
}

// IsValid reports whether row i of a float column holds a value.
func (c Column) IsValid(i int) bool {
	return c.Valid == nil || c.Valid[i]
}

// Catalog is an ordered list of events sharing a column schema, together
// with run metadata and an append-only history.
//
// X and Y are detector coordinates once the pipeline has applied the
// readout-window offset; WindowX and WindowY keep the window-local position
// that islands are cut from.
type Catalog struct {
	Frame   []int
	X       []int
	Y       []int
	WindowX []int
	WindowY []int

	Island5x5 []*mat.Dense
	Island3x3 []*mat.Dense
	// Edge is set by AddIslands5533: true when part of the 5×5 window lies
	// outside the frame.
	Edge []bool

	Meta    *l1frames.Header
	History []string

	names []string
	cols  map[string]Column
}

// NewCatalog builds a catalog with one row per candidate, in candidate order.
func NewCatalog(cands []l3peaks.Candidate) *Catalog {
	n := len(cands)
	c := &Catalog{
		Frame:   make([]int, n),
		X:       make([]int, n),
		Y:       make([]int, n),
		WindowX: make([]int, n),
		WindowY: make([]int, n),
		Meta:    l1frames.NewHeader(),
		cols:    make(map[string]Column),
	}
	for i, cd := range cands {
		c.Frame[i] = cd.Frame
		c.X[i], c.Y[i] = cd.X, cd.Y
		c.WindowX[i], c.WindowY[i] = cd.X, cd.Y
	}
	return c
}

// Len returns the number of events.
func (c *Catalog) Len() int { return len(c.Frame) }

// AddHistory appends a provenance entry.
func (c *Catalog) AddHistory(entry string) {
	c.History = append(c.History, entry)
}

// OffsetCoordinates adds dx to every X and dy to every Y. WindowX and
// WindowY are left unchanged.
func (c *Catalog) OffsetCoordinates(dx, dy int) {
	for i := range c.X {
		c.X[i] += dx
		c.Y[i] += dy
	}
}

// SetColumn stores a derived column. An existing column of the same name is
// replaced in place, keeping its position.
func (c *Catalog) SetColumn(name string, col Column) error {
	if col.Len() != c.Len() {
		return fmt.Errorf("%w: column %s has %d rows, catalog has %d", ErrRowCount, name, col.Len(), c.Len())
	}
	if col.Kind == KindFloat && col.Valid != nil && len(col.Valid) != len(col.Floats) {
		return fmt.Errorf("%w: column %s validity mask has %d rows", ErrRowCount, name, len(col.Valid))
	}
	if c.cols == nil {
		c.cols = make(map[string]Column)
	}
	if _, ok := c.cols[name]; !ok {
		c.names = append(c.names, name)
	}
	c.cols[name] = col
	return nil
}

// Column returns the derived column stored under name.
func (c *Catalog) Column(name string) (Column, bool) {
	col, ok := c.cols[name]
	return col, ok
}

// ColumnNames returns derived column names in insertion order.
func (c *Catalog) ColumnNames() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// HasIslands reports whether islands have been extracted for every row.
func (c *Catalog) HasIslands() bool {
	return len(c.Island3x3) == c.Len() && len(c.Island5x5) == c.Len()
}

// Event is a row view of the catalog over the standard columns. Fields whose
// column has not been computed yet hold their zero value.
type Event struct {
	Frame       int
	X           int
	Y           int
	Island5x5   *mat.Dense
	Island3x3   *mat.Dense
	Energy      float64
	EnergyValid bool
	Grade       int
	ASCAGrade   int
	HotPixel    bool
	OnEdge      bool
}

// Event returns row i.
func (c *Catalog) Event(i int) Event {
	e := Event{Frame: c.Frame[i], X: c.X[i], Y: c.Y[i]}
	if c.HasIslands() {
		e.Island5x5, e.Island3x3 = c.Island5x5[i], c.Island3x3[i]
	}
	if col, ok := c.cols[ColEnergy]; ok && col.Kind == KindFloat {
		e.Energy, e.EnergyValid = col.Floats[i], col.IsValid(i)
	}
	if col, ok := c.cols[ColGrade]; ok && col.Kind == KindInt {
		e.Grade = col.Ints[i]
	}
	if col, ok := c.cols[ColASCA]; ok && col.Kind == KindInt {
		e.ASCAGrade = col.Ints[i]
	}
	if col, ok := c.cols[ColHotPix]; ok && col.Kind == KindBool {
		e.HotPixel = col.Bools[i]
	}
	if col, ok := c.cols[ColOnEdge]; ok && col.Kind == KindBool {
		e.OnEdge = col.Bools[i]
	}
	return e
}

// rowError decorates err with the row's position so failures can be traced
// back to a pixel.
func (c *Catalog) rowError(i int, err error) error {
	return fmt.Errorf("row %d (frame=%d x=%d y=%d): %w", i, c.Frame[i], c.X[i], c.Y[i], err)
}
