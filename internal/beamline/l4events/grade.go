package l4events

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// GradeThreshold is the count a neighbour pixel must exceed to be part of
// the split pattern.
const GradeThreshold = 10.0

// ErrIslandShape is returned when an island is not 3×3.
var ErrIslandShape = errors.New("island must be 3x3")

// gradeWeights assigns one bit per neighbour; the center is the trigger
// pixel and carries no weight.
var gradeWeights = mat.NewDense(3, 3, []float64{
	32, 64, 128,
	8, 0, 16,
	1, 2, 4,
})

// GradeWeights returns a copy of the 3×3 bit weight matrix.
func GradeWeights() *mat.Dense {
	return mat.DenseCopyOf(gradeWeights)
}

// ASCACategory is the coarse split-pattern class of an event.
type ASCACategory int

const (
	ASCASingle ASCACategory = iota
	ASCADiagonal
	ASCAVertical
	ASCAHorizontalLeft
	ASCAHorizontalRight
	ASCALShaped
	ASCALQuad
	ASCAOther
)

func (a ASCACategory) String() string {
	switch a {
	case ASCASingle:
		return "single"
	case ASCADiagonal:
		return "diagonal split"
	case ASCAVertical:
		return "vertical split"
	case ASCAHorizontalLeft:
		return "horizontal split left"
	case ASCAHorizontalRight:
		return "horizontal split right"
	case ASCALShaped:
		return "L-shaped split"
	case ASCALQuad:
		return "L & quad split"
	case ASCAOther:
		return "other"
	}
	return fmt.Sprintf("asca(%d)", int(a))
}

// acisToASCA lists the split bitmasks belonging to each category. Any
// bitmask not listed is ASCAOther.
var acisToASCA = map[ASCACategory][]int{
	ASCASingle:          {0},
	ASCADiagonal:        {1, 4, 5, 32, 128, 33, 36, 37, 129, 132, 133, 160, 161, 164, 165},
	ASCAVertical:        {64, 65, 68, 69, 2, 34, 130, 162},
	ASCAHorizontalLeft:  {8, 12, 136, 140},
	ASCAHorizontalRight: {16, 17, 48, 49},
	ASCALShaped: {3, 6, 9, 20, 40, 96, 144, 192, 13, 21, 35, 38, 44, 52, 53, 97,
		100, 101, 131, 134, 137, 141, 145, 163, 166, 168, 172, 176, 177, 193, 196, 197},
	ASCALQuad: {72, 76, 104, 108, 10, 11, 138, 139, 18, 22, 50, 54, 80, 81, 208, 209},
}

// ascaTable is filled once at init and only read afterwards.
var ascaTable [256]ASCACategory

func init() {
	for i := range ascaTable {
		ascaTable[i] = ASCAOther
	}
	for cat := ASCASingle; cat < ASCAOther; cat++ {
		for _, g := range acisToASCA[cat] {
			ascaTable[g] = cat
		}
	}
}

// GradeOf returns the split bitmask of a 3×3 island: the sum of the weights
// of every pixel above GradeThreshold.
func GradeOf(island *mat.Dense) (int, error) {
	if island == nil {
		return 0, ErrIslandShape
	}
	if r, c := island.Dims(); r != 3 || c != 3 {
		return 0, fmt.Errorf("%w, got %dx%d", ErrIslandShape, r, c)
	}
	var mask mat.Dense
	mask.Apply(func(_, _ int, v float64) float64 {
		if v > GradeThreshold {
			return 1
		}
		return 0
	}, island)
	mask.MulElem(&mask, gradeWeights)
	return int(mat.Sum(&mask)), nil
}

// ASCAOf maps a split bitmask to its ASCA category. Values outside
// [0, 255] are ASCAOther.
func ASCAOf(grade int) ASCACategory {
	if grade < 0 || grade >= len(ascaTable) {
		return ASCAOther
	}
	return ascaTable[grade]
}

// AcisGrade computes the split bitmask (0-255) of every event's 3×3 island.
func AcisGrade(c *Catalog) (Column, error) {
	if !c.HasIslands() {
		return Column{}, ErrNoIslands
	}
	out := make([]int, c.Len())
	for i, isl := range c.Island3x3 {
		g, err := GradeOf(isl)
		if err != nil {
			return Column{}, c.rowError(i, err)
		}
		out[i] = g
	}
	return IntColumn(out), nil
}

// AscaGrade maps the split bitmask in column gradeCol to ASCA categories 0-7.
func AscaGrade(c *Catalog, gradeCol string) (Column, error) {
	grades, ok := c.Column(gradeCol)
	if !ok {
		return Column{}, fmt.Errorf("asca grade: no column %s", gradeCol)
	}
	if grades.Kind != KindInt {
		return Column{}, fmt.Errorf("asca grade: column %s is %s, want int", gradeCol, grades.Kind)
	}
	out := make([]int, c.Len())
	for i, g := range grades.Ints {
		out[i] = int(ASCAOf(g))
	}
	return IntColumn(out), nil
}
