package pipeline

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
)

// Params are the keyword parameters handed to a stage function. They are
// recorded in the catalog history.
type Params map[string]interface{}

// String renders the parameters as "k=v" pairs sorted by key.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, p[k])
	}
	return strings.Join(parts, ", ")
}

// Float returns the numeric parameter stored under key. ok is false when the
// key is absent.
func (p Params) Float(key string) (v float64, ok bool, err error) {
	raw, ok := p[key]
	if !ok {
		return 0, false, nil
	}
	switch n := raw.(type) {
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	}
	return 0, true, fmt.Errorf("parameter %s is %T, want number", key, raw)
}

// Text returns the string parameter stored under key, or def when absent.
func (p Params) Text(key, def string) (string, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s is %T, want string", key, raw)
	}
	return s, nil
}

// StageFunc computes one derived column from the catalog.
type StageFunc func(cat *l4events.Catalog, params Params) (l4events.Column, error)

// Stage names the column a function produces. Name is what the history
// records as the producer.
type Stage struct {
	Column string
	Name   string
	Func   StageFunc
	Params Params

	// bind builds Func from the chain's random source when Func is nil.
	bind func(rng *rand.Rand) StageFunc
}

// run returns the function to call, binding it to rng if the stage takes
// the chain's random source.
func (s Stage) run(rng *rand.Rand) StageFunc {
	if s.Func == nil && s.bind != nil {
		return s.bind(rng)
	}
	return s.Func
}

// historyEntry returns "<COL> made by <Name>" with the parameters appended
// in parentheses when there are any.
func (s Stage) historyEntry() string {
	if len(s.Params) == 0 {
		return fmt.Sprintf("%s made by %s", s.Column, s.Name)
	}
	return fmt.Sprintf("%s made by %s (%s)", s.Column, s.Name, s.Params)
}

// EnergyStage computes ENERGY from the 3×3 island sums, drawing the
// de-quantization offset from rng. A nil rng draws from the chain's random
// source at run time.
func EnergyStage(rng *rand.Rand) Stage {
	s := Stage{Column: l4events.ColEnergy, Name: "Energy3x3"}
	if rng == nil {
		s.bind = energyFunc
	} else {
		s.Func = energyFunc(rng)
	}
	return s
}

func energyFunc(rng *rand.Rand) StageFunc {
	return func(cat *l4events.Catalog, _ Params) (l4events.Column, error) {
		return l4events.Energy3x3(cat, rng)
	}
}

// GradeStage computes the ACIS split bitmask.
func GradeStage() Stage {
	return Stage{
		Column: l4events.ColGrade,
		Name:   "AcisGrade",
		Func: func(cat *l4events.Catalog, _ Params) (l4events.Column, error) {
			return l4events.AcisGrade(cat)
		},
	}
}

// ASCAStage maps GRADE (or the column named by the "grade" parameter) to
// ASCA categories.
func ASCAStage() Stage {
	return Stage{
		Column: l4events.ColASCA,
		Name:   "AscaGrade",
		Func: func(cat *l4events.Catalog, p Params) (l4events.Column, error) {
			col, err := p.Text("grade", l4events.ColGrade)
			if err != nil {
				return l4events.Column{}, err
			}
			return l4events.AscaGrade(cat, col)
		},
	}
}

// HotPixelOccurrenceStage flags pixels firing more than n times. A nil n
// uses max(FRAMES/3, 3) from the catalog metadata.
func HotPixelOccurrenceStage(n *float64) Stage {
	s := Stage{
		Column: l4events.ColHotPix,
		Name:   "HotPixelByOccurrence",
		Func: func(cat *l4events.Catalog, p Params) (l4events.Column, error) {
			threshold, ok, err := p.Float("n")
			if err != nil {
				return l4events.Column{}, err
			}
			if !ok {
				threshold, err = l4events.DefaultOccurrenceThreshold(cat.Meta)
				if err != nil {
					return l4events.Column{}, err
				}
			}
			return l4events.HotPixelByOccurrence(cat, threshold)
		},
	}
	if n != nil {
		s.Params = Params{"n": *n}
	}
	return s
}

// HotPixelListStage flags events at the listed coordinates. source is only
// recorded in the history.
func HotPixelListStage(source string, x, y []int) Stage {
	xs := append([]int(nil), x...)
	ys := append([]int(nil), y...)
	s := Stage{
		Column: l4events.ColHotPix,
		Name:   "HotPixelFromList",
		Func: func(cat *l4events.Catalog, _ Params) (l4events.Column, error) {
			return l4events.HotPixelFromList(cat, xs, ys)
		},
	}
	if source != "" {
		s.Params = Params{"list": source}
	}
	return s
}

// OnEdgeStage flags events without a usable energy.
func OnEdgeStage() Stage {
	return Stage{
		Column: l4events.ColOnEdge,
		Name:   "OnEdge",
		Func: func(cat *l4events.Catalog, _ Params) (l4events.Column, error) {
			return l4events.OnEdge(cat)
		},
	}
}

// DefaultStages returns ENERGY, GRADE, ASCA, HOTPIX and ONEDGE in that
// order. A nil rng leaves the energy stage on the chain's random source.
func DefaultStages(rng *rand.Rand) []Stage {
	return []Stage{
		EnergyStage(rng),
		GradeStage(),
		ASCAStage(),
		HotPixelOccurrenceStage(nil),
		OnEdgeStage(),
	}
}
