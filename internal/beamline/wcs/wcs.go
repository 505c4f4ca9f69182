// Package wcs converts image world-coordinate-system header keywords to the
// event-table convention and derives the TIME column from frame numbers.
package wcs

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/units"
)

// TimeUnit is the unit of the TIME column.
const TimeUnit = units.Second

// altLetters are the alternate WCS suffixes, primary system first.
var altLetters = func() []string {
	out := []string{""}
	for c := 'a'; c <= 'z'; c++ {
		out = append(out, string(c))
	}
	for c := 'A'; c <= 'Z'; c++ {
		out = append(out, string(c))
	}
	return out
}()

// keyword pairs: image keyword root -> table keyword root.
var keywordMap = []struct{ image, table string }{
	{"CRVAL", "TCRVL"},
	{"CRPIX", "TCRPX"},
	{"CDELT", "TCDLT"},
	{"CUNIT", "TCUNI"},
	{"CTYPE", "TCTYP"},
}

// Translate rewrites image WCS keywords in meta to their event-table form.
// xCol and yCol are the 1-based table column numbers that image axes 1 and 2
// map to. Axis 3 keywords are removed without replacement. Only the
// keywords used at this beamline are handled; unknown WCS keywords are left
// alone.
func Translate(meta *l1frames.Header, xCol, yCol int) error {
	for _, a := range altLetters {
		nameCard, ok := meta.Pop("WCSNAME" + a)
		if !ok {
			continue
		}
		for _, col := range []int{xCol, yCol} {
			c := nameCard
			c.Key = fmt.Sprintf("TWCS%d%s", col, a)
			meta.SetCard(c)
		}
		if _, ok := meta.Pop("WCSAXES" + a); !ok {
			return fmt.Errorf("wcs %q: %w: WCSAXES%s", a, l1frames.ErrMissingKey, a)
		}
		for _, kw := range keywordMap {
			root := kw.table
			// Alternate systems keep table keywords within 8 characters.
			if a != "" {
				root = root[:len(root)-1]
			}
			for axis, col := range []int{xCol, yCol, 0} {
				key := fmt.Sprintf("%s%d%s", kw.image, axis+1, a)
				c, ok := meta.Pop(key)
				if !ok {
					return fmt.Errorf("wcs %q: %w: %s", a, l1frames.ErrMissingKey, key)
				}
				if col == 0 {
					continue
				}
				c.Key = fmt.Sprintf("%s%d%s", root, col, a)
				meta.SetCard(c)
			}
		}
	}
	return nil
}

// TimeColumn returns (frame + throwout) × frametim for each frame. The
// exposure time is taken at its shortest decimal representation, as written
// in the header, so the product is the float nearest the decimal result.
func TimeColumn(frames []int, throwout int64, frametim float64) []float64 {
	out := make([]float64, len(frames))
	step, ok := new(big.Rat).SetString(strconv.FormatFloat(frametim, 'g', -1, 64))
	for i, f := range frames {
		n := int64(f) + throwout
		if !ok {
			out[i] = float64(n) * frametim
			continue
		}
		t := new(big.Rat).SetInt64(n)
		out[i], _ = t.Mul(t, step).Float64()
	}
	return out
}

// TimeFromHeader computes the TIME column from the THROWOUT and FRAMETIM
// header keys.
func TimeFromHeader(meta *l1frames.Header, frames []int) ([]float64, error) {
	throwout, err := meta.Int(l1frames.KeyThrowout)
	if err != nil {
		return nil, err
	}
	frametim, err := meta.Float(l1frames.KeyFrameTime)
	if err != nil {
		return nil, err
	}
	return TimeColumn(frames, throwout, frametim), nil
}
