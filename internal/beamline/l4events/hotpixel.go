package l4events

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/fsutil"
)

// HotPixelExtName tags the header of a hot-pixel table.
const HotPixelExtName = "HOTPIX"

// MinOccurrenceThreshold is the smallest default occurrence threshold.
const MinOccurrenceThreshold = 3.0

// ErrCoordinateLength is returned for x and y lists of different lengths.
var ErrCoordinateLength = errors.New("x and y coordinates for hot pixels must have same number of entries")

type pixel struct{ x, y int }

// HotPixelFromList flags every event whose (X, Y) appears in the parallel
// lists x and y.
func HotPixelFromList(c *Catalog, x, y []int) (Column, error) {
	if len(x) != len(y) {
		return Column{}, fmt.Errorf("%w: %d x, %d y", ErrCoordinateLength, len(x), len(y))
	}
	hot := make(map[pixel]struct{}, len(x))
	for i := range x {
		hot[pixel{x[i], y[i]}] = struct{}{}
	}
	out := make([]bool, c.Len())
	for i := range out {
		_, out[i] = hot[pixel{c.X[i], c.Y[i]}]
	}
	return BoolColumn(out), nil
}

// DefaultOccurrenceThreshold returns max(FRAMES/3, 3) from the catalog
// metadata.
func DefaultOccurrenceThreshold(meta *l1frames.Header) (float64, error) {
	if meta == nil {
		return 0, fmt.Errorf("%w: %s", l1frames.ErrMissingKey, l1frames.KeyFrames)
	}
	frames, err := meta.Float(l1frames.KeyFrames)
	if err != nil {
		return 0, err
	}
	return math.Max(frames/3, MinOccurrenceThreshold), nil
}

// occurrences counts how often each (X, Y) pair appears in the catalog.
func occurrences(c *Catalog) map[pixel]int {
	counts := make(map[pixel]int)
	for i := range c.X {
		counts[pixel{c.X[i], c.Y[i]}]++
	}
	return counts
}

// HotPixelByOccurrence flags every event whose (X, Y) pair occurs strictly
// more than n times in the catalog.
func HotPixelByOccurrence(c *Catalog, n float64) (Column, error) {
	if math.IsNaN(n) {
		return Column{}, errors.New("hot pixel threshold is NaN")
	}
	counts := occurrences(c)
	out := make([]bool, c.Len())
	for i := range out {
		out[i] = float64(counts[pixel{c.X[i], c.Y[i]}]) > n
	}
	return BoolColumn(out), nil
}

// HotPixelTable is a list of hot pixel coordinates with the metadata of the
// run that produced it.
type HotPixelTable struct {
	X       []int
	Y       []int
	Meta    *l1frames.Header
	History []string
}

// Len returns the number of hot pixels.
func (t *HotPixelTable) Len() int { return len(t.X) }

// MakeHotPixelList returns every (X, Y) pair occurring more than n times,
// sorted by x then y. The table metadata and history are copies of the
// catalog's; the metadata is tagged with EXTNAME = HOTPIX.
func MakeHotPixelList(c *Catalog, n float64) *HotPixelTable {
	counts := occurrences(c)
	hot := make([]pixel, 0)
	for p, k := range counts {
		if float64(k) > n {
			hot = append(hot, p)
		}
	}
	sort.Slice(hot, func(i, j int) bool {
		if hot[i].x != hot[j].x {
			return hot[i].x < hot[j].x
		}
		return hot[i].y < hot[j].y
	})

	t := &HotPixelTable{
		X:       make([]int, len(hot)),
		Y:       make([]int, len(hot)),
		History: append([]string(nil), c.History...),
	}
	for i, p := range hot {
		t.X[i], t.Y[i] = p.x, p.y
	}
	if c.Meta != nil {
		t.Meta = c.Meta.Clone()
	} else {
		t.Meta = l1frames.NewHeader()
	}
	t.Meta.Set("EXTNAME", HotPixelExtName, "")
	t.Meta.Set("HPTHRESH", n, "occurrence threshold for hot pixels")
	return t
}

// HotPixelFromTable flags events at the coordinates of a previously
// produced hot pixel table.
func HotPixelFromTable(c *Catalog, t *HotPixelTable) (Column, error) {
	return HotPixelFromList(c, t.X, t.Y)
}

// ParseHotPixelList reads whitespace separated "x y" pairs, one per line.
// Blank lines and lines starting with '#' are skipped.
func ParseHotPixelList(data []byte) (x, y []int, err error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, nil, fmt.Errorf("line %d: want 2 fields, got %d", line, len(fields))
		}
		xv, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: x: %w", line, err)
		}
		yv, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: y: %w", line, err)
		}
		x = append(x, xv)
		y = append(y, yv)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// LoadHotPixelList reads a hot pixel text file through fsys.
func LoadHotPixelList(fsys fsutil.FileSystem, path string) (x, y []int, err error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read hot pixel list: %w", err)
	}
	x, y, err = ParseHotPixelList(data)
	if err != nil {
		return nil, nil, fmt.Errorf("hot pixel list %s: %w", path, err)
	}
	return x, y, nil
}
