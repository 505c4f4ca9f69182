package l4events

import (
	"testing"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotPixelFromList(t *testing.T) {
	c := catalogAt([3]int{0, 1, 1}, [3]int{0, 2, 2}, [3]int{1, 1, 1}, [3]int{1, 1, 2})
	col, err := HotPixelFromList(c, []int{1, 5}, []int{1, 5})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, false}, col.Bools)
	assert.Equal(t, 4, c.Len())
}

func TestHotPixelFromList_LengthMismatch(t *testing.T) {
	c := catalogAt([3]int{0, 1, 1})
	_, err := HotPixelFromList(c, []int{1, 2}, []int{1})
	assert.ErrorIs(t, err, ErrCoordinateLength)
}

// occurrenceCatalog puts (3,3) in k frames plus one unrelated event per frame.
func occurrenceCatalog(k int) *Catalog {
	var triples [][3]int
	for f := 0; f < k; f++ {
		triples = append(triples, [3]int{f, 3, 3}, [3]int{f, f + 10, 7})
	}
	return catalogAt(triples...)
}

func TestHotPixelByOccurrence_StrictBoundary(t *testing.T) {
	const k = 5
	c := occurrenceCatalog(k)

	col, err := HotPixelByOccurrence(c, k-1)
	require.NoError(t, err)
	for i := range col.Bools {
		assert.Equal(t, c.X[i] == 3 && c.Y[i] == 3, col.Bools[i], "row %d", i)
	}

	col, err = HotPixelByOccurrence(c, k)
	require.NoError(t, err)
	for i, hot := range col.Bools {
		assert.False(t, hot, "row %d", i)
	}
}

func TestHotPixelTableMatchesFlags(t *testing.T) {
	c := catalogAt(
		[3]int{0, 3, 3}, [3]int{1, 3, 3}, [3]int{2, 3, 3},
		[3]int{0, 1, 9}, [3]int{1, 1, 9},
		[3]int{0, 5, 5},
	)
	for _, n := range []float64{0, 1, 1.5, 2, 3} {
		col, err := HotPixelByOccurrence(c, n)
		require.NoError(t, err)
		table := MakeHotPixelList(c, n)

		flagged := map[pixel]bool{}
		for i, hot := range col.Bools {
			if hot {
				flagged[pixel{c.X[i], c.Y[i]}] = true
			}
		}
		listed := map[pixel]bool{}
		for i := range table.X {
			listed[pixel{table.X[i], table.Y[i]}] = true
		}
		assert.Equal(t, flagged, listed, "n=%v", n)
	}
}

func TestMakeHotPixelList_SortedWithMeta(t *testing.T) {
	c := catalogAt([3]int{0, 5, 1}, [3]int{1, 5, 1}, [3]int{0, 2, 8}, [3]int{1, 2, 8}, [3]int{0, 2, 3}, [3]int{1, 2, 3})
	c.Meta.Set("EXTNAME", "EVENTS", "")
	c.Meta.Set("RUN", "r1", "")
	c.AddHistory("GRADE made by AcisGrade")

	table := MakeHotPixelList(c, 1)
	assert.Equal(t, []int{2, 2, 5}, table.X)
	assert.Equal(t, []int{3, 8, 1}, table.Y)
	assert.Equal(t, 3, table.Len())

	ext, _ := table.Meta.Text("EXTNAME")
	assert.Equal(t, HotPixelExtName, ext)
	run, _ := table.Meta.Text("RUN")
	assert.Equal(t, "r1", run)
	// The catalog's own metadata is untouched.
	ext, _ = c.Meta.Text("EXTNAME")
	assert.Equal(t, "EVENTS", ext)
	assert.Equal(t, []string{"GRADE made by AcisGrade"}, table.History)
	c.AddHistory("HOTPIX made by HotPixelByOccurrence")
	assert.Len(t, table.History, 1)

	col, err := HotPixelFromTable(c, table)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, true, true, true}, col.Bools)
}

func TestDefaultOccurrenceThreshold(t *testing.T) {
	h := l1frames.NewHeader()
	_, err := DefaultOccurrenceThreshold(h)
	assert.ErrorIs(t, err, l1frames.ErrMissingKey)

	h.Set(l1frames.KeyFrames, 3, "")
	n, err := DefaultOccurrenceThreshold(h)
	require.NoError(t, err)
	assert.Equal(t, 3.0, n)

	h.Set(l1frames.KeyFrames, 30, "")
	n, err = DefaultOccurrenceThreshold(h)
	require.NoError(t, err)
	assert.Equal(t, 10.0, n)

	h.Set(l1frames.KeyFrames, 10, "")
	n, err = DefaultOccurrenceThreshold(h)
	require.NoError(t, err)
	assert.InDelta(t, 10.0/3, n, 1e-12)
}

func TestParseHotPixelList(t *testing.T) {
	x, y, err := ParseHotPixelList([]byte("# hot pixels\n12 40\n\n  3 7  \n"))
	require.NoError(t, err)
	assert.Equal(t, []int{12, 3}, x)
	assert.Equal(t, []int{40, 7}, y)

	_, _, err = ParseHotPixelList([]byte("1 2 3\n"))
	assert.Error(t, err)
	_, _, err = ParseHotPixelList([]byte("a 2\n"))
	assert.Error(t, err)
}

func TestLoadHotPixelList(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("hot.txt", []byte("4 4\n"), 0644))

	x, y, err := LoadHotPixelList(fsys, "hot.txt")
	require.NoError(t, err)
	assert.Equal(t, []int{4}, x)
	assert.Equal(t, []int{4}, y)

	_, _, err = LoadHotPixelList(fsys, "missing.txt")
	assert.Error(t, err)
}
