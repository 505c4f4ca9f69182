package pipeline

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/banshee-data/xpolbeamline/internal/beamline"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l3peaks"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
	"github.com/banshee-data/xpolbeamline/internal/beamline/wcs"
	"github.com/banshee-data/xpolbeamline/internal/timeutil"
	"github.com/banshee-data/xpolbeamline/internal/version"
)

// State is a step of an extraction run.
type State int

const (
	StateIdle State = iota
	StateLoaded
	StateBackgroundSubtracted
	StatePeaksIdentified
	StateMetadataAttached
	StateCoordinatesCorrected
	StateIslandsExtracted
	StateColumnsComputed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StateBackgroundSubtracted:
		return "background-subtracted"
	case StatePeaksIdentified:
		return "peaks-identified"
	case StateMetadataAttached:
		return "metadata-attached"
	case StateCoordinatesCorrected:
		return "coordinates-corrected"
	case StateIslandsExtracted:
		return "islands-extracted"
	case StateColumnsComputed:
		return "columns-computed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Metadata values stamped on every event catalog.
const (
	EventsExtName = "EVENTS"
	dateLayout    = "2006-01-02T15:04:05.000"
)

// StageError reports the step that failed. State is the state the run was
// trying to reach; Stage names the derived column for column stages.
type StageError struct {
	State State
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("pipeline %s (%s): %v", e.State, e.Stage, e.Err)
	}
	return fmt.Sprintf("pipeline %s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Chain runs the extraction steps over stacks provided by a frame source.
// A Chain is not safe for concurrent use.
type Chain struct {
	source     l1frames.Source
	clock      timeutil.Clock
	rng        *rand.Rand
	peaks      l3peaks.Params
	background BackgroundRemover
	identifier EventIdentifier
	islands    IslandExtractor
	stages     []Stage
	state      State
}

// Option configures a Chain.
type Option func(*Chain)

// WithClock sets the clock used for the DATE card and run timing.
func WithClock(c timeutil.Clock) Option {
	return func(ch *Chain) { ch.clock = c }
}

// WithRand sets the chain's random source. Stages built with a nil rng draw
// from it when they run; stages bound to their own source keep it.
func WithRand(r *rand.Rand) Option {
	return func(ch *Chain) { ch.rng = r }
}

// WithPeakParams sets the sigma clip level and peak filter size.
func WithPeakParams(p l3peaks.Params) Option {
	return func(ch *Chain) { ch.peaks = p }
}

// WithBackgroundRemover replaces the median background subtraction.
func WithBackgroundRemover(b BackgroundRemover) Option {
	return func(ch *Chain) { ch.background = b }
}

// WithIdentifier replaces the sigma-clip event identification.
func WithIdentifier(id EventIdentifier) Option {
	return func(ch *Chain) { ch.identifier = id }
}

// WithIslandExtractor replaces the 5×5/3×3 island extraction.
func WithIslandExtractor(x IslandExtractor) Option {
	return func(ch *Chain) { ch.islands = x }
}

// WithStages replaces the whole derived-column stage list.
func WithStages(stages ...Stage) Option {
	return func(ch *Chain) {
		ch.stages = append([]Stage(nil), stages...)
	}
}

// ReplaceStage swaps the stage producing s.Column for s, keeping its
// position. A stage for a new column is appended.
func ReplaceStage(s Stage) Option {
	return func(ch *Chain) {
		for i := range ch.stages {
			if ch.stages[i].Column == s.Column {
				ch.stages[i] = s
				return
			}
		}
		ch.stages = append(ch.stages, s)
	}
}

// NewChain returns a chain reading from source with the default peak
// parameters and stage list.
func NewChain(source l1frames.Source, opts ...Option) *Chain {
	clock := timeutil.Clock(timeutil.RealClock{})
	rng := rand.New(rand.NewSource(clock.Now().UnixNano()))
	ch := &Chain{
		source:     source,
		clock:      clock,
		rng:        rng,
		peaks:      l3peaks.DefaultParams(),
		background: MedianBackground(),
		identifier: SigmaClipIdentifier(),
		islands:    Islands5533(),
		stages:     DefaultStages(nil),
	}
	for _, opt := range opts {
		opt(ch)
	}
	return ch
}

// State returns the state reached by the last run.
func (ch *Chain) State() State { return ch.state }

// Stages returns a copy of the derived-column stage list.
func (ch *Chain) Stages() []Stage {
	return append([]Stage(nil), ch.stages...)
}

func (ch *Chain) fail(state State, stage string, err error) error {
	ch.state = StateFailed
	beamline.Opsf("run failed at %s: %v", state, err)
	return &StageError{State: state, Stage: stage, Err: err}
}

// Process runs every step on the stack stored at path and returns the
// finished event catalog.
func (ch *Chain) Process(path string) (*l4events.Catalog, error) {
	ch.state = StateIdle
	start := ch.clock.Now()
	if ch.source == nil {
		return nil, ch.fail(StateLoaded, "", errors.New("no frame source configured"))
	}
	if err := ch.peaks.Validate(); err != nil {
		return nil, ch.fail(StatePeaksIdentified, "", err)
	}
	if ch.background.Func == nil {
		return nil, ch.fail(StateBackgroundSubtracted, "", errors.New("no background remover configured"))
	}
	if ch.identifier.Func == nil {
		return nil, ch.fail(StatePeaksIdentified, "", errors.New("no event identifier configured"))
	}
	if ch.islands.Func == nil {
		return nil, ch.fail(StateIslandsExtracted, "", errors.New("no island extractor configured"))
	}

	raw, hdr, err := ch.source.Load(path)
	if err != nil {
		return nil, ch.fail(StateLoaded, "", err)
	}
	if err := raw.Validate(); err != nil {
		return nil, ch.fail(StateLoaded, "", err)
	}
	if err := hdr.Require(l1frames.RequiredKeys...); err != nil {
		return nil, ch.fail(StateLoaded, "", err)
	}
	ch.state = StateLoaded
	nx, ny := raw.Dims()
	beamline.Opsf("loaded %s: %d frames of %dx%d", path, raw.Len(), nx, ny)

	clean, err := ch.background.Func(raw)
	if err != nil {
		return nil, ch.fail(StateBackgroundSubtracted, ch.background.Name, err)
	}
	if clean == nil || clean == raw {
		return nil, ch.fail(StateBackgroundSubtracted, ch.background.Name, errors.New("background remover must return a new stack"))
	}
	ch.state = StateBackgroundSubtracted

	cands, err := ch.identifier.Func(clean, ch.peaks)
	if err != nil {
		return nil, ch.fail(StatePeaksIdentified, ch.identifier.Name, err)
	}
	cat := l4events.NewCatalog(cands)
	ch.state = StatePeaksIdentified
	beamline.Diagf("%s identified %d events", ch.identifier.Name, cat.Len())

	if err := ch.attachMetadata(cat, hdr); err != nil {
		return nil, ch.fail(StateMetadataAttached, "", err)
	}
	ch.state = StateMetadataAttached

	if err := correctROI(cat); err != nil {
		return nil, ch.fail(StateCoordinatesCorrected, "", err)
	}
	ch.state = StateCoordinatesCorrected

	if err := ch.islands.Func(cat, clean); err != nil {
		return nil, ch.fail(StateIslandsExtracted, ch.islands.Name, err)
	}
	ch.state = StateIslandsExtracted

	for _, s := range ch.stages {
		fn := s.run(ch.rng)
		if fn == nil {
			return nil, ch.fail(StateColumnsComputed, s.Column, errors.New("stage has no function"))
		}
		entry := s.historyEntry()
		cat.AddHistory(entry)
		col, err := fn(cat, s.Params)
		if err != nil {
			return nil, ch.fail(StateColumnsComputed, s.Column, err)
		}
		if err := cat.SetColumn(s.Column, col); err != nil {
			return nil, ch.fail(StateColumnsComputed, s.Column, err)
		}
		beamline.Diagf("%s", entry)
		if beamline.TraceEnabled() {
			for i := 0; i < cat.Len(); i++ {
				beamline.Tracef("%s row %d: %s", s.Column, i, formatCell(col, i))
			}
		}
	}
	ch.state = StateColumnsComputed
	beamline.Opsf("processed %s: %d events in %v", path, cat.Len(), ch.clock.Since(start))
	return cat, nil
}

// attachMetadata copies the frame header onto the catalog, stamps the
// product cards, records the fixed steps and converts the WCS keywords.
func (ch *Chain) attachMetadata(cat *l4events.Catalog, hdr *l1frames.Header) error {
	cat.Meta = hdr.Clone()
	cat.Meta.Set("EXTNAME", EventsExtName, "name of this binary table extension")
	cat.Meta.Set("CREATOR", version.Creator(), "software that created this file")
	cat.Meta.Set("DATE", ch.clock.Now().UTC().Format(dateLayout), "file creation date (UTC)")
	cat.Meta.Set("RUNID", uuid.NewString(), "extraction run identifier")

	cat.AddHistory("image fitted: " + ch.background.Name)
	cat.AddHistory("evt identify: " + ch.identifier.Name)
	cat.AddHistory("event islands extracted: " + ch.islands.Name)

	// X and Y are the first two table columns.
	if err := wcs.Translate(cat.Meta, 1, 2); err != nil {
		return err
	}
	times, err := wcs.TimeFromHeader(cat.Meta, cat.Frame)
	if err != nil {
		return err
	}
	return cat.SetColumn(l4events.ColTime, l4events.FloatColumn(times, wcs.TimeUnit))
}

// correctROI shifts X and Y from window-local to detector coordinates.
func correctROI(cat *l4events.Catalog) error {
	x0, err := cat.Meta.Int(l1frames.KeyROIX0)
	if err != nil {
		return err
	}
	y0, err := cat.Meta.Int(l1frames.KeyROIY0)
	if err != nil {
		return err
	}
	cat.OffsetCoordinates(int(x0-1), int(y0-1))
	return nil
}

func formatCell(col l4events.Column, i int) string {
	switch col.Kind {
	case l4events.KindFloat:
		if !col.IsValid(i) {
			return "invalid"
		}
		return fmt.Sprintf("%g", col.Floats[i])
	case l4events.KindInt:
		return fmt.Sprintf("%d", col.Ints[i])
	case l4events.KindBool:
		return fmt.Sprintf("%t", col.Bools[i])
	}
	return ""
}
