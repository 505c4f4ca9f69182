package pipeline

import (
	"fmt"
	"math/rand"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l3peaks"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
	"github.com/banshee-data/xpolbeamline/internal/config"
	"github.com/banshee-data/xpolbeamline/internal/fsutil"
	"github.com/banshee-data/xpolbeamline/internal/timeutil"
)

// NewChainFromConfig builds a chain from an extraction config. Hot pixel
// lists named by the config are read through fsys. opts are applied after
// the config, so they take precedence.
func NewChainFromConfig(cfg *config.ExtractionConfig, source l1frames.Source, fsys fsutil.FileSystem, opts ...Option) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed, ok := cfg.GetSeed()
	if !ok {
		seed = timeutil.RealClock{}.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	hot := HotPixelOccurrenceStage(nil)
	if n, ok := cfg.GetHotPixThreshold(); ok {
		hot = HotPixelOccurrenceStage(&n)
	}
	if path := cfg.GetHotPixList(); path != "" {
		x, y, err := l4events.LoadHotPixelList(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("hot pixel list: %w", err)
		}
		hot = HotPixelListStage(path, x, y)
	}

	base := []Option{
		WithPeakParams(l3peaks.Params{
			SigmaClipLevel: cfg.GetSigmaClipLevel(),
			PeakSize:       cfg.GetPeakSize(),
		}),
		WithRand(rng),
		ReplaceStage(hot),
	}
	return NewChain(source, append(base, opts...)...), nil
}
