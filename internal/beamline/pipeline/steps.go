package pipeline

import (
	"github.com/banshee-data/xpolbeamline/internal/beamline"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l1frames"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l2background"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l3peaks"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
)

// BackgroundRemover returns a cleaned copy of the raw stack. The raw stack
// must not be modified.
type BackgroundRemover struct {
	Name string
	Func func(raw *l1frames.Stack) (*l1frames.Stack, error)
}

// EventIdentifier finds candidate events in the cleaned stack, ordered by
// frame, x, y.
type EventIdentifier struct {
	Name string
	Func func(clean *l1frames.Stack, p l3peaks.Params) ([]l3peaks.Candidate, error)
}

// IslandExtractor fills the island columns of cat from the cleaned stack.
type IslandExtractor struct {
	Name string
	Func func(cat *l4events.Catalog, clean *l1frames.Stack) error
}

// MedianBackground subtracts the per-row median of each frame.
func MedianBackground() BackgroundRemover {
	return BackgroundRemover{
		Name: "MedianColumnRemover",
		Func: func(raw *l1frames.Stack) (*l1frames.Stack, error) {
			return l2background.MedianColumnRemover(raw), nil
		},
	}
}

// SigmaClipIdentifier keeps local maxima above the sigma-clipped upper
// bound.
func SigmaClipIdentifier() EventIdentifier {
	return EventIdentifier{
		Name: "IdentifySigmaClip",
		Func: func(clean *l1frames.Stack, p l3peaks.Params) ([]l3peaks.Candidate, error) {
			cands, clip, err := l3peaks.IdentifySigmaClip(clean, p)
			if err != nil {
				return nil, err
			}
			beamline.Diagf("sigma clip: threshold=%.4g mean=%.4g std=%.4g iterations=%d",
				clip.Upper, clip.Mean, clip.Std, clip.Iterations)
			return cands, nil
		},
	}
}

// Islands5533 cuts 5×5 islands and their centered 3×3.
func Islands5533() IslandExtractor {
	return IslandExtractor{
		Name: "AddIslands5533",
		Func: l4events.AddIslands5533,
	}
}
