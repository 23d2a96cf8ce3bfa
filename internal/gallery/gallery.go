package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"treasurepicker/internal/imaging"
	"treasurepicker/internal/logging"
	"treasurepicker/internal/pairing"
	"treasurepicker/internal/ranking"
)

// Loader produces the grayscale buffer for an image file.
type Loader interface {
	Load(ctx context.Context, path string) (*imaging.Gray, error)
}

// DiskLoader decodes straight from disk with no caching.
type DiskLoader struct{}

// Load decodes the file at path.
func (DiskLoader) Load(_ context.Context, path string) (*imaging.Gray, error) {
	return imaging.DecodeFile(path)
}

// Options configures Build.
type Options struct {
	// Loader defaults to DiskLoader.
	Loader Loader
	Logger *slog.Logger
}

// Failure records a candidate excluded from the gallery.
type Failure struct {
	ID  string
	Err error
}

// Gallery is the decoded candidate set of one inventory.
type Gallery struct {
	Candidates []ranking.Candidate
	Failures   []Failure
	pairs      map[string]pairing.Pair
}

// PairFor returns the pair whose localisation file is id.
func (g Gallery) PairFor(id string) (pairing.Pair, bool) {
	p, ok := g.pairs[id]
	return p, ok
}

// Len returns the number of usable candidates.
func (g Gallery) Len() int {
	return len(g.Candidates)
}

// Build decodes the localisation file of every pair in inv from
// localisationDir. Only decode failures are tolerated; cancellation and other
// errors abort the build. A localisation file is loaded once even if several
// pairs name it, so candidate IDs are unique.
func Build(ctx context.Context, inv pairing.Inventory, localisationDir string, opts Options) (Gallery, error) {
	loader := opts.Loader
	if loader == nil {
		loader = DiskLoader{}
	}
	logger := logging.NewComponentLogger(opts.Logger, "gallery")

	g := Gallery{
		Candidates: make([]ranking.Candidate, 0, len(inv.Pairs)),
		pairs:      make(map[string]pairing.Pair, len(inv.Pairs)),
	}
	seen := make(map[string]struct{}, len(inv.Pairs))
	for _, pair := range inv.Pairs {
		if err := ctx.Err(); err != nil {
			return Gallery{}, fmt.Errorf("build gallery: %w", err)
		}

		id := pair.LocalisationFile
		if _, dup := seen[id]; dup {
			logger.Debug("duplicate localisation skipped", logging.String(logging.FieldCandidate, id))
			continue
		}
		seen[id] = struct{}{}
		gray, err := loader.Load(ctx, filepath.Join(localisationDir, id))
		if err != nil {
			var decodeErr *imaging.DecodeError
			if !errors.As(err, &decodeErr) {
				return Gallery{}, fmt.Errorf("load %s: %w", id, err)
			}
			g.Failures = append(g.Failures, Failure{ID: id, Err: err})
			logging.WarnWithContext(logger, "candidate excluded", "candidate_decode_failed",
				logging.String(logging.FieldCandidate, id),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "re-export the localisation image"),
				logging.String(logging.FieldImpact, "candidate will not be ranked"),
			)
			continue
		}
		g.Candidates = append(g.Candidates, ranking.Candidate{ID: id, Image: gray})
		g.pairs[id] = pair
	}

	logger.Debug("gallery built",
		logging.Int("candidates", len(g.Candidates)),
		logging.Int("excluded", len(g.Failures)),
	)
	return g, nil
}
