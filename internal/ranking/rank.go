package ranking

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"treasurepicker/internal/imaging"
	"treasurepicker/internal/similarity"
)

// Candidate is a gallery entry ready to be scored.
type Candidate struct {
	ID    string
	Image *imaging.Gray
}

// Rank scores query against every candidate and classifies the result.
//
// Candidates are processed in identifier order and each result lands in the
// slot of its index, so the verdict is identical for any permutation of the
// gallery. The first failing candidate (in identifier order) aborts the pass
// with a *CandidateError naming it.
func Rank(ctx context.Context, query *imaging.Gray, gallery []Candidate, policy Policy) (Verdict, error) {
	if query == nil || query.Validate() != nil {
		return Verdict{}, ErrQueryMissing
	}
	if len(gallery) == 0 {
		return Verdict{}, ErrEmptyGallery
	}
	policy = policy.normalized()

	ordered := slices.Clone(gallery)
	slices.SortStableFunc(ordered, func(a, b Candidate) int {
		return cmp.Compare(a.ID, b.ID)
	})

	scores := make([]Score, len(ordered))
	errs := make([]error, len(ordered))

	workers := min(policy.Workers, len(ordered))
	indexes := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for i := range indexes {
				c := ordered[i]
				s, err := scoreCandidate(query, c, policy.Interpolation)
				scores[i] = Score{ID: c.ID, Score: s}
				errs[i] = err
			}
		})
	}

feed:
	for i := range ordered {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Verdict{}, fmt.Errorf("rank candidates: %w", err)
	}
	for i, err := range errs {
		if err != nil {
			return Verdict{}, &CandidateError{ID: ordered[i].ID, Err: err}
		}
	}

	slices.SortStableFunc(scores, func(a, b Score) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return Classify(scores, policy)
}

var errCandidateImage = errors.New("candidate image is missing")

func scoreCandidate(query *imaging.Gray, c Candidate, method imaging.Interpolation) (float64, error) {
	if c.Image == nil {
		return 0, errCandidateImage
	}
	resized, err := imaging.ResizeTo(query, c.Image, method)
	if err != nil {
		return 0, fmt.Errorf("resize: %w", err)
	}
	return similarity.Score(query, resized)
}
