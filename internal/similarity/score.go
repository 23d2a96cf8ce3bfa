package similarity

import (
	"errors"
	"fmt"
	"math"

	"treasurepicker/internal/imaging"
)

// ErrSizeMismatch is returned when the buffers are unusable or differ in size.
var ErrSizeMismatch = errors.New("buffers must be non-empty and equally sized")

// Score returns the normalized cross-correlation coefficient between
// reference and candidate. A buffer with zero variance scores exactly 0: a
// flat image carries no pattern to correlate against.
func Score(reference, candidate *imaging.Gray) (float64, error) {
	if err := reference.Validate(); err != nil {
		return 0, fmt.Errorf("reference: %w: %w", ErrSizeMismatch, err)
	}
	if err := candidate.Validate(); err != nil {
		return 0, fmt.Errorf("candidate: %w: %w", ErrSizeMismatch, err)
	}
	if !reference.SameSize(candidate) {
		return 0, fmt.Errorf("%w: reference %dx%d, candidate %dx%d",
			ErrSizeMismatch, reference.Width, reference.Height, candidate.Width, candidate.Height)
	}
	return correlate(reference.Pix, candidate.Pix), nil
}

// minVariance is the per-sample variance below which a buffer counts as flat.
// It absorbs the rounding residue left when a uniform image is resampled.
const minVariance = 1e-9

func correlate(a, b []float64) float64 {
	if flat(a) || flat(b) {
		return 0
	}
	n := float64(len(a))
	var sumA, sumB float64
	for i := range a {
		sumA += a[i]
		sumB += b[i]
	}
	meanA := sumA / n
	meanB := sumB / n

	var cross, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cross += da * db
		varA += da * da
		varB += db * db
	}
	if varA <= n*minVariance || varB <= n*minVariance {
		return 0
	}
	denom := math.Sqrt(varA) * math.Sqrt(varB)
	if denom == 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return 0
	}
	r := cross / denom
	switch {
	case math.IsNaN(r):
		return 0
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}

// flat reports whether every sample equals the first. Checked exactly so
// rounding in the mean cannot turn a uniform image into a tiny, meaningless
// variance.
func flat(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
