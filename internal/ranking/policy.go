package ranking

import (
	"runtime"

	"treasurepicker/internal/imaging"
)

// Policy centralizes the ranking thresholds and execution knobs.
type Policy struct {
	// Threshold is the minimum best score for a reliable verdict.
	Threshold float64
	// DeltaSecond is the largest best/runner-up gap reported as ambiguous.
	DeltaSecond float64
	// Workers bounds concurrent resize-and-score passes.
	Workers int
	// Interpolation is the filter used to bring candidates to the query size.
	Interpolation imaging.Interpolation
}

// DefaultPolicy returns the stock thresholds: 0.65 for reliability and 0.03
// for the near-tie window.
func DefaultPolicy() Policy {
	return Policy{
		Threshold:     0.65,
		DeltaSecond:   0.03,
		Workers:       runtime.NumCPU(),
		Interpolation: imaging.InterpolationArea,
	}
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if p.Threshold < -1 || p.Threshold > 1 {
		p.Threshold = d.Threshold
	}
	if p.DeltaSecond < 0 {
		p.DeltaSecond = d.DeltaSecond
	}
	if p.Workers <= 0 {
		p.Workers = d.Workers
	}
	if p.Interpolation == "" {
		p.Interpolation = d.Interpolation
	}
	return p
}
