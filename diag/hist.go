package diag

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Histogram is a fixed-range binned estimate of a marginal posterior built
// from a flat draw set. Values outside the range are clamped into the edge
// bins so that two histograms over a common range always account for the
// same number of draws.
type Histogram struct {
	Min    float64
	Max    float64
	Counts []float64
}

// NewHistogram bins the given samples over [min, max].
func NewHistogram(samples []float64, min, max float64, bins int) (*Histogram, error) {
	if len(samples) < 1 {
		return nil, errors.Errorf("No samples to histogram")
	}
	if bins < 1 {
		return nil, errors.Errorf("Invalid bin count %d", bins)
	}
	if max <= min {
		return nil, errors.Errorf("Invalid histogram range [%v, %v]", min, max)
	}

	h := &Histogram{
		Min:    min,
		Max:    max,
		Counts: make([]float64, bins),
	}

	width := (max - min) / float64(bins)
	for _, s := range samples {
		idx := int((s - min) / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		h.Counts[idx] += 1.0
	}

	return h, nil
}

// CommonRange returns the smallest range covering both sample sets.
func CommonRange(s1, s2 []float64) (min, max float64, err error) {
	if len(s1) < 1 || len(s2) < 1 {
		return 0, 0, errors.Errorf("Need samples from both sets for a common range")
	}

	min = floats.Min(s1)
	if m := floats.Min(s2); m < min {
		min = m
	}
	max = floats.Max(s1)
	if m := floats.Max(s2); m > max {
		max = m
	}

	if max <= min {
		// Degenerate (constant) samples still get a usable range
		max = min + 1e-9
	}

	return min, max, nil
}
