package sampler

import (
	"github.com/pkg/errors"

	grand "github.com/probsamp/linemc/rand"
)

// A Sampler runs a fixed-length MCMC scheme against a model posterior. Runs
// block until the configured iteration count completes - there is no early
// stopping or convergence detection anywhere in this package.
type Sampler interface {
	// AcceptRate is the whole-run fraction of accepted proposals
	AcceptRate() float64
	// WindowAcceptRate is the rolling acceptance rate over a recent window
	WindowAcceptRate() float64
}

// Progress is an optional per-iteration callback (monitoring hook). It is
// called synchronously from the sampling loop, so keep it cheap.
type Progress func(iteration int)

// Size of the rolling acceptance window both samplers report
const acceptWindow = 256

// WalkerBall replicates one reference point (ideally a high-density point
// such as a mode estimate) with small independent Gaussian perturbations per
// walker per dimension.
func WalkerBall(gen *grand.Generator, center []float64, scale float64, count int) ([][]float64, error) {
	if gen == nil {
		return nil, errors.Errorf("No random generator supplied")
	}
	if len(center) < 1 {
		return nil, errors.Errorf("Walker ball needs a non-empty center")
	}
	if count < 1 {
		return nil, errors.Errorf("Invalid walker count %d", count)
	}
	if scale <= 0.0 {
		return nil, errors.Errorf("Invalid jitter scale %v", scale)
	}

	ball := make([][]float64, count)
	for w := range ball {
		pos := make([]float64, len(center))
		for i, c := range center {
			pos[i] = c + scale*gen.NormFloat64()
		}
		ball[w] = pos
	}

	return ball, nil
}
