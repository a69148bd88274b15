package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"
)

// MAP returns a posterior mode estimate for the model as a flat vector,
// starting the search at x0. The estimate is what the ensemble sampler's
// walker ball is jittered around, so it only needs to land in a high-density
// region - Nelder-Mead is plenty and works for models without a gradient.
func (m *Model) MAP(x0 []float64) ([]float64, error) {
	if err := m.Check(); err != nil {
		return nil, errors.Wrapf(err, "Can not optimize invalid model %s", m.Name)
	}

	codec, err := NewModelCodec(m)
	if err != nil {
		return nil, err
	}
	if len(x0) != codec.Dim() {
		return nil, errors.Errorf("Start point has len %d, model dim is %d", len(x0), codec.Dim())
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p, err := codec.ToParams(x)
			if err != nil {
				return math.Inf(1)
			}
			lp := m.LogProb(p)
			if math.IsNaN(lp) {
				return math.Inf(1)
			}
			return -lp
		},
	}

	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, errors.Wrapf(err, "MAP optimization failed for model %s", m.Name)
	}
	if math.IsInf(result.F, 0) || math.IsNaN(result.F) {
		return nil, errors.Errorf("MAP optimization for %s ended at a zero-probability point", m.Name)
	}

	return result.X, nil
}
