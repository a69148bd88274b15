package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/probsamp/linemc/model"
	grand "github.com/probsamp/linemc/rand"
)

// gaussModel is a 2-d standard normal target (the priors are the whole
// posterior) with one derived quantity so blob handling gets exercised.
func gaussModel(t *testing.T, gen *grand.Generator) *model.Model {
	prior := distuv.Normal{Mu: 0.0, Sigma: 1.0, Src: gen}

	a, err := model.NewVariable("a", nil, prior)
	assert.NoError(t, err)
	b, err := model.NewVariable("b", nil, prior)
	assert.NoError(t, err)

	mod := &model.Model{
		Name:    "gauss",
		Vars:    []*model.Variable{a, b},
		Derived: []*model.Deterministic{{Name: "sum", Size: 1}},
	}

	mod.LogProb = func(p model.Params) float64 {
		return prior.LogProb(p["a"][0]) + prior.LogProb(p["b"][0])
	}
	mod.DerVals = func(p model.Params) []float64 {
		return []float64{p["a"][0] + p["b"][0]}
	}
	mod.Grad = func(x []float64, grad []float64) float64 {
		if len(x) != 2 {
			return math.Inf(-1)
		}
		grad[0] = -x[0]
		grad[1] = -x[1]
		return prior.LogProb(x[0]) + prior.LogProb(x[1])
	}

	assert.NoError(t, mod.Check())
	return mod
}

func TestNewHMCValidation(t *testing.T) {
	assert := assert.New(t)

	gen, err := grand.NewGenerator(1)
	assert.NoError(err)
	mod := gaussModel(t, gen)

	_, err = NewHMC(nil, mod, 0.9)
	assert.Error(err)
	_, err = NewHMC(gen, nil, 0.9)
	assert.Error(err)
	_, err = NewHMC(gen, mod, 0.0)
	assert.Error(err)
	_, err = NewHMC(gen, mod, 1.0)
	assert.Error(err)

	noGrad := &model.Model{
		Name:    mod.Name,
		Vars:    mod.Vars,
		Derived: mod.Derived,
		LogProb: mod.LogProb,
		DerVals: mod.DerVals,
	}
	_, err = NewHMC(gen, noGrad, 0.9)
	assert.Error(err)
}

func TestHMCRunValidation(t *testing.T) {
	assert := assert.New(t)

	gen, err := grand.NewGenerator(1)
	assert.NoError(err)
	h, err := NewHMC(gen, gaussModel(t, gen), 0.9)
	assert.NoError(err)

	_, err = h.Run(nil, 10, 10)
	assert.Error(err)
	_, err = h.Run([][]float64{{0, 0}}, -1, 10)
	assert.Error(err)
	_, err = h.Run([][]float64{{0, 0}}, 10, 0)
	assert.Error(err)
	_, err = h.Run([][]float64{{0, 0, 0}}, 10, 10)
	assert.Error(err)
}

func TestHMCGaussian(t *testing.T) {
	assert := assert.New(t)

	gen, err := grand.NewGenerator(42)
	assert.NoError(err)
	mod := gaussModel(t, gen)

	h, err := NewHMC(gen, mod, 0.9)
	assert.NoError(err)

	start := [][]float64{{0.5, -0.5}, {-0.5, 0.5}}
	trace, err := h.Run(start, 500, 2000)
	assert.NoError(err)
	assert.Equal(2, trace.Chains)
	assert.Equal(2000, trace.Draws())

	for _, name := range []string{"a", "b"} {
		mean, err := trace.Mean(name)
		assert.NoError(err)
		sd, err := trace.StdDev(name)
		assert.NoError(err)
		assert.InDelta(0.0, mean, 0.15, "mean of %s", name)
		assert.InDelta(1.0, sd, 0.15, "stddev of %s", name)
	}

	// Blob consistency: the derived sum must track the variables
	for c := 0; c < 2; c++ {
		as, err := trace.Series("a", c)
		assert.NoError(err)
		bs, err := trace.Series("b", c)
		assert.NoError(err)
		sums, err := trace.Series("sum", c)
		assert.NoError(err)
		for i := range sums {
			assert.InDelta(as[i]+bs[i], sums[i], 1e-12)
		}
	}

	assert.True(h.AcceptRate() > 0.5, "acceptance %v", h.AcceptRate())
	assert.True(h.StepSize() > 0.0)
}

func TestHMCZeroProbStart(t *testing.T) {
	assert := assert.New(t)

	gen, err := grand.NewGenerator(1)
	assert.NoError(err)
	h, err := NewHMC(gen, gaussModel(t, gen), 0.9)
	assert.NoError(err)

	_, err = h.Run([][]float64{{math.NaN(), 0}}, 10, 10)
	assert.Error(err)
}
