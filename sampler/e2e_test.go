package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probsamp/linemc/diag"
	"github.com/probsamp/linemc/model"
	grand "github.com/probsamp/linemc/rand"
)

// True parameters shared by the end to end scenarios
const (
	trueSlope     = 0.5
	trueIntercept = -2.3
	trueLogS      = -0.23
)

func lineSetup(t *testing.T, seed int64) (*model.Model, []float64, *grand.Generator) {
	gen, err := grand.NewGenerator(seed)
	assert.NoError(t, err)

	data, err := model.SyntheticDataset(gen, 50, trueSlope, trueIntercept, trueLogS)
	assert.NoError(t, err)

	mod, err := model.LineFit(data, gen)
	assert.NoError(t, err)

	mode, err := mod.MAP([]float64{0, 0, 0})
	assert.NoError(t, err)

	return mod, mode, gen
}

func TestLineFitHMCEndToEnd(t *testing.T) {
	assert := assert.New(t)

	mod, mode, gen := lineSetup(t, 42)

	h, err := NewHMC(gen, mod, 0.9)
	assert.NoError(err)

	start, err := WalkerBall(gen, mode, 0.1, 2)
	assert.NoError(err)

	trace, err := h.Run(start, 1000, 2000)
	assert.NoError(err)
	assert.Equal(2, trace.Chains)
	assert.Equal(2000, trace.Draws())

	truth := map[string]float64{
		model.DerSlope:     trueSlope,
		model.DerIntercept: trueIntercept,
	}
	for name, want := range truth {
		mean, err := trace.Mean(name)
		assert.NoError(err)
		sd, err := trace.StdDev(name)
		assert.NoError(err)
		assert.True(math.Abs(mean-want) < 3*sd,
			"%s: posterior mean %v should be within 3 SD (%v) of %v", name, mean, sd, want)
	}
}

func TestLineFitEnsembleEndToEnd(t *testing.T) {
	assert := assert.New(t)

	mod, mode, gen := lineSetup(t, 42)

	e, err := NewEnsemble(gen, mod, 25)
	assert.NoError(err)

	start, err := WalkerBall(gen, mode, 1e-2, 25)
	assert.NoError(err)

	chain, err := e.Run(start, 5000)
	assert.NoError(err)
	assert.Equal(5000, chain.Iters())

	const burn, thin = 100, 30
	truth := map[string]float64{
		model.DerSlope:     trueSlope,
		model.DerIntercept: trueIntercept,
	}
	for name, want := range truth {
		mean, err := chain.Mean(name, burn, thin)
		assert.NoError(err)
		sd, err := chain.StdDev(name, burn, thin)
		assert.NoError(err)
		assert.True(math.Abs(mean-want) < 3*sd,
			"%s: posterior mean %v should be within 3 SD (%v) of %v", name, mean, sd, want)
	}
}

// The gradient sampler should mix substantially better per iteration than
// the gradient-free ensemble on the same model and data.
func TestAutocorrComparison(t *testing.T) {
	assert := assert.New(t)

	mod, mode, gen := lineSetup(t, 42)

	h, err := NewHMC(gen, mod, 0.9)
	assert.NoError(err)
	hStart, err := WalkerBall(gen, mode, 0.1, 2)
	assert.NoError(err)
	trace, err := h.Run(hStart, 1000, 2000)
	assert.NoError(err)

	e, err := NewEnsemble(gen, mod, 25)
	assert.NoError(err)
	eStart, err := WalkerBall(gen, mode, 1e-2, 25)
	assert.NoError(err)
	chain, err := e.Run(eStart, 5000)
	assert.NoError(err)

	hmcChains, err := trace.SeriesAll(model.DerSlope)
	assert.NoError(err)
	tauHMC, err := diag.IntegratedTime(hmcChains)
	assert.NoError(err)

	ensChains := make([][]float64, chain.Walkers)
	for w := 0; w < chain.Walkers; w++ {
		s, err := chain.WalkerSeries(model.DerSlope, w, 100, 1)
		assert.NoError(err)
		ensChains[w] = s
	}
	tauEns, err := diag.IntegratedTime(ensChains)
	assert.NoError(err)

	assert.True(tauEns > 2*tauHMC,
		"ensemble tau %v should be well above gradient sampler tau %v", tauEns, tauHMC)
}
