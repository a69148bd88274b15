package sampler

import (
	"math"

	"github.com/pkg/errors"

	"github.com/probsamp/linemc/buffer"
	"github.com/probsamp/linemc/model"
	grand "github.com/probsamp/linemc/rand"
)

// Ensemble is the gradient-free affine-invariant sampler: every walker
// proposes a stretch move along the line through itself and a randomly
// chosen member of the rest of the ensemble, and accepts or rejects using
// only the log-prob adapter. Walkers update in place, one at a time, on the
// calling goroutine; the iteration count is fixed up front and there is no
// convergence detection.
type Ensemble struct {
	Gen          *grand.Generator
	Walkers      int
	Dim          int
	StretchScale float64  // the stretch move's "a" parameter
	OnIteration  Progress // optional monitoring hook

	schema *model.BlobSchema
	logPB  model.LogProbBlobFunc

	accWindow *buffer.CircularFloat
	accepted  int64
	total     int64
}

// NewEnsemble creates a new ensemble sampler over the model's log-prob
// adapter. The model needs no gradient. Walker count must be at least twice
// the model dimension so the complementary ensemble spans the space.
func NewEnsemble(gen *grand.Generator, mod *model.Model, walkers int) (*Ensemble, error) {
	if gen == nil {
		return nil, errors.Errorf("No random generator supplied")
	}
	if mod == nil {
		return nil, errors.Errorf("No model supplied")
	}

	dim := mod.Dim()
	if walkers < 2*dim {
		return nil, errors.Errorf("Walker count %d too small for dimension %d (need >= %d)", walkers, dim, 2*dim)
	}

	schema, fn, err := mod.LogProbBlob()
	if err != nil {
		return nil, errors.Wrap(err, "Could not build log-prob adapter for ensemble")
	}

	e := &Ensemble{
		Gen:          gen,
		Walkers:      walkers,
		Dim:          dim,
		StretchScale: 2.0,
		schema:       schema,
		logPB:        fn,
		accWindow:    buffer.NewCircularFloat(acceptWindow),
	}

	return e, nil
}

// Schema is the blob record layout of the chains this sampler produces
func (e *Ensemble) Schema() *model.BlobSchema {
	return e.schema
}

// AcceptRate is the per-walker acceptance fraction over the whole run
func (e *Ensemble) AcceptRate() float64 {
	if e.total < 1 {
		return 0.0
	}
	return float64(e.accepted) / float64(e.total)
}

// WindowAcceptRate is the rolling acceptance rate over a recent window
func (e *Ensemble) WindowAcceptRate() float64 {
	return e.accWindow.Mean()
}

// Run advances the full ensemble for a fixed number of iterations from the
// given starting positions (one per walker, e.g. a WalkerBall around a mode
// estimate) and returns the finished chain. Every starting position must
// have nonzero probability.
func (e *Ensemble) Run(start [][]float64, iters int) (*EnsembleChain, error) {
	if len(start) != e.Walkers {
		return nil, errors.Errorf("Got %d start positions for %d walkers", len(start), e.Walkers)
	}
	if iters < 1 {
		return nil, errors.Errorf("Invalid iteration count %d", iters)
	}

	chain, err := NewEnsembleChain(e.schema, e.Walkers, e.Dim)
	if err != nil {
		return nil, err
	}

	// Current ensemble state
	pos := make([][]float64, e.Walkers)
	lps := make([]float64, e.Walkers)
	blobs := make([][]float64, e.Walkers)
	for w, x := range start {
		if len(x) != e.Dim {
			return nil, errors.Errorf("Walker %d start has len %d, dim is %d", w, len(x), e.Dim)
		}
		pos[w] = append([]float64{}, x...)
		lps[w], blobs[w] = e.logPB(pos[w])
		if math.IsInf(lps[w], -1) {
			return nil, errors.Errorf("Walker %d starts at a zero-probability point", w)
		}
	}

	a := e.StretchScale
	proposal := make([]float64, e.Dim)

	for iter := 0; iter < iters; iter++ {
		for k := 0; k < e.Walkers; k++ {
			// Pick a complementary walker j != k
			j := e.Gen.Intn(e.Walkers - 1)
			if j >= k {
				j++
			}

			// Stretch factor z ~ g(z) on [1/a, a]
			u := e.Gen.Float64()
			z := ((a-1.0)*u + 1.0)
			z = z * z / a

			for i := 0; i < e.Dim; i++ {
				proposal[i] = pos[j][i] + z*(pos[k][i]-pos[j][i])
			}

			lpNew, blobNew := e.logPB(proposal)
			logAccept := float64(e.Dim-1)*math.Log(z) + lpNew - lps[k]

			e.total++
			var accInd float64
			if math.Log(e.Gen.Float64()) < logAccept {
				copy(pos[k], proposal)
				lps[k] = lpNew
				blobs[k] = blobNew
				e.accepted++
				accInd = 1.0
			}
			e.accWindow.Add(accInd)
		}

		if err := chain.Append(pos, blobs); err != nil {
			return nil, errors.Wrapf(err, "Failure recording iteration %d", iter)
		}

		if e.OnIteration != nil {
			e.OnIteration(iter)
		}
	}

	return chain, nil
}
