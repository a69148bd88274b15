package sampler

import (
	"math"

	"github.com/pkg/errors"

	"github.com/probsamp/linemc/buffer"
	"github.com/probsamp/linemc/model"
	grand "github.com/probsamp/linemc/rand"
)

// Dual averaging constants (step size adaptation)
const (
	daGamma = 0.05
	daT0    = 10.0
	daKappa = 0.75
)

// HMC is the gradient-based sampler: leapfrog Hamiltonian Monte Carlo with
// dual-averaging step size adaptation toward a target acceptance rate. Each
// chain runs a fixed number of tuning iterations (step size adapts, nothing
// is recorded) followed by a fixed number of recorded draws. Chains run
// sequentially on the calling goroutine.
type HMC struct {
	Mod          *model.Model
	Gen          *grand.Generator
	TargetAccept float64  // adaptation target, e.g. 0.9
	MaxSteps     int      // leapfrog steps per proposal drawn uniform from 1..MaxSteps
	OnIteration  Progress // optional monitoring hook

	schema *model.BlobSchema
	blobFn model.LogProbBlobFunc

	accWindow *buffer.CircularFloat
	accepted  int64
	total     int64
	stepSize  float64
}

// NewHMC creates a new sampler for the given model, which must carry an
// analytic gradient.
func NewHMC(gen *grand.Generator, mod *model.Model, targetAccept float64) (*HMC, error) {
	if gen == nil {
		return nil, errors.Errorf("No random generator supplied")
	}
	if mod == nil {
		return nil, errors.Errorf("No model supplied")
	}
	if mod.Grad == nil {
		return nil, errors.Errorf("Model %s has no gradient - HMC requires one", mod.Name)
	}
	if targetAccept <= 0.0 || targetAccept >= 1.0 {
		return nil, errors.Errorf("Invalid target acceptance rate %v", targetAccept)
	}

	schema, blobFn, err := mod.LogProbBlob()
	if err != nil {
		return nil, errors.Wrap(err, "Could not build log-prob adapter for HMC")
	}

	h := &HMC{
		Mod:          mod,
		Gen:          gen,
		TargetAccept: targetAccept,
		MaxSteps:     32,
		schema:       schema,
		blobFn:       blobFn,
		accWindow:    buffer.NewCircularFloat(acceptWindow),
		stepSize:     0.1,
	}

	return h, nil
}

// Schema is the blob record layout of the traces this sampler produces
func (h *HMC) Schema() *model.BlobSchema {
	return h.schema
}

// AcceptRate is the acceptance fraction over the recorded (post-tune) draws
func (h *HMC) AcceptRate() float64 {
	if h.total < 1 {
		return 0.0
	}
	return float64(h.accepted) / float64(h.total)
}

// WindowAcceptRate is the rolling acceptance rate over a recent window
func (h *HMC) WindowAcceptRate() float64 {
	return h.accWindow.Mean()
}

// StepSize is the step size after the most recent tuning phase
func (h *HMC) StepSize() float64 {
	return h.stepSize
}

// Run samples every chain to completion and returns the finished trace. One
// chain is run per starting point; each performs tune adaptation iterations
// and then draws recorded iterations.
func (h *HMC) Run(start [][]float64, tune, draws int) (*Trace, error) {
	dim := h.Mod.Dim()
	if len(start) < 1 {
		return nil, errors.Errorf("At least one chain start point is required")
	}
	if tune < 0 || draws < 1 {
		return nil, errors.Errorf("Invalid run lengths tune=%d draws=%d", tune, draws)
	}

	trace, err := NewTrace(h.schema, len(start))
	if err != nil {
		return nil, err
	}

	for c, x0 := range start {
		if len(x0) != dim {
			return nil, errors.Errorf("Chain %d start has len %d, model dim is %d", c, len(x0), dim)
		}
		if err := h.runChain(trace, c, x0, tune, draws); err != nil {
			return nil, errors.Wrapf(err, "Failure in chain %d", c)
		}
	}

	return trace, nil
}

func (h *HMC) runChain(trace *Trace, chain int, x0 []float64, tune, draws int) error {
	dim := len(x0)

	x := append([]float64{}, x0...)
	grad := make([]float64, dim)
	lp := h.Mod.Grad(x, grad)
	if math.IsInf(lp, -1) || math.IsNaN(lp) {
		return errors.Errorf("Start point has zero probability")
	}

	// Dual averaging state
	eps := h.stepSize
	mu := math.Log(10.0 * eps)
	logEpsBar := 0.0
	hBar := 0.0

	for iter := 0; iter < tune+draws; iter++ {
		if iter == tune && tune > 0 {
			// Tuning over: freeze the averaged step size
			eps = math.Exp(logEpsBar)
		}

		xNew, lpNew, alpha, accepted := h.step(x, lp, eps)

		if iter < tune {
			m := float64(iter + 1)
			hBar = (1.0-1.0/(m+daT0))*hBar + (h.TargetAccept-alpha)/(m+daT0)
			logEps := mu - math.Sqrt(m)/daGamma*hBar
			w := math.Pow(m, -daKappa)
			logEpsBar = w*logEps + (1.0-w)*logEpsBar
			eps = math.Exp(logEps)
		}

		if accepted {
			x = xNew
			lp = lpNew
		}

		var accInd float64
		if accepted {
			accInd = 1.0
		}
		h.accWindow.Add(accInd)

		if iter >= tune {
			h.total++
			if accepted {
				h.accepted++
			}

			_, blob := h.blobFn(x)
			if err := trace.Append(chain, blob); err != nil {
				return err
			}
		}

		if h.OnIteration != nil {
			h.OnIteration(iter)
		}
	}

	h.stepSize = eps
	return nil
}

// step makes one HMC transition: sample a momentum, integrate a jittered
// number of leapfrog steps, and accept/reject on the joint Hamiltonian.
// alpha is the Metropolis acceptance probability (used by dual averaging
// even on rejection).
func (h *HMC) step(x []float64, lp float64, eps float64) (xNew []float64, lpNew, alpha float64, accepted bool) {
	dim := len(x)

	p := make([]float64, dim)
	kin0 := 0.0
	for i := range p {
		p[i] = h.Gen.NormFloat64()
		kin0 += 0.5 * p[i] * p[i]
	}
	h0 := -lp + kin0

	steps := 1 + h.Gen.Intn(h.MaxSteps)

	q := append([]float64{}, x...)
	grad := make([]float64, dim)
	lpq := h.Mod.Grad(q, grad)

	// Leapfrog
	for i := range p {
		p[i] += 0.5 * eps * grad[i]
	}
	for s := 0; s < steps; s++ {
		for i := range q {
			q[i] += eps * p[i]
		}
		lpq = h.Mod.Grad(q, grad)
		if math.IsInf(lpq, -1) || math.IsNaN(lpq) {
			// Divergent excursion outside the support: reject
			return x, lp, 0.0, false
		}
		if s != steps-1 {
			for i := range p {
				p[i] += eps * grad[i]
			}
		}
	}
	for i := range p {
		p[i] += 0.5 * eps * grad[i]
	}

	kin1 := 0.0
	for _, pi := range p {
		kin1 += 0.5 * pi * pi
	}
	h1 := -lpq + kin1

	logAlpha := h0 - h1
	if math.IsNaN(logAlpha) {
		return x, lp, 0.0, false
	}

	alpha = math.Exp(math.Min(0.0, logAlpha))
	if math.Log(h.Gen.Float64()) < logAlpha {
		return q, lpq, alpha, true
	}

	return x, lp, alpha, false
}
