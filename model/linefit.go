package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	grand "github.com/probsamp/linemc/rand"
)

// Variable and deterministic names for the line fit model
const (
	VarLogS      = "logs"  // log of the observation noise scale
	VarTheta     = "theta" // angle of the fitted line
	VarBPerp     = "bperp" // perpendicular offset of the line
	DerSlope     = "m"     // tan(theta)
	DerIntercept = "b"     // bperp / cos(theta)
)

// Prior scale for the two unconstrained variables
const lineFitPriorSigma = 5.0

// Guard for the cos(theta)=0 singularity: evaluations this close to the
// angle boundary are rejected (-Inf) rather than clamped or reparameterized.
const cosEps = 1e-12

// LineFit builds the Bayesian linear regression model used to compare the
// two samplers. The line is parameterized by an angle and a perpendicular
// offset rather than slope/intercept directly, so the derived quantities are
//
//	m = tan(theta)
//	b = bperp / cos(theta)
//
// and the likelihood is an independent Normal per data point with mean
// m*x + b and scale exp(logs). The model closes over the (fixed) dataset.
func LineFit(data *Dataset, gen *grand.Generator) (*Model, error) {
	if data == nil {
		return nil, errors.Errorf("No dataset supplied")
	}
	if err := data.Check(); err != nil {
		return nil, errors.Wrap(err, "Line fit model requires a valid dataset")
	}
	if gen == nil {
		return nil, errors.Errorf("No random generator supplied")
	}

	halfPi := math.Pi / 2.0

	logsVar, err := NewVariable(VarLogS, nil, distuv.Normal{Mu: 0.0, Sigma: lineFitPriorSigma, Src: gen})
	if err != nil {
		return nil, err
	}
	thetaVar, err := NewVariable(VarTheta, nil, distuv.Uniform{Min: -halfPi, Max: halfPi, Src: gen})
	if err != nil {
		return nil, err
	}
	bperpVar, err := NewVariable(VarBPerp, nil, distuv.Normal{Mu: 0.0, Sigma: lineFitPriorSigma, Src: gen})
	if err != nil {
		return nil, err
	}

	// Joint log density at a point, shared by LogProb and Grad. Returns
	// -Inf for anything outside the (open) angle support or numerically
	// singular.
	joint := func(logs, theta, bperp float64) float64 {
		if theta <= -halfPi || theta >= halfPi {
			return math.Inf(-1)
		}
		cosT := math.Cos(theta)
		if math.Abs(cosT) < cosEps {
			return math.Inf(-1)
		}

		lp := logsVar.Prior.LogProb(logs)
		lp += thetaVar.Prior.LogProb(theta)
		lp += bperpVar.Prior.LogProb(bperp)

		m := math.Tan(theta)
		b := bperp / cosT
		s2 := math.Exp(2.0 * logs)

		for i, x := range data.X {
			r := data.Y[i] - (m*x + b)
			lp += -0.5*math.Log(2.0*math.Pi) - logs - 0.5*r*r/s2
		}

		return lp
	}

	mod := &Model{
		Name: "linefit-" + data.Name,
		Vars: []*Variable{logsVar, thetaVar, bperpVar},
		Derived: []*Deterministic{
			{Name: DerSlope, Size: 1},
			{Name: DerIntercept, Size: 1},
		},
	}

	mod.LogProb = func(p Params) float64 {
		return joint(p[VarLogS][0], p[VarTheta][0], p[VarBPerp][0])
	}

	mod.DerVals = func(p Params) []float64 {
		theta := p[VarTheta][0]
		return []float64{
			math.Tan(theta),
			p[VarBPerp][0] / math.Cos(theta),
		}
	}

	// Analytic gradient in the canonical vector layout [logs, theta, bperp]
	mod.Grad = func(x []float64, grad []float64) float64 {
		for i := range grad {
			grad[i] = 0.0
		}
		if len(x) != 3 || len(grad) != 3 {
			return math.Inf(-1)
		}

		logs, theta, bperp := x[0], x[1], x[2]
		lp := joint(logs, theta, bperp)
		if math.IsInf(lp, -1) {
			return lp
		}

		cosT := math.Cos(theta)
		tanT := math.Tan(theta)
		m := tanT
		b := bperp / cosT
		s2 := math.Exp(2.0 * logs)
		sigma2 := lineFitPriorSigma * lineFitPriorSigma

		gLogs := -logs / sigma2
		gTheta := 0.0
		gBperp := -bperp / sigma2

		for i, xi := range data.X {
			r := data.Y[i] - (m*xi + b)
			gLogs += r*r/s2 - 1.0
			gTheta += (r / s2) * (xi/(cosT*cosT) + b*tanT)
			gBperp += (r / s2) / cosT
		}

		grad[0] = gLogs
		grad[1] = gTheta
		grad[2] = gBperp

		return lp
	}

	if err := mod.Check(); err != nil {
		return nil, errors.Wrap(err, "Line fit model failed check")
	}

	return mod, nil
}
