package model

import (
	"github.com/pkg/errors"
)

// Params maps a free variable name to its flattened values. This is the
// named-parameter representation; the Codec converts to and from the flat
// vector representation that external samplers understand.
type Params map[string][]float64

// Clone returns a deep copy of the params
func (p Params) Clone() Params {
	cp := make(Params, len(p))
	for ky, vals := range p {
		c := make([]float64, len(vals))
		copy(c, vals)
		cp[ky] = c
	}
	return cp
}

// LogProbFunc evaluates the joint log density of a model at the given
// named parameter values.
type LogProbFunc func(p Params) float64

// DerivedFunc computes the deterministic quantities of a model, flattened
// and concatenated in the model's declared Derived order.
type DerivedFunc func(p Params) []float64

// GradFunc evaluates the joint log density at a flat parameter vector and
// writes its gradient into grad (len(grad) == len(x)). Models without an
// analytic gradient leave this nil and gradient-based samplers refuse them.
type GradFunc func(x []float64, grad []float64) float64

// Model is an explicit probabilistic model object: free variables in
// canonical order, deterministic quantity declarations, and closures over
// the fixed observed data. There is no ambient "current model" anywhere -
// everything that needs a model is handed one.
type Model struct {
	Name    string           // Model name
	Vars    []*Variable      // Free variables in canonical order
	Derived []*Deterministic // Deterministic quantities in declared order
	LogProb LogProbFunc      // Joint log density over free variables + data
	DerVals DerivedFunc      // Deterministic quantity values
	Grad    GradFunc         // Optional gradient in flat vector space
}

// Deterministic declares one derived quantity: a fixed function of the free
// variables, not itself sampled, but recorded alongside every evaluation.
type Deterministic struct {
	Name string
	Size int
}

// Check returns an error if there is a problem with the model
func (m *Model) Check() error {
	if len(m.Vars) < 1 {
		return errors.Errorf("Model %s has no free variables", m.Name)
	}
	if m.LogProb == nil {
		return errors.Errorf("Model %s has no LogProb", m.Name)
	}

	names := make(map[string]bool)
	for _, v := range m.Vars {
		e := v.Check()
		if e != nil {
			return errors.Wrapf(e, "Model %s has an invalid Variable %s", m.Name, v.Name)
		}
		if names[v.Name] {
			return errors.Errorf("Duplicate name %s in model %s", v.Name, m.Name)
		}
		names[v.Name] = true
	}

	for _, d := range m.Derived {
		if len(d.Name) < 1 {
			return errors.Errorf("Model %s has an unnamed deterministic", m.Name)
		}
		if d.Size < 1 {
			return errors.Errorf("Deterministic %s has invalid size %d", d.Name, d.Size)
		}
		if names[d.Name] {
			return errors.Errorf("Duplicate name %s in model %s", d.Name, m.Name)
		}
		names[d.Name] = true
	}

	if len(m.Derived) > 0 && m.DerVals == nil {
		return errors.Errorf("Model %s declares deterministics but has no DerVals", m.Name)
	}

	return nil
}

// Dim is the total flattened size of the free-variable space
func (m *Model) Dim() int {
	dim := 0
	for _, v := range m.Vars {
		dim += v.Size
	}
	return dim
}

// PriorRand draws a full set of named params from the variable priors.
func (m *Model) PriorRand() Params {
	p := make(Params, len(m.Vars))
	for _, v := range m.Vars {
		p[v.Name] = v.PriorRand()
	}
	return p
}
