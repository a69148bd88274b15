package model

import (
	"github.com/pkg/errors"
)

// A Prior is the minimal distribution surface a free variable needs: log
// density for evaluation and Rand for drawing starting points. The gonum
// distuv distributions satisfy this directly.
type Prior interface {
	LogProb(x float64) float64
	Rand() float64
}

// Variable represents a single free (sampled) variable in a model. Shape is
// the declared array shape; an empty shape is a scalar. Vector-shaped
// variables apply their prior independently per element.
type Variable struct {
	Name  string // Variable name - must be unique within a model
	Shape []int  // Declared shape (empty for scalar)
	Size  int    // Flattened element count - product of Shape dims
	Prior Prior  // Elementwise prior distribution
}

// NewVariable is our standard way to create a variable from a name, shape,
// and prior.
func NewVariable(name string, shape []int, prior Prior) (*Variable, error) {
	if len(name) < 1 {
		return nil, errors.Errorf("Variable must have a name")
	}
	if prior == nil {
		return nil, errors.Errorf("Variable %s must have a prior", name)
	}

	size := 1
	for _, d := range shape {
		if d < 1 {
			return nil, errors.Errorf("Variable %s has invalid shape dim %d", name, d)
		}
		size *= d
	}

	v := &Variable{
		Name:  name,
		Shape: shape,
		Size:  size,
		Prior: prior,
	}

	return v, nil
}

// Check returns an error if any problem is found
func (v *Variable) Check() error {
	if len(v.Name) < 1 {
		return errors.Errorf("Variable is missing a name")
	}
	if v.Prior == nil {
		return errors.Errorf("Variable %s is missing a prior", v.Name)
	}

	size := 1
	for _, d := range v.Shape {
		if d < 1 {
			return errors.Errorf("Variable %s has invalid shape dim %d", v.Name, d)
		}
		size *= d
	}
	if size != v.Size {
		return errors.Errorf("Variable %s Size %d != shape product %d", v.Name, v.Size, size)
	}

	return nil
}

// PriorLogProb sums the elementwise prior log density over one flattened
// value for the variable.
func (v *Variable) PriorLogProb(vals []float64) (float64, error) {
	if len(vals) != v.Size {
		return 0.0, errors.Errorf("Variable %s expects %d values, got %d", v.Name, v.Size, len(vals))
	}

	var lp float64
	for _, x := range vals {
		lp += v.Prior.LogProb(x)
	}

	return lp, nil
}

// PriorRand draws one flattened value for the variable from its prior.
func (v *Variable) PriorRand() []float64 {
	vals := make([]float64, v.Size)
	for i := range vals {
		vals[i] = v.Prior.Rand()
	}
	return vals
}
