package model

import (
	"github.com/pkg/errors"
)

// Codec is the bidirectional mapping between the named-parameter
// representation (Params) and a single flat ordered vector. It is built once
// from the model's variable declarations and is immutable afterward: the
// slice boundaries it computes are the canonical vector layout for every
// consumer of the vector for the life of the run.
type Codec struct {
	vars    []*Variable
	offsets []int
	dim     int
}

// NewCodec builds a codec from variables in canonical order.
func NewCodec(vars []*Variable) (*Codec, error) {
	if len(vars) < 1 {
		return nil, errors.Errorf("Can not build a codec with no variables")
	}

	c := &Codec{
		vars:    vars,
		offsets: make([]int, len(vars)),
	}

	for i, v := range vars {
		if e := v.Check(); e != nil {
			return nil, errors.Wrapf(e, "Codec given invalid variable %s", v.Name)
		}
		c.offsets[i] = c.dim
		c.dim += v.Size
	}

	return c, nil
}

// NewModelCodec is a helper building the codec for a model's free variables.
func NewModelCodec(m *Model) (*Codec, error) {
	return NewCodec(m.Vars)
}

// Dim is the total flat vector length
func (c *Codec) Dim() int {
	return c.dim
}

// ToVector concatenates each variable's flattened values in canonical order.
// The params key set must be exactly the codec's variable names with
// correctly sized values: anything missing, extra, or misshaped is an error.
func (c *Codec) ToVector(p Params) ([]float64, error) {
	if len(p) != len(c.vars) {
		return nil, errors.Errorf("Params has %d entries, codec has %d variables", len(p), len(c.vars))
	}

	x := make([]float64, c.dim)
	for i, v := range c.vars {
		vals, ok := p[v.Name]
		if !ok {
			return nil, errors.Errorf("Params is missing variable %s", v.Name)
		}
		if len(vals) != v.Size {
			return nil, errors.Errorf("Variable %s has size %d but params value has len %d", v.Name, v.Size, len(vals))
		}
		copy(x[c.offsets[i]:c.offsets[i]+v.Size], vals)
	}

	return x, nil
}

// ToParams is the exact inverse of ToVector: it re-splits the vector using
// each variable's fixed size. The vector length must equal Dim.
func (c *Codec) ToParams(x []float64) (Params, error) {
	if len(x) != c.dim {
		return nil, errors.Errorf("Vector has len %d, codec dim is %d", len(x), c.dim)
	}

	p := make(Params, len(c.vars))
	for i, v := range c.vars {
		vals := make([]float64, v.Size)
		copy(vals, x[c.offsets[i]:c.offsets[i]+v.Size])
		p[v.Name] = vals
	}

	return p, nil
}
