package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
)

func testCodecVars(t *testing.T) []*Variable {
	prior := distuv.Normal{Mu: 0, Sigma: 1}

	v1, err := NewVariable("alpha", nil, prior)
	assert.NoError(t, err)
	v2, err := NewVariable("beta", []int{2, 2}, prior)
	assert.NoError(t, err)
	v3, err := NewVariable("gamma", []int{3}, prior)
	assert.NoError(t, err)

	return []*Variable{v1, v2, v3}
}

func TestCodecRoundTrip(t *testing.T) {
	assert := assert.New(t)

	c, err := NewCodec(testCodecVars(t))
	assert.NoError(err)
	assert.Equal(8, c.Dim())

	p := Params{
		"alpha": []float64{1.5},
		"beta":  []float64{1, 2, 3, 4},
		"gamma": []float64{-1, -2, -3},
	}

	x, err := c.ToVector(p)
	assert.NoError(err)
	assert.Equal([]float64{1.5, 1, 2, 3, 4, -1, -2, -3}, x)

	back, err := c.ToParams(x)
	assert.NoError(err)
	assert.Equal(p, back)

	// And vector -> params -> vector
	x2, err := c.ToVector(back)
	assert.NoError(err)
	assert.Equal(x, x2)
}

func TestCodecShapeErrors(t *testing.T) {
	assert := assert.New(t)

	c, err := NewCodec(testCodecVars(t))
	assert.NoError(err)

	// Wrong vector length
	_, err = c.ToParams(make([]float64, 7))
	assert.Error(err)
	_, err = c.ToParams(nil)
	assert.Error(err)

	// Missing key
	_, err = c.ToVector(Params{
		"alpha": []float64{1},
		"beta":  []float64{1, 2, 3, 4},
	})
	assert.Error(err)

	// Extra key
	_, err = c.ToVector(Params{
		"alpha": []float64{1},
		"beta":  []float64{1, 2, 3, 4},
		"gamma": []float64{1, 2, 3},
		"delta": []float64{9},
	})
	assert.Error(err)

	// Right key, wrong size
	_, err = c.ToVector(Params{
		"alpha": []float64{1},
		"beta":  []float64{1, 2, 3},
		"gamma": []float64{1, 2, 3},
	})
	assert.Error(err)
}

func TestCodecEmpty(t *testing.T) {
	assert := assert.New(t)

	_, err := NewCodec(nil)
	assert.Error(err)
}

func TestParamsClone(t *testing.T) {
	assert := assert.New(t)

	p := Params{"alpha": []float64{1, 2}}
	cp := p.Clone()
	cp["alpha"][0] = 99

	assert.Equal(1.0, p["alpha"][0])
	assert.Equal(99.0, cp["alpha"][0])
}
