package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratorDeterminism(t *testing.T) {
	assert := assert.New(t)

	g1, err := NewGenerator(42)
	assert.NoError(err)
	g2, err := NewGenerator(42)
	assert.NoError(err)

	for i := 0; i < 256; i++ {
		assert.Equal(g1.Uint64(), g2.Uint64())
	}
}

func TestGeneratorRanges(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGenerator(1)
	assert.NoError(err)

	for i := 0; i < 1000; i++ {
		f := g.Float64()
		assert.True(f >= 0.0 && f < 1.0, "Float64 out of range: %v", f)

		n := g.Intn(7)
		assert.True(n >= 0 && n < 7, "Intn out of range: %v", n)

		assert.True(g.Int63() >= 0)
	}
}

func TestNormFloat64Moments(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGenerator(1337)
	assert.NoError(err)

	const count = 20000
	var sum, sumSq float64
	for i := 0; i < count; i++ {
		x := g.NormFloat64()
		sum += x
		sumSq += x * x
	}

	mean := sum / count
	variance := sumSq/count - mean*mean

	// Loose bounds: we only care that the polar method isn't broken
	assert.InDelta(0.0, mean, 0.05)
	assert.InDelta(1.0, variance, 0.05)
}

func TestIntnPanics(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGenerator(1)
	assert.NoError(err)

	assert.Panics(func() { g.Intn(0) })
	assert.Panics(func() { g.Int63n(-1) })
	assert.Panics(func() { g.Seed(12) })
}
