package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	grand "github.com/probsamp/linemc/rand"
)

func TestHistogram(t *testing.T) {
	assert := assert.New(t)

	h, err := NewHistogram([]float64{0.5, 1.5, 2.5, 2.6}, 0, 3, 3)
	assert.NoError(err)
	assert.Equal([]float64{1, 1, 2}, h.Counts)

	// Out of range values clamp to edge bins
	h, err = NewHistogram([]float64{-10, 10}, 0, 1, 2)
	assert.NoError(err)
	assert.Equal([]float64{1, 1}, h.Counts)

	_, err = NewHistogram(nil, 0, 1, 2)
	assert.Error(err)
	_, err = NewHistogram([]float64{1}, 0, 1, 0)
	assert.Error(err)
	_, err = NewHistogram([]float64{1}, 1, 0, 2)
	assert.Error(err)
}

func TestCommonRange(t *testing.T) {
	assert := assert.New(t)

	min, max, err := CommonRange([]float64{1, 5}, []float64{-2, 3})
	assert.NoError(err)
	assert.Equal(-2.0, min)
	assert.Equal(5.0, max)

	// Constant samples still produce a usable range
	min, max, err = CommonRange([]float64{2, 2}, []float64{2})
	assert.NoError(err)
	assert.True(max > min)

	_, _, err = CommonRange(nil, []float64{1})
	assert.Error(err)
}

func TestErrorSuiteIdentical(t *testing.T) {
	assert := assert.New(t)

	draws := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	es, err := NewErrorSuite(draws, draws, 10)
	assert.NoError(err)

	assert.Equal(0.0, es.MeanAbsError)
	assert.Equal(0.0, es.MaxAbsError)
	assert.Equal(0.0, es.Hellinger)
	assert.Equal(0.0, es.JSDiverge)
}

func TestErrorSuiteSimilarAndDisjoint(t *testing.T) {
	assert := assert.New(t)

	gen, err := grand.NewGenerator(42)
	assert.NoError(err)

	s1 := make([]float64, 20000)
	s2 := make([]float64, 20000)
	s3 := make([]float64, 20000)
	for i := range s1 {
		s1[i] = gen.NormFloat64()
		s2[i] = gen.NormFloat64()
		s3[i] = 100.0 + gen.NormFloat64()
	}

	// Same distribution: all metrics small
	near, err := NewErrorSuite(s1, s2, 30)
	assert.NoError(err)
	assert.True(near.Hellinger < 0.05, "Hellinger %v", near.Hellinger)
	assert.True(near.JSDiverge < 0.05, "JSD %v", near.JSDiverge)

	// Disjoint distributions: metrics near their maxima
	far, err := NewErrorSuite(s1, s3, 30)
	assert.NoError(err)
	assert.True(far.Hellinger > 0.9, "Hellinger %v", far.Hellinger)
	assert.True(far.JSDiverge > 0.9, "JSD %v", far.JSDiverge)
	assert.True(far.MaxAbsError > near.MaxAbsError)
}
