package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircularFloat(t *testing.T) {
	assert := assert.New(t)

	cf := NewCircularFloat(4)
	assert.Equal(4, cf.BufSize)
	assert.Equal(0, cf.Count)
	assert.False(cf.Full())
	assert.Equal(0.0, cf.Mean())

	cf.Add(1.0)
	cf.Add(0.0)
	assert.Equal(2, cf.Count)
	assert.False(cf.Full())
	assert.Equal(0.5, cf.Mean())

	cf.Add(1.0)
	cf.Add(1.0)
	assert.True(cf.Full())
	assert.Equal(0.75, cf.Mean())

	// Wrap: oldest (1.0) replaced by 0.0 => 0, 0, 1, 1
	cf.Add(0.0)
	assert.Equal(4, cf.Count)
	assert.Equal(int64(5), cf.TotalSeen)
	assert.Equal(0.5, cf.Mean())
}

func TestCircularFloatDegenerateSize(t *testing.T) {
	assert := assert.New(t)

	cf := NewCircularFloat(0)
	assert.Equal(1, cf.BufSize)

	cf.Add(0.25)
	cf.Add(0.75)
	assert.Equal(1, cf.Count)
	assert.Equal(0.75, cf.Mean())
}
