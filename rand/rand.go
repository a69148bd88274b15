package rand

import (
	"math"

	"github.com/seehuhn/mt19937"
)

// A Generator uses a goroutine to populate batches of random numbers from a
// Mersenne twister. A single Generator is shared by everything in a run so
// that one seed fixes the entire sequence of draws.
type Generator struct {
	ch chan uint64
}

// NewGenerator starts a new background PRNG based on the given seed
func NewGenerator(seed int64) (*Generator, error) {
	numChan := make(chan uint64, 1024)

	go func() {
		r := mt19937.New()
		r.Seed(seed)
		for {
			numChan <- r.Uint64()
		}
	}()

	g := &Generator{
		ch: numChan,
	}

	return g, nil
}

// Uint64 returns the next raw value from the twister. Also satisfies the
// golang.org/x/exp/rand Source interface used by gonum's distuv, so our
// distributions share the seeded stream.
func (g *Generator) Uint64() uint64 {
	return <-g.ch
}

// Seed is required by the x/exp/rand Source interface, but a running
// Generator can not be reseeded: create a new one instead.
func (g *Generator) Seed(seed uint64) {
	panic("A running Generator can not be reseeded")
}

// Int63 provides the same interface as Go's math/rand, but with pre-generation.
func (g *Generator) Int63() int64 {
	return int64(g.Uint64() >> 1)
}

// Int63n is a copy of the current Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Intn is Int63n for plain ints, which is what index selection wants.
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		panic("invalid argument to Intn")
	}
	return int(g.Int63n(int64(n)))
}

// Float64 uses the commented, simpler implmentation since we don't have the
// same support requirements for users
func (g *Generator) Float64() float64 {
	// See the Go lang comments for Rand Float64 implementation for details
	return float64(g.Int63n(1<<53)) / (1 << 53)
}

// NormFloat64 returns a standard normal deviate via the polar method. Used
// for HMC momenta and walker jitter, where we want draws straight from the
// shared stream without building a distuv object.
func (g *Generator) NormFloat64() float64 {
	for {
		u := 2.0*g.Float64() - 1.0
		v := 2.0*g.Float64() - 1.0
		s := u*u + v*v
		if s >= 1.0 || s == 0.0 {
			continue
		}
		return u * math.Sqrt(-2.0*math.Log(s)/s)
	}
}
