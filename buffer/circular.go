package buffer

// CircularFloat is a circular buffer of float64s. Samplers push a 0/1
// acceptance indicator (or any bounded stat) per step and readers take the
// mean over the window, so the monitor can report a rolling acceptance rate
// instead of a whole-run average.
type CircularFloat struct {
	buffer    []float64 // actual storage
	pos       int       // Current position in buffer
	BufSize   int       // BufSize is the fixed number of values maintained in memory
	Count     int       // Count is the number of values in memory. Will always be <= BufSize
	TotalSeen int64     // TotalSeen is the total number of times Add has been called
}

// NewCircularFloat creates a new circular buffer of totalSize.
func NewCircularFloat(totalSize int) *CircularFloat {
	if totalSize < 1 {
		totalSize = 1
	}

	return &CircularFloat{
		buffer:  make([]float64, totalSize),
		pos:     0,
		BufSize: totalSize,
		Count:   0,
	}
}

// Internal: return the next array position
func (c *CircularFloat) nextPos() int {
	return (c.pos + 1) % c.BufSize
}

// Add appends the given value to the buffer, overwriting the oldest entry
func (c *CircularFloat) Add(f float64) error {
	c.TotalSeen++

	c.buffer[c.pos] = f

	c.pos = c.nextPos()

	c.Count++
	if c.Count > c.BufSize {
		c.Count = c.BufSize // max out
	}

	return nil
}

// Mean returns the mean over the current window. An empty buffer has a mean
// of 0 so that callers can report it without a validity check.
func (c *CircularFloat) Mean() float64 {
	if c.Count < 1 {
		return 0.0
	}

	var sum float64
	for i := 0; i < c.Count; i++ {
		sum += c.buffer[i]
	}

	return sum / float64(c.Count)
}

// Full returns true once Add has been called at least BufSize times, i.e.
// the window mean covers an entire window.
func (c *CircularFloat) Full() bool {
	return c.Count >= c.BufSize
}
