package sampler

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/probsamp/linemc/model"
)

// Trace is the labeled output of a multi-chain sampler run: one blob record
// per retained draw per chain, addressable by blob field name. It is
// append-only while a run is live and read-only afterward.
type Trace struct {
	Schema *model.BlobSchema
	Chains int
	data   [][][]float64 // [chain][draw][schema.Size()]
}

// NewTrace creates an empty trace for the given schema and chain count.
func NewTrace(schema *model.BlobSchema, chains int) (*Trace, error) {
	if schema == nil || schema.Size() < 1 {
		return nil, errors.Errorf("Trace requires a non-empty blob schema")
	}
	if chains < 1 {
		return nil, errors.Errorf("Invalid chain count %d", chains)
	}

	return &Trace{
		Schema: schema,
		Chains: chains,
		data:   make([][][]float64, chains),
	}, nil
}

// Append records one blob record for the given chain. The record must match
// the declared schema size - the schema never changes during a run.
func (t *Trace) Append(chain int, rec []float64) error {
	if chain < 0 || chain >= t.Chains {
		return errors.Errorf("Invalid chain index %d (have %d chains)", chain, t.Chains)
	}
	if len(rec) != t.Schema.Size() {
		return errors.Errorf("Record len %d != schema size %d", len(rec), t.Schema.Size())
	}

	cp := make([]float64, len(rec))
	copy(cp, rec)
	t.data[chain] = append(t.data[chain], cp)

	return nil
}

// Draws is the number of retained draws in the first chain
func (t *Trace) Draws() int {
	if len(t.data) < 1 {
		return 0
	}
	return len(t.data[0])
}

// Series returns one chain's draws for a scalar blob field.
func (t *Trace) Series(name string, chain int) ([]float64, error) {
	if chain < 0 || chain >= t.Chains {
		return nil, errors.Errorf("Invalid chain index %d (have %d chains)", chain, t.Chains)
	}

	off, size, err := t.Schema.Offset(name)
	if err != nil {
		return nil, err
	}
	if size != 1 {
		return nil, errors.Errorf("Field %s has size %d - Series only handles scalars", name, size)
	}

	out := make([]float64, len(t.data[chain]))
	for i, rec := range t.data[chain] {
		out[i] = rec[off]
	}
	return out, nil
}

// SeriesAll returns every chain's draws for a scalar blob field.
func (t *Trace) SeriesAll(name string) ([][]float64, error) {
	out := make([][]float64, t.Chains)
	for c := 0; c < t.Chains; c++ {
		s, err := t.Series(name, c)
		if err != nil {
			return nil, err
		}
		out[c] = s
	}
	return out, nil
}

// Flat returns all chains' draws for a scalar field concatenated.
func (t *Trace) Flat(name string) ([]float64, error) {
	all, err := t.SeriesAll(name)
	if err != nil {
		return nil, err
	}

	var flat []float64
	for _, s := range all {
		flat = append(flat, s...)
	}
	return flat, nil
}

// Mean is the posterior mean estimate for a scalar field across all chains.
func (t *Trace) Mean(name string) (float64, error) {
	flat, err := t.Flat(name)
	if err != nil {
		return 0, err
	}
	if len(flat) < 1 {
		return 0, errors.Errorf("No draws recorded for %s", name)
	}
	return stat.Mean(flat, nil), nil
}

// StdDev is the posterior standard deviation estimate for a scalar field.
func (t *Trace) StdDev(name string) (float64, error) {
	flat, err := t.Flat(name)
	if err != nil {
		return 0, err
	}
	if len(flat) < 2 {
		return 0, errors.Errorf("Not enough draws recorded for %s", name)
	}
	return stat.StdDev(flat, nil), nil
}

// EnsembleChain is the output of an ensemble run: full per-iteration,
// per-walker positions and blob records. Like Trace it is append-only during
// the run and frozen afterward; burn-in and thinning are applied by readers,
// never destructively.
type EnsembleChain struct {
	Schema  *model.BlobSchema
	Walkers int
	Dim     int
	pos     [][][]float64 // [iter][walker][dim]
	blobs   [][][]float64 // [iter][walker][schema.Size()]
}

// NewEnsembleChain creates an empty chain for a run.
func NewEnsembleChain(schema *model.BlobSchema, walkers, dim int) (*EnsembleChain, error) {
	if schema == nil || schema.Size() < 1 {
		return nil, errors.Errorf("Ensemble chain requires a non-empty blob schema")
	}
	if walkers < 2 {
		return nil, errors.Errorf("Invalid walker count %d", walkers)
	}
	if dim < 1 {
		return nil, errors.Errorf("Invalid dimension %d", dim)
	}

	return &EnsembleChain{
		Schema:  schema,
		Walkers: walkers,
		Dim:     dim,
	}, nil
}

// Append records the full ensemble state for one iteration.
func (c *EnsembleChain) Append(pos [][]float64, blobs [][]float64) error {
	if len(pos) != c.Walkers || len(blobs) != c.Walkers {
		return errors.Errorf("State has %d/%d walkers, chain has %d", len(pos), len(blobs), c.Walkers)
	}

	pcp := make([][]float64, c.Walkers)
	bcp := make([][]float64, c.Walkers)
	for w := 0; w < c.Walkers; w++ {
		if len(pos[w]) != c.Dim {
			return errors.Errorf("Walker %d position has len %d, dim is %d", w, len(pos[w]), c.Dim)
		}
		if len(blobs[w]) != c.Schema.Size() {
			return errors.Errorf("Walker %d blob has len %d, schema size is %d", w, len(blobs[w]), c.Schema.Size())
		}
		pcp[w] = append([]float64{}, pos[w]...)
		bcp[w] = append([]float64{}, blobs[w]...)
	}

	c.pos = append(c.pos, pcp)
	c.blobs = append(c.blobs, bcp)

	return nil
}

// Iters is the number of recorded iterations
func (c *EnsembleChain) Iters() int {
	return len(c.pos)
}

func (c *EnsembleChain) checkSlice(burn, thin int) error {
	if burn < 0 || burn >= c.Iters() {
		return errors.Errorf("Invalid burn-in %d for %d iterations", burn, c.Iters())
	}
	if thin < 1 {
		return errors.Errorf("Invalid thinning stride %d", thin)
	}
	return nil
}

// WalkerSeries returns one walker's draws for a scalar blob field after
// discarding burn iterations and thinning by stride.
func (c *EnsembleChain) WalkerSeries(name string, walker, burn, thin int) ([]float64, error) {
	if walker < 0 || walker >= c.Walkers {
		return nil, errors.Errorf("Invalid walker index %d (have %d walkers)", walker, c.Walkers)
	}
	if err := c.checkSlice(burn, thin); err != nil {
		return nil, err
	}

	off, size, err := c.Schema.Offset(name)
	if err != nil {
		return nil, err
	}
	if size != 1 {
		return nil, errors.Errorf("Field %s has size %d - WalkerSeries only handles scalars", name, size)
	}

	var out []float64
	for i := burn; i < c.Iters(); i += thin {
		out = append(out, c.blobs[i][walker][off])
	}
	return out, nil
}

// Flat returns the retained draws for a scalar field with all walkers
// flattened together: iterations burn..end thinned by stride, walkers
// interleaved per retained iteration.
func (c *EnsembleChain) Flat(name string, burn, thin int) ([]float64, error) {
	if err := c.checkSlice(burn, thin); err != nil {
		return nil, err
	}

	off, size, err := c.Schema.Offset(name)
	if err != nil {
		return nil, err
	}
	if size != 1 {
		return nil, errors.Errorf("Field %s has size %d - Flat only handles scalars", name, size)
	}

	var out []float64
	for i := burn; i < c.Iters(); i += thin {
		for w := 0; w < c.Walkers; w++ {
			out = append(out, c.blobs[i][w][off])
		}
	}
	return out, nil
}

// Mean is the posterior mean of a scalar field over the retained draws.
func (c *EnsembleChain) Mean(name string, burn, thin int) (float64, error) {
	flat, err := c.Flat(name, burn, thin)
	if err != nil {
		return 0, err
	}
	if len(flat) < 1 {
		return 0, errors.Errorf("No draws retained for %s", name)
	}
	return stat.Mean(flat, nil), nil
}

// StdDev is the posterior standard deviation of a scalar field over the
// retained draws.
func (c *EnsembleChain) StdDev(name string, burn, thin int) (float64, error) {
	flat, err := c.Flat(name, burn, thin)
	if err != nil {
		return 0, err
	}
	if len(flat) < 2 {
		return 0, errors.Errorf("Not enough draws retained for %s", name)
	}
	return stat.StdDev(flat, nil), nil
}
