package model

import (
	"math"

	"github.com/pkg/errors"
)

// BlobField is one named entry in a blob record.
type BlobField struct {
	Name string
	Size int
}

// BlobSchema is the fixed record layout returned alongside every log density
// evaluation: free variables in canonical order, then deterministics in
// declared order. It is established once at setup because external samplers
// store blob records using this layout for the lifetime of a run.
type BlobSchema struct {
	Fields []BlobField
	size   int
}

// Size is the total flattened record length
func (s *BlobSchema) Size() int {
	return s.size
}

// Names returns the field names in record order
func (s *BlobSchema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Offset returns the starting index and size of the named field within a
// record, or an error for an unknown name.
func (s *BlobSchema) Offset(name string) (int, int, error) {
	pos := 0
	for _, f := range s.Fields {
		if f.Name == name {
			return pos, f.Size, nil
		}
		pos += f.Size
	}
	return 0, 0, errors.Errorf("Unknown blob field %s", name)
}

// NewBlobSchema builds the schema for a model.
func NewBlobSchema(m *Model) *BlobSchema {
	s := &BlobSchema{}
	for _, v := range m.Vars {
		s.Fields = append(s.Fields, BlobField{Name: v.Name, Size: v.Size})
		s.size += v.Size
	}
	for _, d := range m.Derived {
		s.Fields = append(s.Fields, BlobField{Name: d.Name, Size: d.Size})
		s.size += d.Size
	}
	return s
}

// LogProbBlobFunc is the narrow numeric interface an external sampler
// consumes: flat parameter vector in, scalar log density and fixed-schema
// blob record out. It must be total - a vector outside the prior support, at
// a numerically singular point, or even of the wrong length yields a
// negative-infinite log density and a zeroed blob rather than a panic, so a
// sampler's accept/reject step is never crashed by an excursion.
type LogProbBlobFunc func(x []float64) (float64, []float64)

// LogProbBlob returns the blob schema and the adapter function for the
// model. The adapter closes over the model and codec and is stateless per
// call, so it is safe to invoke repeatedly and concurrently.
func (m *Model) LogProbBlob() (*BlobSchema, LogProbBlobFunc, error) {
	if err := m.Check(); err != nil {
		return nil, nil, errors.Wrapf(err, "Can not adapt invalid model %s", m.Name)
	}

	codec, err := NewModelCodec(m)
	if err != nil {
		return nil, nil, err
	}

	schema := NewBlobSchema(m)
	negInf := math.Inf(-1)

	fn := func(x []float64) (float64, []float64) {
		blob := make([]float64, schema.Size())

		p, err := codec.ToParams(x)
		if err != nil {
			return negInf, blob
		}

		lp := m.LogProb(p)
		if math.IsNaN(lp) || math.IsInf(lp, 1) {
			lp = negInf
		}
		if math.IsInf(lp, -1) {
			return negInf, blob
		}

		copy(blob, x)
		if m.DerVals != nil {
			der := m.DerVals(p)
			copy(blob[len(x):], der)
			for _, d := range der {
				if math.IsNaN(d) || math.IsInf(d, 0) {
					// A singular deterministic rejects the whole point
					return negInf, make([]float64, schema.Size())
				}
			}
		}

		return lp, blob
	}

	return schema, fn, nil
}
