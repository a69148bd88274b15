package model

import (
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	grand "github.com/probsamp/linemc/rand"
)

// Dataset is the fixed set of observed (x, y) points a model closes over.
// It is constructed once and never mutated.
type Dataset struct {
	Name string
	X    []float64
	Y    []float64
}

// Len is the number of observed points
func (d *Dataset) Len() int {
	return len(d.X)
}

// Check returns an error if there is a problem with the dataset
func (d *Dataset) Check() error {
	if len(d.X) != len(d.Y) {
		return errors.Errorf("Dataset %s has %d x values but %d y values", d.Name, len(d.X), len(d.Y))
	}
	if len(d.X) < 2 {
		return errors.Errorf("Dataset %s has %d points - need at least 2", d.Name, len(d.X))
	}
	for i, x := range d.X {
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(d.Y[i]) || math.IsInf(d.Y[i], 0) {
			return errors.Errorf("Dataset %s has a non-finite point at index %d", d.Name, i)
		}
	}
	return nil
}

// SyntheticDataset generates n points from a true line: x uniform on
// [-5, 5), y = slope*x + intercept + exp(logs)*noise.
func SyntheticDataset(gen *grand.Generator, n int, slope, intercept, logs float64) (*Dataset, error) {
	if gen == nil {
		return nil, errors.Errorf("No random generator supplied")
	}
	if n < 2 {
		return nil, errors.Errorf("Invalid point count %d", n)
	}

	xDist := distuv.Uniform{Min: -5.0, Max: 5.0, Src: gen}
	scale := math.Exp(logs)

	d := &Dataset{
		Name: "synthetic",
		X:    make([]float64, n),
		Y:    make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x := xDist.Rand()
		d.X[i] = x
		d.Y[i] = slope*x + intercept + scale*gen.NormFloat64()
	}

	return d, nil
}

// FieldReader is just a simple reader for basic file formats.
type FieldReader struct {
	Pos    int
	Fields []string
}

// NewFieldReader constructs a new field reader around the given data
func NewFieldReader(data string) *FieldReader {
	return &FieldReader{0, strings.Fields(data)}
}

// Read returns the next space-delimited field/token
func (fr *FieldReader) Read() (string, error) {
	if fr.Pos >= len(fr.Fields) {
		return "", io.EOF
	}
	p := fr.Pos
	fr.Pos++
	return fr.Fields[p], nil
}

// ReadFloat reads the next token as a float
func (fr *FieldReader) ReadFloat() (float64, error) {
	s, err := fr.Read()
	if err != nil {
		return 0, err
	}

	return strconv.ParseFloat(s, 64)
}

// NewDatasetFromBuffer parses a dataset from pre-read data: whitespace
// delimited x y pairs, one pair per point. Blank lines and lines starting
// with '#' are skipped.
func NewDatasetFromBuffer(data []byte) (*Dataset, error) {
	lines := strings.Split(string(data), "\n")
	keep := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if len(ln) < 1 || ln[0] == '#' {
			continue
		}
		keep = append(keep, ln)
	}

	fr := NewFieldReader(strings.Join(keep, "\n"))
	if len(fr.Fields)%2 != 0 {
		return nil, errors.Errorf("Dataset has odd field count %d - expected x y pairs", len(fr.Fields))
	}

	n := len(fr.Fields) / 2
	d := &Dataset{
		X: make([]float64, n),
		Y: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		x, err := fr.ReadFloat()
		if err != nil {
			return nil, errors.Wrapf(err, "Error reading x for point %d", i)
		}
		y, err := fr.ReadFloat()
		if err != nil {
			return nil, errors.Wrapf(err, "Error reading y for point %d", i)
		}
		d.X[i] = x
		d.Y[i] = y
	}

	if err := d.Check(); err != nil {
		return nil, errors.Wrap(err, "Parsed dataset is not valid")
	}

	return d, nil
}

// NewDatasetFromFile reads and parses a dataset from the specified source.
func NewDatasetFromFile(filename string) (*Dataset, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ dataset from %s", filename)
	}

	d, err := NewDatasetFromBuffer(data)
	if err != nil {
		return nil, err
	}

	// Name the dataset from the file
	var ext = filepath.Ext(filename)
	d.Name = filename[0 : len(filename)-len(ext)]

	return d, nil
}

// WriteFile writes the dataset as x y pairs, one point per line.
func (d *Dataset) WriteFile(filename string) error {
	if err := d.Check(); err != nil {
		return errors.Wrap(err, "Refusing to write invalid dataset")
	}

	var sb strings.Builder
	for i, x := range d.X {
		fmt.Fprintf(&sb, "%.17g %.17g\n", x, d.Y[i])
	}

	err := ioutil.WriteFile(filename, []byte(sb.String()), os.FileMode(0644))
	if err != nil {
		return errors.Wrapf(err, "Could not WRITE dataset to %s", filename)
	}

	return nil
}
