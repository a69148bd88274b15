package diag

import (
	"math"

	"github.com/pkg/errors"
)

// ErrorSuite represents the discrepancy functions we use to judge how far
// apart two samplers' posterior estimates of the same quantity are. Both
// draw sets are binned over a common range and normalized, then compared
// bin-by-bin.
type ErrorSuite struct {
	MeanAbsError float64
	MaxAbsError  float64
	Hellinger    float64
	JSDiverge    float64
}

// NewErrorSuite returns an ErrorSuite with all calculated error functions
// for the two flat draw sets.
func NewErrorSuite(draws1, draws2 []float64, bins int) (*ErrorSuite, error) {
	min, max, err := CommonRange(draws1, draws2)
	if err != nil {
		return nil, err
	}

	h1, err := NewHistogram(draws1, min, max, bins)
	if err != nil {
		return nil, errors.Wrap(err, "Could not histogram first draw set")
	}
	h2, err := NewHistogram(draws2, min, max, bins)
	if err != nil {
		return nil, errors.Wrap(err, "Could not histogram second draw set")
	}

	p1 := normalize(h1.Counts)
	p2 := normalize(h2.Counts)

	es := ErrorSuite{}
	hellinger := 0.0
	for i, a := range p1 {
		b := p2[i]

		d := math.Abs(a - b)
		es.MeanAbsError += d
		es.MaxAbsError = math.Max(d, es.MaxAbsError)

		// Hellinger distance is similar to the Euclidean L2:
		// sqrt(sum((sqrt(p) - sqrt(q))**2)) / sqrt(2)
		hellinger += math.Pow(math.Sqrt(a)-math.Sqrt(b), 2)
	}
	es.MeanAbsError /= float64(bins)
	es.Hellinger = math.Sqrt(hellinger) / math.Sqrt2
	es.JSDiverge = jsDivergence(p1, p2)

	return &es, nil
}

func normalize(counts []float64) []float64 {
	const eps = 1e-12

	tot := 0.0
	for _, c := range counts {
		tot += c
	}
	if tot < eps {
		tot = eps
	}

	p := make([]float64, len(counts))
	for i, c := range counts {
		p[i] = c / tot
	}
	return p
}

// klDivergence returns the Kullback-Leibler divergence, which is
// non-symmetric! This is strictly a subroutine for JS Divergence: the arrays
// are assumed normalized and zero bins in p contribute zero.
// klDivergence(P, Q) <==> D_{KL}(P || Q)
func klDivergence(p1 []float64, p2 []float64) float64 {
	diverge := 0.0
	for i, a := range p1 {
		if a <= 0.0 {
			continue
		}
		diverge += a * math.Log2(a/p2[i])
	}
	return diverge
}

// jsDivergence returns the Jensen-Shannon divergence, which is a symmetric
// generalization of the KL divergence
func jsDivergence(p1 []float64, p2 []float64) float64 {
	mid := make([]float64, len(p1))
	for i, a := range p1 {
		mid[i] = (a + p2[i]) * 0.5
	}
	return 0.5 * (klDivergence(p1, mid) + klDivergence(p2, mid))
}
