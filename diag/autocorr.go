package diag

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Sokal's automatic windowing constant: the integration window M is the
// smallest lag with M >= autocorrWindow * tau(M).
const autocorrWindow = 5.0

// nextPow2 returns the smallest power of two >= n
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// AutocorrFunc estimates the normalized autocorrelation function of a single
// chain via FFT (autocorrelation at lag 0 is 1). The chain is zero-padded to
// twice its length so the circular convolution doesn't wrap.
func AutocorrFunc(chain []float64) ([]float64, error) {
	n := len(chain)
	if n < 2 {
		return nil, errors.Errorf("Chain of len %d is too short for autocorrelation", n)
	}

	mean := stat.Mean(chain, nil)

	n2 := nextPow2(2 * n)
	seq := make([]float64, n2)
	for i, x := range chain {
		seq[i] = x - mean
	}

	fft := fourier.NewFFT(n2)
	coeff := fft.Coefficients(nil, seq)
	for i, c := range coeff {
		re := real(c)
		im := imag(c)
		coeff[i] = complex(re*re+im*im, 0)
	}
	acov := fft.Sequence(nil, coeff)

	if acov[0] <= 0 {
		return nil, errors.Errorf("Chain has zero variance - autocorrelation undefined")
	}

	acf := make([]float64, n)
	for i := 0; i < n; i++ {
		acf[i] = acov[i] / acov[0]
	}

	return acf, nil
}

// IntegratedTime estimates the integrated autocorrelation time of a set of
// chains of the same quantity (one per independent chain or walker): the
// number of steps between effectively independent draws. The autocorrelation
// functions are averaged across chains, then integrated up to a window
// chosen by Sokal's heuristic.
func IntegratedTime(chains [][]float64) (float64, error) {
	if len(chains) < 1 {
		return 0, errors.Errorf("No chains supplied")
	}

	minLen := len(chains[0])
	for _, c := range chains {
		if len(c) < minLen {
			minLen = len(c)
		}
	}
	if minLen < 2 {
		return 0, errors.Errorf("Chain of len %d is too short for autocorrelation", minLen)
	}

	mean := make([]float64, minLen)
	for _, c := range chains {
		acf, err := AutocorrFunc(c[:minLen])
		if err != nil {
			return 0, err
		}
		for i, v := range acf {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(chains))
	}

	// taus[t] = 2 * cumsum(acf)[t] - 1, windowed per Sokal
	tau := 0.0
	cum := 0.0
	for t, v := range mean {
		cum += v
		tau = 2.0*cum - 1.0
		if t > 0 && float64(t) >= autocorrWindow*tau {
			break
		}
	}

	// A pathological chain can drive the estimate below the iid floor
	return math.Max(tau, 1.0), nil
}
