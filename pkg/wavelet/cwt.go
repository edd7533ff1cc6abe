package wavelet

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrInvalidScaling is returned when the scaling mode is neither "log" nor
// "linear".
var ErrInvalidScaling = errors.New("wavelet: scaling must be \"linear\" or \"log\"")

// Transform holds the wavelet coefficients of one signal. It is produced by
// Compute, immutable afterwards, and shares no state with other transforms,
// so independent transforms may run concurrently.
type Transform struct {
	coeffs [][]complex128
	scales []float64
}

// Scales returns the wavelet scales for a signal of length n.
//
// In "log" mode the scales are spaced at notes intervals per octave, with
// the smallest scale approximately 2 and the largest n/largestScale. In
// "linear" mode they are the consecutive integers from 2 up to
// n/largestScale/2 - 1.
func Scales(n, largestScale, notes int, scaling string) ([]float64, error) {
	switch scaling {
	case "log":
		if notes <= 0 {
			notes = 1
		}
		noctave := ilog2(n / largestScale / 2)
		nscale := notes * noctave
		scales := make([]float64, nscale)
		for j := range scales {
			scales[j] = float64(n) / (float64(largestScale) * math.Pow(2, float64(nscale-1-j)/float64(notes)))
		}
		return scales, nil
	case "linear":
		nmax := n / largestScale / 2
		if nmax <= 2 {
			return nil, nil
		}
		scales := make([]float64, nmax-2)
		for i := range scales {
			scales[i] = float64(i + 2)
		}
		return scales, nil
	default:
		return nil, fmt.Errorf("%w, got %q", ErrInvalidScaling, scaling)
	}
}

// Compute runs the continuous wavelet transform of signal at the scale set
// derived from (largestScale, notes, scaling). The convolution with each
// dilated wavelet is carried out as a multiplication in the Fourier domain.
// Power-of-two signal lengths are cheapest but not required.
func Compute(signal []float64, kind Kind, largestScale, notes int, scaling string) (*Transform, error) {
	n := len(signal)
	if n == 0 {
		return nil, errors.New("wavelet: empty signal")
	}

	scales, err := Scales(n, largestScale, notes, scaling)
	if err != nil {
		return nil, err
	}

	fft := fourier.NewCmplxFFT(n)
	src := make([]complex128, n)
	for i, v := range signal {
		src[i] = complex(v, 0)
	}
	dataHat := make([]complex128, n)
	fft.Coefficients(dataHat, src)

	// Angular-frequency bins in FFT order: 0..n/2-1 then -n/2..-1.
	omega := make([]float64, n)
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n/2; i++ {
		omega[i] = float64(i) * step
	}
	for i := n / 2; i < n; i++ {
		omega[i] = float64(i-n) * step
	}

	t := &Transform{
		coeffs: make([][]complex128, len(scales)),
		scales: scales,
	}

	sOmega := make([]float64, n)
	convHat := make([]complex128, n)
	invScale := complex(1/float64(n), 0)
	for si, s := range scales {
		for i, w := range omega {
			sOmega[i] = w * s
		}
		psiHat, err := kind.freqResponse(sOmega)
		if err != nil {
			return nil, err
		}

		norm := math.Sqrt(2 * math.Pi * s)
		for i := range convHat {
			convHat[i] = complex(psiHat[i]*norm, 0) * dataHat[i]
		}

		row := make([]complex128, n)
		fft.Sequence(row, convHat)
		for i := range row {
			row[i] *= invScale
		}
		t.coeffs[si] = row
	}

	return t, nil
}

// Coefficients returns the complex coefficient matrix [scale x position].
func (t *Transform) Coefficients() [][]complex128 {
	return t.coeffs
}

// Power returns the squared magnitude of the coefficients.
func (t *Transform) Power() [][]float64 {
	p := make([][]float64, len(t.coeffs))
	for i, row := range t.coeffs {
		p[i] = make([]float64, len(row))
		for j, c := range row {
			re, im := real(c), imag(c)
			p[i][j] = re*re + im*im
		}
	}
	return p
}

// ScaleSet returns the scales used in the transform, smallest first.
func (t *Transform) ScaleSet() []float64 {
	return t.scales
}

// NScale returns the number of scales.
func (t *Transform) NScale() int {
	return len(t.scales)
}

// ilog2 returns the integer base-2 logarithm of x. The small offset guards
// against exact powers of two landing just below an integer.
func ilog2(x int) int {
	if x <= 1 {
		return 0
	}
	return int(math.Log(float64(x))/math.Ln2 + 0.0001)
}
