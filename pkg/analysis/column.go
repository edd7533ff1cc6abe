package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"grainsize/pkg/wavelet"
)

// spectrum holds the per-image invariants shared by every column task: the
// padded column length, the wavelet scale set, and the squared-frequency
// vector of the position-axis smoothing kernel. All columns of one image
// share these because they share the same length; the struct is read-only
// once built, so column tasks can use it concurrently.
type spectrum struct {
	n      int // column length
	padLen int // zero-padded length fed to the transform
	npad   int // transform length of the position-axis smoothing
	k2     []float64
	scales []float64

	kind         wavelet.Kind
	largestScale int
	notes        int
	scaling      string
}

func newSpectrum(n int, p *Params) (*spectrum, error) {
	padLen := padLength(n)
	scales, err := wavelet.Scales(padLen, p.LargestScale, p.NotesPerOctave, p.Scaling)
	if err != nil {
		return nil, err
	}
	if len(scales) == 0 {
		return nil, fmt.Errorf("analysis: no usable wavelet scales for column length %d", n)
	}

	npad := smoothLength(n)
	return &spectrum{
		n:            n,
		padLen:       padLen,
		npad:         npad,
		k2:           smoothFreqSq(npad),
		scales:       scales,
		kind:         p.Wavelet,
		largestScale: p.LargestScale,
		notes:        p.NotesPerOctave,
		scaling:      p.Scaling,
	}, nil
}

// analyzeColumn reduces one intensity column to its normalized
// variance-over-scale vector. It is a pure function of the column and the
// spectrum invariants, which is what makes the parallel dispatch safe.
func (sp *spectrum) analyzeColumn(col []float64) ([]float64, error) {
	padded := make([]float64, sp.padLen)
	copy(padded, detrend(col))

	tr, err := wavelet.Compute(padded, sp.kind, sp.largestScale, sp.notes, sp.scaling)
	if err != nil {
		return nil, err
	}
	coeffs := tr.Coefficients()
	scales := tr.ScaleSet()

	fft := fourier.NewCmplxFFT(sp.npad)
	rowHat := make([]complex128, sp.npad)
	freq := make([]complex128, sp.npad)
	smoothed := make([]float64, sp.n)

	out := make([]float64, len(scales))
	for i, s := range scales {
		// Scale-normalized power over the unpadded extent of the column.
		for j := range rowHat {
			rowHat[j] = 0
		}
		for j := 0; j < sp.n; j++ {
			re, im := real(coeffs[i][j]), imag(coeffs[i][j])
			rowHat[j] = complex((re*re+im*im)/s, 0)
		}

		// Gaussian low-pass along the position axis, wider for coarser
		// scales, applied as a multiplication in the frequency domain.
		fft.Coefficients(freq, rowHat)
		for j := range freq {
			freq[j] *= complex(math.Exp(-0.5*s*s*sp.k2[j]), 0)
		}
		fft.Sequence(rowHat, freq)
		for j := 0; j < sp.n; j++ {
			smoothed[j] = real(rowHat[j]) / float64(sp.npad)
		}

		out[i] = stat.PopVariance(smoothed, nil)
	}

	total := floats.Sum(out)
	if total <= 0 || math.IsNaN(total) {
		return nil, fmt.Errorf("analysis: column carries no spectral variance")
	}
	floats.Scale(1/total, out)
	return out, nil
}

// detrend subtracts the least-squares line from y. Adding a constant to the
// input does not change the result.
func detrend(y []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 {
		return out
	}

	xm := float64(n-1) / 2
	ym := floats.Sum(y) / float64(n)
	var num, den float64
	for i, v := range y {
		dx := float64(i) - xm
		num += dx * (v - ym)
		den += dx * dx
	}
	slope := num / den

	for i, v := range y {
		out[i] = v - (ym + slope*(float64(i)-xm))
	}
	return out
}

// padLength returns the power-of-two length a column of n samples is padded
// to before the transform. Lengths already at a power of two are doubled,
// keeping the largest scales clear of the wrap-around.
func padLength(n int) int {
	base2 := math.Floor(math.Log(float64(n))/math.Ln2 + 0.4999)
	return int(math.Pow(2, base2+1))
}

// smoothLength returns the transform length used by the position-axis
// smoothing for columns of n samples.
func smoothLength(n int) int {
	l2 := math.Ceil(math.Log(float64(n))/math.Ln2 + 0.0001)
	return int(math.Pow(2, l2))
}

// smoothFreqSq builds the squared angular-frequency vector of the smoothing
// kernel. The layout reproduces the reference kernel exactly: a leading
// zero, the ascending bins shifted by one slot, then their mirror without
// the Nyquist bin.
func smoothFreqSq(npad int) []float64 {
	step := 2 * math.Pi / float64(npad)
	k2 := make([]float64, npad)
	for i := 0; i < npad/2; i++ {
		w := float64(i) * step
		k2[1+i] = w * w
	}
	half := (npad - 1) / 2
	for i := 0; i < half; i++ {
		w := float64(npad/2-1-i) * step
		k2[1+npad/2+i] = w * w
	}
	return k2
}
