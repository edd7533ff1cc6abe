// Package wavelet implements a continuous wavelet transform of real
// one-dimensional signals, evaluated in the Fourier domain. Wavelet kinds
// are a closed set; each kind contributes only its frequency response, so
// the transform machinery is shared by all of them.
package wavelet

import (
	"fmt"
	"math"
)

// Kind identifies a mother wavelet.
type Kind int

const (
	// Morlet is a Gaussian-enveloped oscillatory wavelet, approximated in
	// the frequency domain by a one-sided Gaussian bump. It responds to
	// quasi-periodic structure, which makes it suited to granular texture.
	Morlet Kind = iota
)

// Morlet constants. The amplitude matches the classic Torrence & Compo
// normalization for omega0 = 6 and must not be altered: downstream results
// are only comparable across implementations if these agree exactly.
const (
	morletOmega0    = 6.0
	morletAmplitude = 0.75112554
)

// String returns the wavelet's name.
func (k Kind) String() string {
	switch k {
	case Morlet:
		return "morlet"
	default:
		return fmt.Sprintf("wavelet.Kind(%d)", int(k))
	}
}

// freqResponse evaluates the wavelet's Fourier-domain response at the given
// scaled angular frequencies. It is a pure function of its input.
func (k Kind) freqResponse(sOmega []float64) ([]float64, error) {
	switch k {
	case Morlet:
		h := make([]float64, len(sOmega))
		for i, so := range sOmega {
			if so < 0 {
				continue
			}
			d := so - morletOmega0
			h[i] = morletAmplitude * math.Exp(-d*d/2)
		}
		return h, nil
	default:
		return nil, fmt.Errorf("wavelet: unknown kind %d", int(k))
	}
}
