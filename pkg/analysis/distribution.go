package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"grainsize/internal/models"
)

// aggregate combines the per-column variance vectors into a normalized
// grain-size distribution with physical units.
//
// The working density is the variance across sampled columns at each scale,
// normalized to sum one, shaped by a Kaiser window whose sharpness follows
// the intensity spread of the whole image, and normalized again. Scales at
// or beyond a third of the column length are the least reliable and are
// discarded; the survivors are mapped to physical sizes through the
// empirical 1.5 factor and the configured resolution.
func aggregate(vectors [][]float64, scales []float64, n int, imageStd, resolution float64) (*models.Distribution, error) {
	ncol := len(vectors)
	if ncol == 0 {
		return nil, errors.New("analysis: no columns were sampled")
	}
	nscale := len(scales)

	v := make([]float64, nscale)
	colVals := make([]float64, ncol)
	for s := 0; s < nscale; s++ {
		for c, vec := range vectors {
			colVals[c] = vec[s]
		}
		v[s] = stat.PopVariance(colVals, nil)
	}

	total := floats.Sum(v)
	if total <= 0 || math.IsNaN(total) {
		return nil, errors.New("analysis: sampled columns carry no variance across scales")
	}
	floats.Scale(1/total, v)

	floats.Mul(v, kaiser(nscale, kaiserBeta(imageStd)))
	total = floats.Sum(v)
	if total <= 0 || math.IsNaN(total) {
		return nil, errors.New("analysis: density vanished under windowing")
	}
	floats.Scale(1/total, v)

	cut := float64(n / 3)
	var sizes, density []float64
	for s := 0; s < nscale; s++ {
		if scales[s] < cut {
			sizes = append(sizes, scales[s]*1.5*resolution)
			density = append(density, v[s])
		}
	}
	if len(sizes) == 0 {
		return nil, errors.New("analysis: no scales survived truncation")
	}

	d := &models.Distribution{
		Sizes:      sizes,
		Density:    density,
		Resolution: resolution,
	}
	d.Mean, d.StdDev, d.Skewness, d.Kurtosis = Moments(sizes, density)
	return d, nil
}

// Moments returns the density-weighted mean, standard deviation, skewness,
// and kurtosis of a grain-size distribution. The 100 divisors on the third
// and fourth moments are a legacy normalization kept so results stay
// numerically comparable with existing datasets.
func Moments(sizes, density []float64) (mean, stdev, skew, kurt float64) {
	for i := range sizes {
		mean += density[i] * sizes[i]
	}
	var m2, m3, m4 float64
	for i := range sizes {
		d := sizes[i] - mean
		w := density[i]
		m2 += w * d * d
		m3 += w * d * d * d
		m4 += w * d * d * d * d
	}
	stdev = math.Sqrt(m2)
	skew = m3 / (100 * stdev * stdev * stdev)
	kurt = m4 / (100 * stdev * stdev * stdev * stdev)
	return mean, stdev, skew, kurt
}

// kaiserBeta derives the window shape from the intensity spread of the whole
// image: flat images get a sharper taper. The truncation to an integer
// multiple of six matches the reference behavior.
func kaiserBeta(imageStd float64) float64 {
	if imageStd <= 0 {
		return 0
	}
	return float64(6 * int(100/imageStd))
}
