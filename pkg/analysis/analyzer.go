// Package analysis implements the wavelet grain-size pipeline: it reduces a
// grayscale image of resolved grains to a grain-size distribution and its
// descriptive statistics, using the continuous-wavelet-transform method of
// Buscombe (2013). No calibration against known grain sizes is required.
//
// The per-image pipeline removes a low-frequency trend surface with a 2D
// Savitzky-Golay fit, analyses a regularly sampled subset of image columns
// in parallel (each column is detrended, zero-padded, Morlet-transformed,
// scale-normalized, and smoothed before being reduced to a variance-over-
// scale vector), and aggregates the column vectors into a physical-unit
// density curve.
package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"grainsize/internal/models"
	"grainsize/pkg/sgolay"
	"grainsize/pkg/wavelet"
)

// Params holds the analysis configuration.
type Params struct {
	// Density is the column sampling stride: every Density-th column of
	// the cropped image is analysed.
	Density int

	// Resolution is the physical size of one pixel, e.g. mm/pixel. The
	// output sizes are pixel scales multiplied by this value.
	Resolution float64

	// NumWorkers is the size of the worker pool used for the per-column
	// analysis.
	NumWorkers int

	// Wavelet selects the mother wavelet.
	Wavelet wavelet.Kind

	// LargestScale bounds the coarsest wavelet scale as padded-length /
	// LargestScale.
	LargestScale int

	// NotesPerOctave is the number of scale intervals per octave in "log"
	// scaling.
	NotesPerOctave int

	// Scaling selects "log" or "linear" scale spacing.
	Scaling string

	// Log receives progress and degradation events.
	Log zerolog.Logger
}

// DefaultParams returns the parameters the method was tuned with.
func DefaultParams() *Params {
	return &Params{
		Density:        10,
		Resolution:     1.0,
		NumWorkers:     4,
		Wavelet:        wavelet.Morlet,
		LargestScale:   3,
		NotesPerOctave: 8,
		Scaling:        "log",
		Log:            zerolog.Nop(),
	}
}

// Analyzer runs the grain-size pipeline on cropped grayscale images.
type Analyzer struct {
	params *Params
}

// NewAnalyzer creates an analyzer with the provided parameters. A nil params
// selects the defaults.
func NewAnalyzer(params *Params) *Analyzer {
	if params == nil {
		params = DefaultParams()
	}
	return &Analyzer{params: params}
}

// Analyze estimates the grain-size distribution of a square grayscale
// intensity matrix with values in [0, 255], as produced by the image
// preprocessor. The input is not modified.
func (a *Analyzer) Analyze(region [][]float64) (*models.Distribution, error) {
	p := a.params
	n := len(region)
	if n == 0 || len(region[0]) == 0 {
		return nil, errors.New("analysis: empty image")
	}
	if len(region[0]) != n {
		return nil, fmt.Errorf("analysis: expected a square region, got %dx%d", n, len(region[0]))
	}

	start := time.Now()

	// Intensity spread of the whole image, before any filtering; it sets
	// the Kaiser shape in the aggregation stage.
	sigma := stat.PopStdDev(flatten(region), nil)

	use := a.detrendSurface(region, n)

	sp, err := newSpectrum(n, p)
	if err != nil {
		return nil, err
	}

	density := p.Density
	if density < 1 {
		density = 1
	}
	var cols []int
	for j := 1; j < n-1; j += density {
		cols = append(cols, j)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("analysis: image of size %d is too small to sample columns", n)
	}

	p.Log.Debug().
		Int("columns", len(cols)).
		Int("scales", len(sp.scales)).
		Int("workers", p.NumWorkers).
		Msg("dispatching column analysis")

	vectors, err := dispatchColumns(sp, use, cols, p.NumWorkers)
	if err != nil {
		return nil, err
	}

	dist, err := aggregate(vectors, sp.scales, n, sigma, p.Resolution)
	if err != nil {
		return nil, err
	}

	p.Log.Debug().
		Dur("elapsed", time.Since(start)).
		Float64("mean", dist.Mean).
		Float64("stdev", dist.StdDev).
		Msg("image analysed")

	return dist, nil
}

// detrendSurface estimates the low-frequency trend surface with a 2D
// Savitzky-Golay fit and returns the residual rescaled to the full 8-bit
// range. When the filter cannot be applied the raw image is returned
// instead: the analysis still runs, only against a less flattened
// background, and the degradation is logged.
func (a *Analyzer) detrendSurface(region [][]float64, n int) [][]float64 {
	window := n / 4
	if window%2 == 0 {
		window--
	}

	f, err := sgolay.New(window, 3)
	if err == nil {
		var trend [][]float64
		trend, err = f.Smooth(region)
		if err == nil {
			resid := make([][]float64, n)
			for i := range region {
				resid[i] = make([]float64, n)
				for j := range region[i] {
					resid[i][j] = region[i][j] - trend[i][j]
				}
			}
			return rescale(resid, 0, 255)
		}
	}

	a.params.Log.Warn().
		Err(err).
		Int("window", window).
		Msg("trend removal failed, analysing the unfiltered image")
	return region
}

// rescale maps m linearly onto [lo, hi]. A constant matrix maps to lo.
func rescale(m [][]float64, lo, hi float64) [][]float64 {
	min, max := m[0][0], m[0][0]
	for i := range m {
		for _, v := range m[i] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}

	out := make([][]float64, len(m))
	for i := range m {
		out[i] = make([]float64, len(m[i]))
		if max == min {
			for j := range m[i] {
				out[i][j] = lo
			}
			continue
		}
		for j, v := range m[i] {
			out[i][j] = (hi-lo)*(v-min)/(max-min) + lo
		}
	}
	return out
}

func flatten(m [][]float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([]float64, 0, len(m)*len(m[0]))
	for i := range m {
		out = append(out, m[i]...)
	}
	return out
}
