// Package sgolay implements a two-dimensional Savitzky-Golay filter: local
// least-squares fitting of a bivariate polynomial over a sliding window,
// used for smoothing, differentiation, and trend-surface estimation.
package sgolay

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEvenWindow is returned when the window size is not odd.
	ErrEvenWindow = errors.New("sgolay: window size must be odd")

	// ErrOrderTooHigh is returned when the window does not contain enough
	// samples to fit all monomial terms of the requested order.
	ErrOrderTooHigh = errors.New("sgolay: order is too high for the window size")

	// ErrSingular is returned when the design matrix has no usable
	// pseudo-inverse. Callers typically fall back to the unfiltered input.
	ErrSingular = errors.New("sgolay: singular design matrix")
)

// Filter holds the precomputed least-squares kernels for a fixed window size
// and polynomial order. A Filter is immutable after construction and safe for
// concurrent use.
type Filter struct {
	window int
	order  int
	half   int

	// kernels[0] is the smoothing kernel, kernels[1] and kernels[2] are
	// the row- and column-derivative kernels (already negated so that
	// convolution yields the derivative directly).
	kernels [][][]float64
}

// New builds a filter for the given odd window size and polynomial order.
// The fitted polynomial is p(x,y) = sum of a_ij x^i y^j over i+j <= order,
// where x is the row offset and y the column offset within the window.
func New(window, order int) (*Filter, error) {
	nterms := (order + 1) * (order + 2) / 2

	if window%2 == 0 {
		return nil, ErrEvenWindow
	}
	if window*window < nterms {
		return nil, ErrOrderTooHigh
	}

	half := window / 2

	// Design matrix: one row per window sample, one column per monomial,
	// sample rows ordered with the row offset varying slowest.
	a := mat.NewDense(window*window, nterms, nil)
	r := 0
	for xi := -half; xi <= half; xi++ {
		for yi := -half; yi <= half; yi++ {
			c := 0
			for k := 0; k <= order; k++ {
				for n := 0; n <= k; n++ {
					a.Set(r, c, math.Pow(float64(xi), float64(k-n))*math.Pow(float64(yi), float64(n)))
					c++
				}
			}
			r++
		}
	}

	pinv, err := pseudoInverse(a)
	if err != nil {
		return nil, err
	}

	f := &Filter{window: window, order: order, half: half}

	// The first pseudo-inverse row reconstructs the constant term (the
	// smoothed value); the next two reconstruct the first-order terms and
	// act as partial-derivative kernels.
	nk := 1
	if order >= 1 {
		nk = 3
	}
	f.kernels = make([][][]float64, nk)
	for k := 0; k < nk; k++ {
		kern := make([][]float64, window)
		for i := 0; i < window; i++ {
			kern[i] = make([]float64, window)
			for j := 0; j < window; j++ {
				v := pinv.At(k, i*window+j)
				if k > 0 {
					v = -v
				}
				kern[i][j] = v
			}
		}
		f.kernels[k] = kern
	}

	return f, nil
}

// Window returns the filter's window size.
func (f *Filter) Window() int { return f.window }

// Order returns the filter's polynomial order.
func (f *Filter) Order() int { return f.order }

// Smooth returns the local polynomial estimate of z, with the same shape as z.
func (f *Filter) Smooth(z [][]float64) ([][]float64, error) {
	return f.apply(z, 0)
}

// DerivRow returns the partial derivative of the fitted surface along rows.
func (f *Filter) DerivRow(z [][]float64) ([][]float64, error) {
	if f.order < 1 {
		return nil, fmt.Errorf("sgolay: order %d has no derivative kernel", f.order)
	}
	return f.apply(z, 1)
}

// DerivCol returns the partial derivative of the fitted surface along columns.
func (f *Filter) DerivCol(z [][]float64) ([][]float64, error) {
	if f.order < 1 {
		return nil, fmt.Errorf("sgolay: order %d has no derivative kernel", f.order)
	}
	return f.apply(z, 2)
}

// Gradient returns both partial derivatives of the fitted surface.
func (f *Filter) Gradient(z [][]float64) (drow, dcol [][]float64, err error) {
	drow, err = f.DerivRow(z)
	if err != nil {
		return nil, nil, err
	}
	dcol, err = f.DerivCol(z)
	if err != nil {
		return nil, nil, err
	}
	return drow, dcol, nil
}

func (f *Filter) apply(z [][]float64, kernel int) ([][]float64, error) {
	rows := len(z)
	if rows == 0 || len(z[0]) == 0 {
		return nil, fmt.Errorf("sgolay: empty input matrix")
	}
	cols := len(z[0])
	if rows < f.window || cols < f.window {
		return nil, fmt.Errorf("sgolay: input %dx%d is smaller than window %d", rows, cols, f.window)
	}

	padded := f.pad(z)
	return fftConvolveValid(padded, f.kernels[kernel]), nil
}

// pad extends z by half a window on every side, mirror-reflecting the border
// with an offset correction: the reflected value is pushed away from the
// boundary by its absolute difference from it, which suppresses overshoot at
// the edges of the fitted surface.
func (f *Filter) pad(z [][]float64) [][]float64 {
	h := f.half
	rows := len(z)
	cols := len(z[0])
	pr := rows + 2*h
	pc := cols + 2*h

	p := make([][]float64, pr)
	for i := range p {
		p[i] = make([]float64, pc)
	}

	// Central block.
	for i := 0; i < rows; i++ {
		copy(p[h+i][h:h+cols], z[i])
	}

	// Top and bottom bands.
	for r := 0; r < h; r++ {
		for j := 0; j < cols; j++ {
			top := z[0][j]
			p[r][h+j] = top - math.Abs(z[h-r][j]-top)
			bot := z[rows-1][j]
			p[pr-h+r][h+j] = bot + math.Abs(z[rows-2-r][j]-bot)
		}
	}

	// Left and right bands.
	for i := 0; i < rows; i++ {
		for c := 0; c < h; c++ {
			left := z[i][0]
			p[h+i][c] = left - math.Abs(z[i][h-c]-left)
			right := z[i][cols-1]
			p[h+i][pc-h+c] = right + math.Abs(z[i][cols-2-c]-right)
		}
	}

	// Corners. Top-left and bottom-right reflect about the corner sample;
	// the remaining two reflect the already-filled bands so that all four
	// blocks stay consistent with their adjacent edges.
	for r := 0; r < h; r++ {
		for c := 0; c < h; c++ {
			tl := z[0][0]
			p[r][c] = tl - math.Abs(z[h-r][h-c]-tl)
			br := z[rows-1][cols-1]
			p[pr-h+r][pc-h+c] = br + math.Abs(z[rows-2-r][cols-2-c]-br)
		}
	}
	for r := 0; r < h; r++ {
		for c := 0; c < h; c++ {
			tr := p[h][pc-h+c]
			p[r][pc-h+c] = tr - math.Abs(p[2*h-r][pc-h+c]-tr)
			bl := p[pr-h+r][h]
			p[pr-h+r][c] = bl - math.Abs(p[pr-h+r][2*h-c]-bl)
		}
	}

	return p
}

// pseudoInverse computes the Moore-Penrose pseudo-inverse of a via SVD.
func pseudoInverse(a *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, ErrSingular
	}

	rows, colsN := a.Dims()
	vals := svd.Values(nil)

	maxDim := rows
	if colsN > maxDim {
		maxDim = colsN
	}
	tol := float64(maxDim) * vals[0] * 1e-15

	d := mat.NewDense(colsN, colsN, nil)
	for i, s := range vals {
		if s <= tol {
			return nil, ErrSingular
		}
		d.Set(i, i, 1/s)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var tmp, pinv mat.Dense
	tmp.Mul(&v, d)
	pinv.Mul(&tmp, u.T())
	return &pinv, nil
}
