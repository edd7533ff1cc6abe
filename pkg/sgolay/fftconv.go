package sgolay

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fftConvolveValid computes the 2D convolution of z with kern in the
// frequency domain and returns only the fully-overlapped ("valid") region,
// of shape (rows(z)-rows(kern)+1) x (cols(z)-cols(kern)+1).
//
// Both operands are zero-padded to power-of-two dimensions so the transforms
// stay cheap even for the large windows used in trend estimation.
func fftConvolveValid(z, kern [][]float64) [][]float64 {
	zr, zc := len(z), len(z[0])
	kr, kc := len(kern), len(kern[0])

	fr := nextPow2(zr + kr - 1)
	fc := nextPow2(zc + kc - 1)

	a := forward2D(z, fr, fc)
	b := forward2D(kern, fr, fc)
	for i := range a {
		for j := range a[i] {
			a[i][j] *= b[i][j]
		}
	}
	inverse2D(a)

	out := make([][]float64, zr-kr+1)
	for i := range out {
		out[i] = make([]float64, zc-kc+1)
		for j := range out[i] {
			out[i][j] = real(a[i+kr-1][j+kc-1])
		}
	}
	return out
}

// forward2D zero-pads m to fr x fc and transforms it, rows first then
// columns.
func forward2D(m [][]float64, fr, fc int) [][]complex128 {
	out := make([][]complex128, fr)
	for i := range out {
		out[i] = make([]complex128, fc)
	}
	for i := range m {
		for j, v := range m[i] {
			out[i][j] = complex(v, 0)
		}
	}

	rowFFT := fourier.NewCmplxFFT(fc)
	buf := make([]complex128, fc)
	for i := 0; i < fr; i++ {
		rowFFT.Coefficients(buf, out[i])
		copy(out[i], buf)
	}

	colFFT := fourier.NewCmplxFFT(fr)
	col := make([]complex128, fr)
	dst := make([]complex128, fr)
	for j := 0; j < fc; j++ {
		for i := 0; i < fr; i++ {
			col[i] = out[i][j]
		}
		colFFT.Coefficients(dst, col)
		for i := 0; i < fr; i++ {
			out[i][j] = dst[i]
		}
	}
	return out
}

// inverse2D applies the unnormalized inverse transform in place and rescales
// by the transform area.
func inverse2D(m [][]complex128) {
	fr := len(m)
	fc := len(m[0])

	rowFFT := fourier.NewCmplxFFT(fc)
	buf := make([]complex128, fc)
	for i := 0; i < fr; i++ {
		rowFFT.Sequence(buf, m[i])
		copy(m[i], buf)
	}

	colFFT := fourier.NewCmplxFFT(fr)
	col := make([]complex128, fr)
	dst := make([]complex128, fr)
	for j := 0; j < fc; j++ {
		for i := 0; i < fr; i++ {
			col[i] = m[i][j]
		}
		colFFT.Sequence(dst, col)
		for i := 0; i < fr; i++ {
			m[i][j] = dst[i]
		}
	}

	scale := complex(1/float64(fr*fc), 0)
	for i := range m {
		for j := range m[i] {
			m[i][j] *= scale
		}
	}
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
