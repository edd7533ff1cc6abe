package sgolay

import (
	"errors"
	"math"
	"testing"
)

// TestNewValidation verifies the parameter checks on filter construction.
func TestNewValidation(t *testing.T) {
	if _, err := New(4, 2); !errors.Is(err, ErrEvenWindow) {
		t.Errorf("Expected ErrEvenWindow for window=4, got %v", err)
	}

	// A 3x3 window has 9 samples but order 3 needs 10 monomial terms.
	if _, err := New(3, 3); !errors.Is(err, ErrOrderTooHigh) {
		t.Errorf("Expected ErrOrderTooHigh for window=3 order=3, got %v", err)
	}

	if _, err := New(5, 2); err != nil {
		t.Errorf("Expected window=5 order=2 to be valid, got %v", err)
	}
}

// TestSmoothConstant verifies that smoothing a constant matrix returns the
// same constant.
func TestSmoothConstant(t *testing.T) {
	f, err := New(5, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	n := 16
	z := make([][]float64, n)
	for i := range z {
		z[i] = make([]float64, n)
		for j := range z[i] {
			z[i][j] = 7.5
		}
	}

	out, err := f.Smooth(z)
	if err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}

	if len(out) != n || len(out[0]) != n {
		t.Fatalf("Expected %dx%d output, got %dx%d", n, n, len(out), len(out[0]))
	}
	for i := range out {
		for j := range out[i] {
			if math.Abs(out[i][j]-7.5) > 1e-8 {
				t.Fatalf("Expected 7.5 at (%d,%d), got %g", i, j, out[i][j])
			}
		}
	}
}

// TestSmoothPreservesPlane verifies that a polynomial fit of order >= 1
// reproduces a rising ramp exactly, including at the mirrored edges. The
// offset-corrected padding extends monotonically rising data linearly, so
// the fit has nothing to smooth away.
func TestSmoothPreservesPlane(t *testing.T) {
	f, err := New(5, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	n := 20
	z := make([][]float64, n)
	for i := range z {
		z[i] = make([]float64, n)
		for j := range z[i] {
			z[i][j] = 2*float64(i) + 3*float64(j) + 5
		}
	}

	out, err := f.Smooth(z)
	if err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}

	for i := range out {
		for j := range out[i] {
			if math.Abs(out[i][j]-z[i][j]) > 1e-6 {
				t.Fatalf("Plane not preserved at (%d,%d): expected %g, got %g",
					i, j, z[i][j], out[i][j])
			}
		}
	}
}

// TestGradientOfPlane verifies the derivative kernels on a plane with known
// slopes.
func TestGradientOfPlane(t *testing.T) {
	f, err := New(7, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	n := 24
	z := make([][]float64, n)
	for i := range z {
		z[i] = make([]float64, n)
		for j := range z[i] {
			z[i][j] = 2*float64(i) + 3*float64(j)
		}
	}

	drow, dcol, err := f.Gradient(z)
	if err != nil {
		t.Fatalf("Gradient failed: %v", err)
	}

	// Check away from the corners, where the band reflections interact.
	for i := 4; i < n-4; i++ {
		for j := 4; j < n-4; j++ {
			if math.Abs(drow[i][j]-2) > 1e-6 {
				t.Fatalf("Expected row derivative 2 at (%d,%d), got %g", i, j, drow[i][j])
			}
			if math.Abs(dcol[i][j]-3) > 1e-6 {
				t.Fatalf("Expected column derivative 3 at (%d,%d), got %g", i, j, dcol[i][j])
			}
		}
	}
}

// TestSmoothTooSmall verifies the input-size check.
func TestSmoothTooSmall(t *testing.T) {
	f, err := New(7, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	z := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	if _, err := f.Smooth(z); err == nil {
		t.Errorf("Expected error for input smaller than window")
	}
}

// TestFFTConvolveValid checks the frequency-domain convolution against a
// direct spatial computation.
func TestFFTConvolveValid(t *testing.T) {
	z := [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	kern := [][]float64{
		{1, 0},
		{0, -1},
	}

	got := fftConvolveValid(z, kern)

	// Direct valid convolution with the flipped kernel.
	want := make([][]float64, 3)
	for i := range want {
		want[i] = make([]float64, 3)
		for j := range want[i] {
			sum := 0.0
			for u := 0; u < 2; u++ {
				for v := 0; v < 2; v++ {
					sum += kern[u][v] * z[i+1-u][j+1-v]
				}
			}
			want[i][j] = sum
		}
	}

	for i := range want {
		for j := range want[i] {
			if math.Abs(got[i][j]-want[i][j]) > 1e-9 {
				t.Errorf("Convolution mismatch at (%d,%d): expected %g, got %g",
					i, j, want[i][j], got[i][j])
			}
		}
	}
}

// TestNextPow2 verifies the padding size helper.
func TestNextPow2(t *testing.T) {
	cases := []struct{ in, want int }{
		{1, 1}, {2, 2}, {3, 4}, {5, 8}, {17, 32}, {64, 64},
	}
	for _, c := range cases {
		if got := nextPow2(c.in); got != c.want {
			t.Errorf("nextPow2(%d): expected %d, got %d", c.in, c.want, got)
		}
	}
}
