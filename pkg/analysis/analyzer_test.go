package analysis

import (
	"math"
	"testing"
)

// TestAnalyzeValidation covers the input-shape checks.
func TestAnalyzeValidation(t *testing.T) {
	a := NewAnalyzer(nil)

	if _, err := a.Analyze(nil); err == nil {
		t.Error("Expected error for empty input")
	}

	rect := make([][]float64, 64)
	for i := range rect {
		rect[i] = make([]float64, 32)
	}
	if _, err := a.Analyze(rect); err == nil {
		t.Error("Expected error for a non-square region")
	}
}

// TestAnalyzeSyntheticTexture runs the full pipeline on a synthetic periodic
// texture and checks that the recovered mean size tracks the texture period.
func TestAnalyzeSyntheticTexture(t *testing.T) {
	n := 128
	period := 12.0
	img := testImage(n, period)

	a := NewAnalyzer(nil)
	dist, err := a.Analyze(img)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(dist.Sizes) == 0 || len(dist.Sizes) != len(dist.Density) {
		t.Fatalf("Malformed distribution: %d sizes, %d densities",
			len(dist.Sizes), len(dist.Density))
	}
	for i := 1; i < len(dist.Sizes); i++ {
		if dist.Sizes[i] <= dist.Sizes[i-1] {
			t.Fatalf("Sizes not strictly increasing at %d", i)
		}
	}

	sum := 0.0
	for _, v := range dist.Density {
		if v < 0 || math.IsNaN(v) {
			t.Fatalf("Invalid density value %g", v)
		}
		sum += v
	}
	if sum <= 0 || sum > 1+1e-9 {
		t.Fatalf("Density sum out of range: %g", sum)
	}

	// The 1.5 empirical factor maps the dominant wavelet scale near the
	// texture period to a mean around 1.5x the period. Allow a broad band
	// since the spectrum carries tails on both sides.
	if dist.Mean < period/2 || dist.Mean > period*4 {
		t.Errorf("Expected mean near %g, got %g", 1.5*period, dist.Mean)
	}
	if dist.StdDev <= 0 || math.IsNaN(dist.StdDev) {
		t.Errorf("Invalid stdev %g", dist.StdDev)
	}
}

// TestAnalyzeResolutionScaling verifies that the resolution parameter scales
// sizes linearly without touching the density shape.
func TestAnalyzeResolutionScaling(t *testing.T) {
	n := 128
	img := testImage(n, 12)

	p1 := DefaultParams()
	dist1, err := NewAnalyzer(p1).Analyze(img)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	p2 := DefaultParams()
	p2.Resolution = 0.25
	dist2, err := NewAnalyzer(p2).Analyze(img)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(dist1.Sizes) != len(dist2.Sizes) {
		t.Fatalf("Size counts differ: %d vs %d", len(dist1.Sizes), len(dist2.Sizes))
	}
	for i := range dist1.Sizes {
		if math.Abs(dist2.Sizes[i]-0.25*dist1.Sizes[i]) > 1e-9 {
			t.Fatalf("Sizes[%d] not scaled by resolution: %g vs %g",
				i, dist1.Sizes[i], dist2.Sizes[i])
		}
		if math.Abs(dist2.Density[i]-dist1.Density[i]) > 1e-9 {
			t.Fatalf("Density[%d] changed with resolution: %g vs %g",
				i, dist1.Density[i], dist2.Density[i])
		}
	}
	if math.Abs(dist2.Mean-0.25*dist1.Mean) > 1e-9 {
		t.Errorf("Mean not scaled by resolution: %g vs %g", dist1.Mean, dist2.Mean)
	}
}

// TestAnalyzeWorkerCountInvariance verifies the pool size does not affect the
// distribution.
func TestAnalyzeWorkerCountInvariance(t *testing.T) {
	n := 128
	img := testImage(n, 10)

	p1 := DefaultParams()
	p1.NumWorkers = 1
	base, err := NewAnalyzer(p1).Analyze(img)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	for _, workers := range []int{2, 8} {
		p := DefaultParams()
		p.NumWorkers = workers
		got, err := NewAnalyzer(p).Analyze(img)
		if err != nil {
			t.Fatalf("Analyze with %d workers failed: %v", workers, err)
		}
		if got.Mean != base.Mean || got.StdDev != base.StdDev {
			t.Fatalf("Statistics differ with %d workers: mean %g vs %g",
				workers, got.Mean, base.Mean)
		}
		for i := range base.Density {
			if got.Density[i] != base.Density[i] {
				t.Fatalf("Density differs with %d workers at %d", workers, i)
			}
		}
	}
}

// TestAnalyzeUniformImage verifies that a featureless image is rejected.
func TestAnalyzeUniformImage(t *testing.T) {
	n := 64
	img := make([][]float64, n)
	for i := range img {
		img[i] = make([]float64, n)
		for j := range img[i] {
			img[i][j] = 180
		}
	}

	if _, err := NewAnalyzer(nil).Analyze(img); err == nil {
		t.Error("Expected error for a uniform image")
	}
}

// TestRescale covers the linear mapping and the constant-matrix case.
func TestRescale(t *testing.T) {
	m := [][]float64{{-2, 0}, {2, 6}}
	out := rescale(m, 0, 255)
	if out[0][0] != 0 || out[1][1] != 255 {
		t.Errorf("Expected endpoints 0 and 255, got %g and %g", out[0][0], out[1][1])
	}
	if math.Abs(out[0][1]-63.75) > 1e-9 {
		t.Errorf("Expected 63.75 for interior value, got %g", out[0][1])
	}

	flat := rescale([][]float64{{5, 5}, {5, 5}}, 0, 255)
	for i := range flat {
		for j := range flat[i] {
			if flat[i][j] != 0 {
				t.Errorf("Expected constant matrix to map to 0, got %g", flat[i][j])
			}
		}
	}
}
