// Package visualization renders analysis results for visual inspection: the
// cropped region the pipeline worked on and the final grain-size density
// curve. The core pipeline only returns data; everything here is optional
// and driven by the doplot setting.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// Plotter renders simple raster plots of analysis results.
type Plotter struct {
	width  int
	height int
	margin int
}

// NewPlotter creates a plotter with a fixed canvas size.
func NewPlotter() *Plotter {
	return &Plotter{width: 640, height: 480, margin: 48}
}

// SaveDensityCurve renders the grain-size density curve (size on the x axis,
// density on the y axis) and writes it as a PNG.
func (p *Plotter) SaveDensityCurve(filename string, sizes, density []float64) error {
	if len(sizes) == 0 || len(sizes) != len(density) {
		return fmt.Errorf("visualization: need matching non-empty size and density vectors")
	}

	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	axis := color.RGBA{A: 255}
	curve := color.RGBA{G: 160, A: 255}

	x0, y0 := p.margin, p.height-p.margin
	x1, y1 := p.width-p.margin, p.margin
	drawLine(img, x0, y0, x1, y0, axis)
	drawLine(img, x0, y0, x0, y1, axis)

	maxSize := sizes[len(sizes)-1]
	maxDensity := 0.0
	for _, d := range density {
		if d > maxDensity {
			maxDensity = d
		}
	}
	if maxSize <= 0 || maxDensity <= 0 {
		return fmt.Errorf("visualization: degenerate density curve")
	}

	px := func(s float64) int { return x0 + int(float64(x1-x0)*s/maxSize) }
	py := func(d float64) int { return y0 - int(float64(y0-y1)*d/maxDensity) }

	for i := 1; i < len(sizes); i++ {
		drawLine(img, px(sizes[i-1]), py(density[i-1]), px(sizes[i]), py(density[i]), curve)
	}

	return writePNG(filename, img)
}

// SaveRegion writes a [0, 255] intensity matrix as a grayscale PNG.
func (p *Plotter) SaveRegion(filename string, region [][]float64) error {
	h := len(region)
	if h == 0 {
		return fmt.Errorf("visualization: empty region")
	}
	w := len(region[0])

	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := math.Max(0, math.Min(255, region[y][x]))
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return writePNG(filename, img)
}

func writePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// drawLine draws a straight segment by sampling along its longer axis.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := x1 - x0
	dy := y1 - y0
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		img.SetRGBA(x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		img.SetRGBA(x0+int(math.Round(t*float64(dx))), y0+int(math.Round(t*float64(dy))), c)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
