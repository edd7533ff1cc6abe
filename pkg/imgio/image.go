// Package imgio provides the thin I/O collaborators around the analysis
// pipeline: raster decoding to grayscale intensity matrices, central-square
// cropping, image discovery in the input directory, and the result writers.
package imgio

import (
	"errors"
	"fmt"
	"image"
	"os"

	// Registered decoders for the supported input formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// ErrDecode wraps failures to open or decode an input image, so callers can
// choose between skipping the file and aborting the batch.
var ErrDecode = errors.New("imgio: cannot decode image")

// LoadGray decodes the image at path into a grayscale intensity matrix with
// values in [0, 255], rows first.
func LoadGray(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return ToGray(img), nil
}

// ToGray converts an image to a [0, 255] luminance matrix using the
// Rec. 601 weights.
func ToGray(img image.Image) [][]float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	m := make([][]float64, h)
	for y := 0; y < h; y++ {
		m[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// 16-bit channels scaled back to the 8-bit range.
			m[y][x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
		}
	}
	return m
}

// CropCentralSquare returns the largest centred square of m as a copy.
func CropCentralSquare(m [][]float64) [][]float64 {
	h := len(m)
	if h == 0 {
		return nil
	}
	w := len(m[0])
	size := w
	if h < size {
		size = h
	}
	ox := w/2 - size/2
	oy := h/2 - size/2

	out := make([][]float64, size)
	for i := range out {
		out[i] = append([]float64(nil), m[oy+i][ox:ox+size]...)
	}
	return out
}
