package imgio

import (
	"fmt"
	"os"
	"strings"
	"time"

	"grainsize/internal/models"
)

// WriteDistribution writes the two-column "size, density" table next to the
// analysed image as <image path>_psd.txt and returns the path written.
func WriteDistribution(imagePath string, d *models.Distribution) (string, error) {
	out := imagePath + "_psd.txt"

	var b strings.Builder
	for i := range d.Sizes {
		fmt.Fprintf(&b, "%g, %g\n", d.Sizes[i], d.Density[i])
	}
	if err := os.WriteFile(out, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing distribution table: %w", err)
	}
	return out, nil
}

// WriteSummary writes the timestamped summary record as
// <image path>_summary.txt and returns the path written. The %-prefixed
// labels keep the file loadable by tools that read the historical format.
func WriteSummary(imagePath string, d *models.Distribution) (string, error) {
	out := imagePath + "_summary.txt"

	var b strings.Builder
	fmt.Fprintf(&b, "%%%s\n", time.Now().Format("3:04PM -0700 on Jan 02, 2006"))
	b.WriteString("% grain size results ...\n")
	b.WriteString("% resolution:\n")
	fmt.Fprintf(&b, "%g\n", d.Resolution)
	b.WriteString("% mean grain size:\n")
	fmt.Fprintf(&b, "%g\n", d.Mean)
	b.WriteString("% sorting :\n")
	fmt.Fprintf(&b, "%g\n", d.StdDev)
	b.WriteString("% skewness :\n")
	fmt.Fprintf(&b, "%g\n", d.Skewness)
	b.WriteString("% kurtosis :\n")
	fmt.Fprintf(&b, "%g\n", d.Kurtosis)

	if err := os.WriteFile(out, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}
	return out, nil
}
