package models

// Distribution is the grain-size distribution estimated from a single image,
// together with its descriptive statistics. Sizes are in physical units
// (pixel scale multiplied by the configured resolution) and Density holds the
// matching normalized weights, ordered by ascending size.
type Distribution struct {
	// Sizes are the grain sizes in physical units (e.g. mm).
	Sizes []float64

	// Density holds the normalized weight of each size. The vector sums
	// to one before the largest scales are discarded.
	Density []float64

	// Mean is the arithmetic mean grain size, weighted by Density.
	Mean float64

	// StdDev is the sorting (spread) of the distribution.
	StdDev float64

	// Skewness is the weighted third moment about the mean.
	Skewness float64

	// Kurtosis is the weighted fourth moment about the mean.
	Kurtosis float64

	// Resolution is the physical size of one pixel used to scale the
	// distribution, recorded for the summary output.
	Resolution float64
}
