// Command grainsize estimates sediment grain-size distributions from images
// of resolved grains, using the continuous-wavelet-transform method of
// Buscombe (2013). It walks a directory of JPEG/TIFF/PNG images, analyses
// each one, and writes a distribution table and a summary record next to it.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"grainsize/pkg/analysis"
	"grainsize/pkg/config"
	"grainsize/pkg/imgio"
	"grainsize/pkg/visualization"
)

func main() {
	inputDir := flag.String("input", "", "Directory containing sediment images (\"pwd\" for the current directory)")
	configPath := flag.String("config", "", "Optional YAML configuration file")
	density := flag.Int("density", 0, "Column sampling stride (overrides config)")
	resolution := flag.Float64("resolution", 0, "Image resolution in mm/pixel (overrides config)")
	workers := flag.Int("workers", 0, "Worker pool size (overrides config)")
	doPlot := flag.Bool("plot", false, "Render the density curve and cropped region as PNG")
	strict := flag.Bool("strict", false, "Abort the batch on the first failed image")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	folder := *inputDir
	if folder == "pwd" {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatal().Err(err).Msg("resolving working directory")
		}
		folder = wd
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}
	if *density > 0 {
		cfg.Processing.Density = *density
	}
	if *resolution > 0 {
		cfg.Processing.Resolution = *resolution
	}
	if *workers > 0 {
		cfg.Processing.NumWorkers = *workers
	}
	if *doPlot {
		cfg.Output.DoPlot = true
	}
	if *strict {
		cfg.Processing.Strict = true
	}

	params := analysis.DefaultParams()
	params.Density = cfg.Processing.Density
	params.Resolution = cfg.Processing.Resolution
	params.NumWorkers = cfg.Processing.NumWorkers
	params.LargestScale = cfg.Wavelet.LargestScale
	params.NotesPerOctave = cfg.Wavelet.NotesPerOctave
	params.Scaling = cfg.Wavelet.Scaling
	params.Log = log
	analyzer := analysis.NewAnalyzer(params)

	paths, err := imgio.DiscoverImages(folder)
	if err != nil {
		log.Fatal().Err(err).Msg("discovering images")
	}
	if len(paths) == 0 {
		log.Fatal().Str("folder", folder).Msg("no supported images found")
	}

	log.Info().
		Int("images", len(paths)).
		Str("folder", folder).
		Int("density", params.Density).
		Float64("resolution", params.Resolution).
		Int("workers", params.NumWorkers).
		Msg("digital grain size analysis")

	outputsDir := filepath.Join(folder, "outputs")
	if cfg.Output.DoPlot {
		if err := os.MkdirAll(outputsDir, 0755); err != nil {
			log.Fatal().Err(err).Msg("creating outputs directory")
		}
	}

	start := time.Now()
	analysed := 0
	for _, path := range paths {
		if err := processImage(path, analyzer, cfg, outputsDir, log); err != nil {
			if cfg.Processing.Strict {
				log.Fatal().Err(err).Str("image", path).Msg("analysis failed")
			}
			log.Warn().Err(err).Str("image", path).Msg("skipping image")
			continue
		}
		analysed++
	}

	log.Info().
		Int("analysed", analysed).
		Int("skipped", len(paths)-analysed).
		Dur("elapsed", time.Since(start)).
		Msg("batch complete")
}

func processImage(path string, analyzer *analysis.Analyzer, cfg *config.Config, outputsDir string, log zerolog.Logger) error {
	log.Info().Str("image", path).Msg("analysing")

	img, err := imgio.LoadGray(path)
	if err != nil {
		return err
	}
	region := imgio.CropCentralSquare(img)

	dist, err := analyzer.Analyze(region)
	if err != nil {
		return fmt.Errorf("analysing %s: %w", path, err)
	}

	if _, err := imgio.WriteDistribution(path, dist); err != nil {
		return err
	}
	summaryPath, err := imgio.WriteSummary(path, dist)
	if err != nil {
		return err
	}

	log.Info().
		Float64("mean", dist.Mean).
		Float64("sorting", dist.StdDev).
		Float64("skewness", dist.Skewness).
		Float64("kurtosis", dist.Kurtosis).
		Str("summary", summaryPath).
		Msg("grain size estimated")

	if cfg.Output.DoPlot {
		plotter := visualization.NewPlotter()
		base := filepath.Base(path)
		if err := plotter.SaveDensityCurve(filepath.Join(outputsDir, base+"_res.png"), dist.Sizes, dist.Density); err != nil {
			log.Warn().Err(err).Msg("plot rendering failed")
		}
		if err := plotter.SaveRegion(filepath.Join(outputsDir, base+"_region.png"), region); err != nil {
			log.Warn().Err(err).Msg("region rendering failed")
		}
	}

	return nil
}
