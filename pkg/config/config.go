// Package config provides configuration loading and management for the
// grain-size analyser. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Processing parameters
	Processing struct {
		// Density is the column sampling stride: every Density-th
		// column of the cropped image is analysed.
		Density int `yaml:"density"`

		// Resolution is the physical size of one pixel in the input
		// images, e.g. mm/pixel.
		Resolution float64 `yaml:"resolution"`

		// NumWorkers is the worker-pool size for the per-column
		// analysis.
		NumWorkers int `yaml:"numWorkers"`

		// Strict aborts the whole batch on the first unreadable
		// image instead of skipping it.
		Strict bool `yaml:"strict"`
	} `yaml:"processing"`

	// Wavelet transform parameters
	Wavelet struct {
		// LargestScale bounds the coarsest scale as padded column
		// length divided by this value.
		LargestScale int `yaml:"largestScale"`

		// NotesPerOctave is the number of scale intervals per octave.
		NotesPerOctave int `yaml:"notesPerOctave"`

		// Scaling selects "log" or "linear" scale spacing.
		Scaling string `yaml:"scaling"`
	} `yaml:"wavelet"`

	// Output parameters
	Output struct {
		// DoPlot renders the cropped region and the density curve as
		// PNG files under an outputs directory.
		DoPlot bool `yaml:"doPlot"`

		// Verbose controls the level of logging output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with the values the method was
// tuned with.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.Density = 10
	cfg.Processing.Resolution = 1.0
	cfg.Processing.NumWorkers = 4
	cfg.Processing.Strict = false

	cfg.Wavelet.LargestScale = 3
	cfg.Wavelet.NotesPerOctave = 8
	cfg.Wavelet.Scaling = "log"

	cfg.Output.DoPlot = false
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
