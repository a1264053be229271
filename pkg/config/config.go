// Package config loads optional project configuration from a .ptof.yaml
// file. Command-line flags override anything set here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ptof-dev/ptof/pkg/colorspec"
)

// fileNames are the config file names probed by Discover, in order.
var fileNames = []string{".ptof.yaml", "ptof.yaml"}

// Config holds the settings that can live in a project config file. The
// fields mirror the command-line flags of the same names.
type Config struct {
	Output       string  `yaml:"output"`
	Color        string  `yaml:"color"`
	Tolerance    float64 `yaml:"tolerance"`
	Margin       float64 `yaml:"margin"`
	DPI          float64 `yaml:"dpi"`
	NoBackground bool    `yaml:"no_background"`
	AutoName     bool    `yaml:"auto_name"`
	Force        bool    `yaml:"force"`
	Quiet        bool    `yaml:"quiet"`
}

// Default returns the built-in settings used when no config file is present.
func Default() Config {
	return Config{
		Output:    "output_dir",
		Color:     "cyan",
		Tolerance: colorspec.DefaultTolerance,
		DPI:       300,
	}
}

// Load reads a config file. Settings missing from the file keep their
// defaults; unknown keys are an error so that typos don't pass silently.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Discover looks for a config file in dir and loads it if found. The
// returned path is empty when no file exists, in which case the defaults are
// returned.
func Discover(dir string) (Config, string, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		return cfg, path, err
	}
	return Default(), "", nil
}

func (c Config) validate() error {
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %g", c.Tolerance)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %g", c.DPI)
	}
	if _, err := colorspec.Parse(c.Color); err != nil {
		return err
	}
	return nil
}
