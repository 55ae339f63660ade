package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/bits"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the config file location.
const EnvPath = "ORBVIZ_CONFIG"

// Path returns the config file location: $ORBVIZ_CONFIG, or
// <user config dir>/orbviz/config.yaml.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate config dir: %w", err)
	}
	return filepath.Join(dir, "orbviz", "config.yaml"), nil
}

// LoadDefault loads the file at Path. A missing file yields Default.
func LoadDefault() (*Config, string, error) {
	path, err := Path()
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), path, nil
	}
	return cfg, path, err
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML over Default and validates the result. Unknown
// keys are rejected; an empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg is coherent. All failures are joined.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.FPS < 1 || cfg.FPS > 120 {
		errs = append(errs, fmt.Errorf("fps %d out of range [1, 120]", cfg.FPS))
	}
	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume %v out of range [0, 1]", cfg.Volume))
	}

	a := cfg.Analysis
	if a.FFTSize < 32 || a.FFTSize > 32768 || bits.OnesCount(uint(a.FFTSize)) != 1 {
		errs = append(errs, fmt.Errorf("analysis.fft_size %d must be a power of two in [32, 32768]", a.FFTSize))
	}
	if a.Smoothing < 0 || a.Smoothing >= 1 {
		errs = append(errs, fmt.Errorf("analysis.smoothing %v out of range [0, 1)", a.Smoothing))
	}
	if a.MinDecibels >= a.MaxDecibels {
		errs = append(errs, fmt.Errorf("analysis.min_decibels %v must be below max_decibels %v", a.MinDecibels, a.MaxDecibels))
	}

	b := cfg.Bands
	if b.BassEnd <= 0 || b.MidEnd <= b.BassEnd {
		errs = append(errs, fmt.Errorf("bands: need 0 < bass_end (%d) < mid_end (%d)", b.BassEnd, b.MidEnd))
	}

	s := cfg.Smoothing
	for _, f := range []struct {
		name  string
		alpha float64
	}{
		{"band", s.Band},
		{"bars", s.Bars},
		{"color", s.Color},
		{"idle", s.Idle},
		{"rain", s.Rain},
	} {
		if f.alpha <= 0 || f.alpha > 1 {
			errs = append(errs, fmt.Errorf("smoothing.%s %v out of range (0, 1]", f.name, f.alpha))
		}
	}

	for i, p := range cfg.Presets {
		if p.Location == "" {
			errs = append(errs, fmt.Errorf("presets[%d]: location is required", i))
		}
	}
	return errors.Join(errs...)
}
