// Package config provides the configuration schema and loader for orbviz.
package config

import (
	"log/slog"

	"github.com/olivier-w/orbviz/internal/analysis"
	"github.com/olivier-w/orbviz/internal/drivers"
	"github.com/olivier-w/orbviz/internal/features"
	"github.com/olivier-w/orbviz/internal/theme"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to a slog level. Unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration structure.
type Config struct {
	// FPS is the render frame rate.
	FPS int `yaml:"fps"`

	// LogFile receives structured logs. Empty discards them; the terminal
	// belongs to the UI.
	LogFile string `yaml:"log_file"`

	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr, when set, serves Prometheus metrics on /metrics.
	MetricsAddr string `yaml:"metrics_addr"`

	// MusicDir resolves relative preset locations.
	MusicDir string `yaml:"music_dir"`

	// Theme and Mode are the initial catalog ids.
	Theme string `yaml:"theme"`
	Mode  string `yaml:"mode"`

	// Rain enables the digital-rain overlay at startup.
	Rain bool `yaml:"rain"`

	// Volume is the initial playback volume in [0, 1].
	Volume float64 `yaml:"volume"`

	Analysis  Analysis       `yaml:"analysis"`
	Bands     Bands          `yaml:"bands"`
	Smoothing Smoothing      `yaml:"smoothing"`
	Presets   []theme.Preset `yaml:"presets"`
}

// Analysis configures the analysis node.
type Analysis struct {
	FFTSize     int     `yaml:"fft_size"`
	Smoothing   float64 `yaml:"smoothing"`
	MinDecibels float64 `yaml:"min_decibels"`
	MaxDecibels float64 `yaml:"max_decibels"`
}

// Bands sets the bass/mid/high split. High runs from MidEnd to N.
type Bands struct {
	BassEnd int `yaml:"bass_end"`
	MidEnd  int `yaml:"mid_end"`
}

// Smoothing holds the per-frame smoothing factors.
type Smoothing struct {
	Band  float64 `yaml:"band"`
	Bars  float64 `yaml:"bars"`
	Color float64 `yaml:"color"`
	Idle  float64 `yaml:"idle"`
	Rain  float64 `yaml:"rain"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		FPS:      30,
		LogLevel: LogInfo,
		MusicDir: ".",
		Theme:    "neon-purple",
		Mode:     "all",
		Rain:     true,
		Volume:   0.8,
		Analysis: Analysis{
			FFTSize:     analysis.DefaultFFTSize,
			Smoothing:   analysis.DefaultSmoothing,
			MinDecibels: analysis.DefaultMinDecibels,
			MaxDecibels: analysis.DefaultMaxDecibels,
		},
		Bands: Bands{
			BassEnd: features.BassBand.End,
			MidEnd:  features.MidBand.End,
		},
		Smoothing: Smoothing{
			Band:  0.2,
			Bars:  0.3,
			Color: 0.05,
			Idle:  0.05,
			Rain:  0.2,
		},
	}
}

// AnalysisOptions converts the analysis section for analysis.New.
func (c *Config) AnalysisOptions() analysis.Options {
	return analysis.Options{
		FFTSize:     c.Analysis.FFTSize,
		Smoothing:   c.Analysis.Smoothing,
		MinDecibels: c.Analysis.MinDecibels,
		MaxDecibels: c.Analysis.MaxDecibels,
	}
}

// Layout builds the band layout.
func (c *Config) Layout() features.Layout {
	return features.Layout{
		Bass: features.Band{Start: 0, End: c.Bands.BassEnd},
		Mid:  features.Band{Start: c.Bands.BassEnd, End: c.Bands.MidEnd},
		High: features.Band{Start: c.Bands.MidEnd, End: -1},
	}
}

// DriverConfig builds the driver set configuration.
func (c *Config) DriverConfig() drivers.Config {
	d := drivers.DefaultConfig()
	d.Layout = c.Layout()
	d.BandAlpha = c.Smoothing.Band
	d.BarAlpha = c.Smoothing.Bars
	d.ColorAlpha = c.Smoothing.Color
	d.IdleAlpha = c.Smoothing.Idle
	d.RainAlpha = c.Smoothing.Rain
	return d
}
