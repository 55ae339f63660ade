package drivers

import (
	"github.com/olivier-w/orbviz/internal/features"
	"github.com/olivier-w/orbviz/internal/theme"
)

// Config holds the smoothing factors and band layout shared by a Set.
type Config struct {
	Layout     features.Layout
	BandAlpha  float64
	BarAlpha   float64
	ColorAlpha float64
	IdleAlpha  float64
	RainAlpha  float64
	Seed       int64
}

// DefaultConfig returns the standard factors.
func DefaultConfig() Config {
	return Config{
		Layout:     features.DefaultLayout(),
		BandAlpha:  0.2,
		BarAlpha:   0.3,
		ColorAlpha: 0.05,
		IdleAlpha:  0.05,
		RainAlpha:  0.2,
		Seed:       1,
	}
}

// Frame is the per-frame input shared by every driver.
type Frame struct {
	T      float64 // seconds since start
	Theme  theme.Theme
	Mode   theme.Mode
	RainOn bool
}

// Set is every driver in the scene. Drivers are independent; the mode only
// decides which of them update and draw. A driver that is switched back on
// starts from rest.
type Set struct {
	Bars      *Bars
	Sphere    *Sphere
	Particles *Particles
	Waveform  *Waveform
	Rain      *Rain

	last    theme.Mode
	started bool
}

func NewSet(cfg Config) *Set {
	return &Set{
		Bars:      NewBars(cfg.BarAlpha),
		Sphere:    NewSphere(cfg.Layout, cfg.BandAlpha, cfg.IdleAlpha, cfg.ColorAlpha, cfg.Seed),
		Particles: NewParticles(cfg.Seed),
		Waveform:  NewWaveform(cfg.ColorAlpha),
		Rain:      NewRain(cfg.RainAlpha, cfg.ColorAlpha, cfg.Seed),
	}
}

// Update runs every enabled driver once against src.
func (s *Set) Update(src features.Sampler, f Frame) {
	if s.started {
		s.resetEnabled(f.Mode)
	}
	s.last, s.started = f.Mode, true

	if f.Mode.Sphere {
		s.Sphere.Update(src, f.Theme)
	}
	if f.Mode.Bars {
		s.Bars.Update(src)
	}
	if f.Mode.Particles {
		s.Particles.Update(src, f.T)
	}
	if f.Mode.Waveform {
		s.Waveform.Update(src, f.Theme, f.T)
	}
	if f.RainOn {
		s.Rain.Update(src, f.Theme.AccentRGB())
	}
}

func (s *Set) resetEnabled(m theme.Mode) {
	if m.Sphere && !s.last.Sphere {
		s.Sphere.Reset()
	}
	if m.Bars && !s.last.Bars {
		s.Bars.Reset()
	}
	if m.Particles && !s.last.Particles {
		s.Particles.Reset()
	}
	if m.Waveform && !s.last.Waveform {
		s.Waveform.Reset()
	}
}

// Emit appends the geometry of every enabled 3D driver.
func (s *Set) Emit(dst []Dot, f Frame) []Dot {
	if f.Mode.Sphere {
		dst = s.Sphere.Emit(dst, f.T)
	}
	if f.Mode.Bars {
		dst = s.Bars.Emit(dst, f.Theme, f.T)
	}
	if f.Mode.Particles {
		dst = s.Particles.Emit(dst, f.Theme, f.T)
	}
	if f.Mode.Waveform {
		dst = s.Waveform.Emit(dst, f.T)
	}
	return dst
}
