// Package theme holds the static catalogs: colour themes, visualizer modes
// and the preset playlist. The built-in catalog is embedded YAML.
package theme

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

// Light is a coloured point light.
type Light struct {
	Color     string     `yaml:"color"`
	Position  [3]float64 `yaml:"position"`
	Intensity float64    `yaml:"intensity"`
}

// Bloom controls the glow applied to bright cells.
type Bloom struct {
	Intensity float64 `yaml:"intensity"`
	Threshold float64 `yaml:"threshold"`
	Smoothing float64 `yaml:"smoothing"`
}

// SphereColors are the three shader colours as linear 0-1 RGB triples.
type SphereColors struct {
	Color1 [3]float64 `yaml:"color1"`
	Color2 [3]float64 `yaml:"color2"`
	Color3 [3]float64 `yaml:"color3"`
}

// Theme is one named palette.
type Theme struct {
	ID                 string       `yaml:"id"`
	Name               string       `yaml:"name"`
	Fog                string       `yaml:"fog"`
	Lights             []Light      `yaml:"lights"`
	Bloom              Bloom        `yaml:"bloom"`
	Sphere             SphereColors `yaml:"sphere"`
	BarHueOffset       float64      `yaml:"bar_hue_offset"`
	BarSaturation      float64      `yaml:"bar_saturation"`
	ParticleSaturation float64      `yaml:"particle_saturation"`
	ParticleLightness  float64      `yaml:"particle_lightness"`
	WaveColor          string       `yaml:"wave_color"`
	WaveOpacity        float64      `yaml:"wave_opacity"`
	Accent             string       `yaml:"accent"`
}

// Mode selects which visual elements are drawn.
type Mode struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Sphere    bool   `yaml:"sphere"`
	Bars      bool   `yaml:"bars"`
	Particles bool   `yaml:"particles"`
	Waveform  bool   `yaml:"waveform"`
}

// Preset is a named source: a path or an http(s) URL.
type Preset struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// Catalog is the full set of static tables.
type Catalog struct {
	Themes  []Theme  `yaml:"themes"`
	Modes   []Mode   `yaml:"modes"`
	Presets []Preset `yaml:"presets"`
}

// Builtin decodes the embedded catalog.
func Builtin() (*Catalog, error) {
	return Parse(bytes.NewReader(builtin))
}

// Parse decodes and validates a catalog. Unknown fields are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("theme: decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ids, colours and ranges. All problems are joined.
func (c *Catalog) Validate() error {
	var errs []error
	if len(c.Themes) == 0 {
		errs = append(errs, errors.New("theme: catalog has no themes"))
	}
	if len(c.Modes) == 0 {
		errs = append(errs, errors.New("theme: catalog has no modes"))
	}

	seen := map[string]bool{}
	for i, t := range c.Themes {
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("theme: themes[%d]: missing id", i))
		} else if seen[t.ID] {
			errs = append(errs, fmt.Errorf("theme: duplicate theme id %q", t.ID))
		}
		seen[t.ID] = true
		for _, hex := range []string{t.Fog, t.WaveColor, t.Accent} {
			if _, err := colorful.Hex(hex); err != nil {
				errs = append(errs, fmt.Errorf("theme: %s: bad colour %q", t.ID, hex))
			}
		}
		for j, l := range t.Lights {
			if _, err := colorful.Hex(l.Color); err != nil {
				errs = append(errs, fmt.Errorf("theme: %s: lights[%d]: bad colour %q", t.ID, j, l.Color))
			}
		}
		if t.WaveOpacity < 0 || t.WaveOpacity > 1 {
			errs = append(errs, fmt.Errorf("theme: %s: wave_opacity %v out of [0,1]", t.ID, t.WaveOpacity))
		}
	}

	seen = map[string]bool{}
	for i, m := range c.Modes {
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("theme: modes[%d]: missing id", i))
		} else if seen[m.ID] {
			errs = append(errs, fmt.Errorf("theme: duplicate mode id %q", m.ID))
		}
		seen[m.ID] = true
	}

	for i, p := range c.Presets {
		if p.Location == "" {
			errs = append(errs, fmt.Errorf("theme: presets[%d]: missing location", i))
		}
	}
	return errors.Join(errs...)
}

// ThemeIndex returns the index of the theme with id, or -1.
func (c *Catalog) ThemeIndex(id string) int {
	for i, t := range c.Themes {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Theme looks up a theme by id.
func (c *Catalog) Theme(id string) (Theme, bool) {
	if i := c.ThemeIndex(id); i >= 0 {
		return c.Themes[i], true
	}
	return Theme{}, false
}

// ModeIndex returns the index of the mode with id, or -1.
func (c *Catalog) ModeIndex(id string) int {
	for i, m := range c.Modes {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// Mode looks up a mode by id.
func (c *Catalog) Mode(id string) (Mode, bool) {
	if i := c.ModeIndex(id); i >= 0 {
		return c.Modes[i], true
	}
	return Mode{}, false
}

// Merge appends user presets, skipping names already present.
func (c *Catalog) Merge(presets []Preset) {
	have := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		have[p.Name] = true
	}
	for _, p := range presets {
		if p.Location == "" || have[p.Name] {
			continue
		}
		if p.Name == "" {
			p.Name = strings.TrimSuffix(filepath.Base(p.Location), filepath.Ext(p.Location))
		}
		have[p.Name] = true
		c.Presets = append(c.Presets, p)
	}
}

// Cycle steps i by delta through n entries, wrapping at both ends.
func Cycle(i, delta, n int) int {
	if n <= 0 {
		return 0
	}
	i = (i + delta) % n
	if i < 0 {
		i += n
	}
	return i
}

// WaveRGB is the waveform colour.
func (t Theme) WaveRGB() colorful.Color { return hexOr(t.WaveColor) }

// FogRGB is the background colour.
func (t Theme) FogRGB() colorful.Color { return hexOr(t.Fog) }

// AccentRGB is the UI accent colour.
func (t Theme) AccentRGB() colorful.Color { return hexOr(t.Accent) }

// SphereRGB returns the three sphere colours.
func (t Theme) SphereRGB() [3]colorful.Color {
	return [3]colorful.Color{
		triple(t.Sphere.Color1),
		triple(t.Sphere.Color2),
		triple(t.Sphere.Color3),
	}
}

func triple(v [3]float64) colorful.Color {
	return colorful.Color{R: v[0], G: v[1], B: v[2]}
}

// hexOr parses a validated hex colour; invalid input yields black.
func hexOr(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}
