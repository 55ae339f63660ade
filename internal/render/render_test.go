package render

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivier-w/orbviz/internal/drivers"
	"github.com/olivier-w/orbviz/internal/features"
	"github.com/olivier-w/orbviz/internal/theme"
)

func plainTheme() theme.Theme {
	return theme.Theme{Fog: "#000000", WaveColor: "#ffffff", Accent: "#00ff00"}
}

func TestCameraProjectsOriginToCenter(t *testing.T) {
	c := NewCamera(30)
	x, y, depth, ok := c.Project(Vec3{}, 100, 50)
	if !ok {
		t.Fatal("origin not visible")
	}
	if x != 50 || y != 25 {
		t.Fatalf("origin projected to (%d, %d), want (50, 25)", x, y)
	}
	if want := math.Hypot(cameraDistance, cameraHeight); math.Abs(depth-want) > 1e-9 {
		t.Fatalf("depth = %v, want %v", depth, want)
	}
}

func TestCameraRejectsPointsBehind(t *testing.T) {
	c := NewCamera(30)
	behind := c.eye.Scale(2)
	if _, _, _, ok := c.Project(behind, 100, 50); ok {
		t.Fatal("point behind the camera projected")
	}
	if _, _, _, ok := c.Project(Vec3{}, 0, 0); ok {
		t.Fatal("projected onto an empty grid")
	}
}

func TestCameraUpIsUp(t *testing.T) {
	c := NewCamera(30)
	_, yLow, _, _ := c.Project(Vec3{}, 100, 100)
	_, yHigh, _, _ := c.Project(Vec3{Y: 2}, 100, 100)
	if yHigh >= yLow {
		t.Fatalf("raised point drew at row %d, not above %d", yHigh, yLow)
	}
}

func TestCameraKickSettles(t *testing.T) {
	c := NewCamera(30)
	c.Kick()
	if c.Zoom() != kickZoom {
		t.Fatalf("zoom after kick = %v", c.Zoom())
	}
	for i := range 300 {
		c.Step(float64(i) / 30)
	}
	if math.Abs(c.Zoom()-1) > 0.01 {
		t.Fatalf("zoom did not settle: %v", c.Zoom())
	}
}

func TestCanvasBrailleBits(t *testing.T) {
	cv := NewCanvas(2, 1)
	red := colorful.Color{R: 1}
	blue := colorful.Color{B: 1}

	cv.Set(0, 0, red, 5)
	cv.Set(1, 3, blue, 2)
	r, c, ok := cv.Cell(0, 0)
	if !ok {
		t.Fatal("cell empty")
	}
	if r != 0x2881 {
		t.Fatalf("rune = %U, want U+2881", r)
	}
	if c != blue {
		t.Fatalf("colour = %v, want the nearer dot's colour", c)
	}
	if _, _, ok := cv.Cell(1, 0); ok {
		t.Fatal("untouched cell reported a dot")
	}

	cv.Set(-1, 0, red, 0)
	cv.Set(4, 0, red, 0)
	cv.Clear()
	if _, _, ok := cv.Cell(0, 0); ok {
		t.Fatal("Clear left dots behind")
	}
}

func TestComposeWithoutColor(t *testing.T) {
	s := NewScene(30)
	s.profile = colorNone
	s.canvas.Resize(4, 2)
	s.canvas.Set(0, 0, colorful.Color{R: 1}, 1)

	out := s.Compose(nil, plainTheme())
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for i, l := range lines {
		if utf8.RuneCountInString(l) != 4 {
			t.Fatalf("line %d has %d cells: %q", i, utf8.RuneCountInString(l), l)
		}
	}
	if !strings.HasPrefix(lines[0], "⠁") {
		t.Fatalf("first cell = %q", lines[0])
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatal("escape codes emitted without colour support")
	}
}

func TestComposeDrawsRainUnderScene(t *testing.T) {
	rain := drivers.NewRain(0.2, 0.05, 1)
	rain.Resize(40, 4)
	for range 400 {
		rain.Update(features.Static{Frequency: make([]byte, 256)}, colorful.Color{G: 1})
	}

	s := NewScene(30)
	s.profile = colorNone
	s.canvas.Resize(40, 4)
	out := s.Compose(rain, plainTheme())

	glyphs := 0
	for _, r := range out {
		for _, g := range drivers.Glyphs {
			if r == g {
				glyphs++
			}
		}
	}
	if glyphs == 0 {
		t.Fatalf("no rain glyphs in %q", out)
	}
}

func TestComposeTrueColorSequences(t *testing.T) {
	s := NewScene(30)
	s.profile = colorTrueColor
	s.canvas.Resize(1, 1)
	s.canvas.Set(0, 0, colorful.Color{R: 1, G: 0.5}, 1)
	out := s.Compose(nil, plainTheme())
	if !strings.HasPrefix(out, "\x1b[38;2;255;128;0m") {
		t.Fatalf("unexpected prefix %q", out)
	}
	if !strings.HasSuffix(out, "\x1b[0m") {
		t.Fatalf("missing reset in %q", out)
	}
}

func TestDetectProfile(t *testing.T) {
	tests := []struct {
		env  map[string]string
		want colorProfile
	}{
		{map[string]string{"NO_COLOR": "", "COLORTERM": "truecolor"}, colorNone},
		{map[string]string{"COLORTERM": "truecolor", "TERM": "xterm"}, colorTrueColor},
		{map[string]string{"TERM": "xterm-256color"}, colorANSI256},
		{map[string]string{"TERM": "dumb"}, colorNone},
		{map[string]string{}, colorNone},
		{map[string]string{"TERM": "xterm"}, colorANSI16},
	}
	for _, tt := range tests {
		lookup := func(k string) (string, bool) {
			v, ok := tt.env[k]
			return v, ok
		}
		if got := detectProfile(lookup); got != tt.want {
			t.Errorf("detectProfile(%v) = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestDrawIdleSceneHasGeometry(t *testing.T) {
	set := drivers.NewSet(drivers.DefaultConfig())
	th := plainTheme()
	th.Sphere = theme.SphereColors{Color1: [3]float64{1, 0, 0}, Color2: [3]float64{0, 1, 0}, Color3: [3]float64{0, 0, 1}}
	f := drivers.Frame{Theme: th, Mode: theme.Mode{Sphere: true, Bars: true, Particles: true, Waveform: true}}
	set.Update(features.Idle{}, f)

	s := NewScene(30)
	s.profile = colorNone
	s.Draw(set.Emit(nil, f), th, 80, 24, 0)

	lit := 0
	for row := range 24 {
		for col := range 80 {
			if _, _, ok := s.canvas.Cell(col, row); ok {
				lit++
			}
		}
	}
	if lit < 100 {
		t.Fatalf("only %d cells lit for an idle scene", lit)
	}
}

func TestFogAndShade(t *testing.T) {
	fog := colorful.Color{B: 1}
	c := colorful.Color{R: 1}
	if got := applyFog(c, fog, fogFar+5); got != fog {
		t.Fatalf("far fog = %v, want fog colour", got)
	}
	if got := applyFog(c, fog, 1); got != c {
		t.Fatalf("near fog = %v, want unchanged", got)
	}
	if got := shade(colorful.Color{R: 1, G: 1, B: 1}, Vec3{}, nil); math.Abs(got.R-ambient) > 1e-12 {
		t.Fatalf("unlit shade = %v, want ambient", got)
	}
}
