package render

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivier-w/orbviz/internal/drivers"
	"github.com/olivier-w/orbviz/internal/theme"
)

const (
	ambient   = 0.3
	fogNear   = 8.0
	fogFar    = 25.0
	rainAlpha = 0.4
	rainFloor = 0.03
)

// Scene projects driver geometry through a Camera into a Canvas and
// composes the frame with the rain layer.
type Scene struct {
	Camera  *Camera
	canvas  *Canvas
	profile colorProfile
	sb      strings.Builder
}

func NewScene(fps int) *Scene {
	return &Scene{
		Camera:  NewCamera(fps),
		canvas:  NewCanvas(0, 0),
		profile: currentColorProfile(),
	}
}

// Draw projects dots for a cols x rows cell frame at time t.
func (s *Scene) Draw(dots []drivers.Dot, th theme.Theme, cols, rows int, t float64) {
	s.canvas.Resize(cols, rows)
	s.Camera.Step(t)
	w, h := s.canvas.Dots()
	fog := th.FogRGB()
	lights := prepareLights(th)

	for _, d := range dots {
		x, y, depth, ok := s.Camera.Project(d.Pos, w, h)
		if !ok {
			continue
		}
		c := shade(d.Color, d.Pos, lights)
		c = bloom(c, th.Bloom)
		c = fade(c, fog, d.Alpha)
		c = applyFog(c, fog, depth)
		s.canvas.Set(x, y, c, depth)
	}
}

// Compose renders the canvas over the rain layer as ANSI text. rain may
// be nil.
func (s *Scene) Compose(rain *drivers.Rain, th theme.Theme) string {
	cols, rows := s.canvas.Cells()
	fog := th.FogRGB()
	s.sb.Reset()
	st := newANSIState(s.profile)

	for row := range rows {
		if row > 0 {
			st.reset(&s.sb)
			s.sb.WriteByte('\n')
		}
		for col := range cols {
			if r, c, ok := s.canvas.Cell(col, row); ok {
				st.set(&s.sb, rgbOf(c))
				s.sb.WriteRune(r)
				continue
			}
			if rain != nil {
				cell := rain.Cell(col, row)
				if cell.Intensity > rainFloor && cell.Glyph != 0 {
					c := fog.BlendRgb(cell.Color, clamp01(cell.Intensity*rainAlpha))
					st.set(&s.sb, rgbOf(c))
					s.sb.WriteRune(cell.Glyph)
					continue
				}
			}
			s.sb.WriteByte(' ')
		}
	}
	st.reset(&s.sb)
	return s.sb.String()
}

type pointLight struct {
	pos       Vec3
	color     colorful.Color
	intensity float64
}

func prepareLights(th theme.Theme) []pointLight {
	out := make([]pointLight, 0, len(th.Lights))
	for _, l := range th.Lights {
		c, err := colorful.Hex(l.Color)
		if err != nil {
			continue
		}
		out = append(out, pointLight{
			pos:       Vec3{X: l.Position[0], Y: l.Position[1], Z: l.Position[2]},
			color:     c,
			intensity: l.Intensity,
		})
	}
	return out
}

// shade scales c by ambient plus point-light falloff and adds a faint tint
// of each light.
func shade(c colorful.Color, p Vec3, lights []pointLight) colorful.Color {
	gain := ambient
	var tr, tg, tb float64
	for _, l := range lights {
		d := p.Add(l.pos.Scale(-1)).Len()
		f := l.intensity / (1 + d*d/50)
		gain += f
		tr += l.color.R * f * 0.15
		tg += l.color.G * f * 0.15
		tb += l.color.B * f * 0.15
	}
	return colorful.Color{R: c.R*gain + tr, G: c.G*gain + tg, B: c.B*gain + tb}.Clamped()
}

// bloom brightens colours whose luminance passes the threshold.
func bloom(c colorful.Color, b theme.Bloom) colorful.Color {
	lum := 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
	if lum <= b.Threshold || b.Intensity <= 0 {
		return c
	}
	knee := math.Max(1-b.Smoothing, 0.05)
	boost := 1 + b.Intensity*0.25*clamp01((lum-b.Threshold)/knee)
	return colorful.Color{R: c.R * boost, G: c.G * boost, B: c.B * boost}.Clamped()
}

// fade blends toward the background by the dot's opacity.
func fade(c, bg colorful.Color, alpha float64) colorful.Color {
	return bg.BlendRgb(c, clamp01(0.35+0.65*alpha))
}

func applyFog(c, fog colorful.Color, depth float64) colorful.Color {
	f := clamp01((depth - fogNear) / (fogFar - fogNear))
	return c.BlendRgb(fog, f)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
