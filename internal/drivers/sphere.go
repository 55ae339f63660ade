package drivers

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"

	"github.com/olivier-w/orbviz/internal/features"
	"github.com/olivier-w/orbviz/internal/theme"
)

const (
	sphereRadius = 1.8
	sphereVerts  = 1200
)

// Sphere is the central noise-deformed sphere. Bass drives the large-scale
// displacement and mid the detail; a slow breathing term keeps it moving at
// rest.
type Sphere struct {
	Bass, Mid, High features.Scalar

	idleAlpha float64
	layout    features.Layout
	bands     features.Layout // layout clamped to bandsLen
	bandsLen  int
	colors    [3]features.Color
	colorsSet bool
	noise     opensimplex.Noise
	verts     []Vec3
	state     State
}

// NewSphere builds a sphere whose band signals use alpha while active and
// idleAlpha while fading out.
func NewSphere(layout features.Layout, alpha, idleAlpha, colorAlpha float64, seed int64) *Sphere {
	s := &Sphere{
		Bass:      features.NewScalar(alpha),
		Mid:       features.NewScalar(alpha),
		High:      features.NewScalar(alpha),
		idleAlpha: idleAlpha,
		layout:    layout,
		bandsLen:  -1,
		noise:     opensimplex.New(seed),
		verts:     fibonacciSphere(sphereVerts, sphereRadius),
	}
	for i := range s.colors {
		s.colors[i] = features.NewColor(colorful.Color{}, colorAlpha)
	}
	return s
}

// fibonacciSphere spreads n points evenly over a sphere of radius r.
func fibonacciSphere(n int, r float64) []Vec3 {
	pts := make([]Vec3, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := range n {
		y := 1 - (float64(i)+0.5)/float64(n)*2
		ring := math.Sqrt(1 - y*y)
		theta := golden * float64(i)
		pts[i] = Vec3{X: math.Cos(theta) * ring, Y: y, Z: math.Sin(theta) * ring}.Scale(r)
	}
	return pts
}

// Update smooths the band levels toward the current frame, or decays them
// toward zero when there is none, and eases the colours toward th.
func (s *Sphere) Update(src features.Sampler, th theme.Theme) {
	freq := src.SampleFrequency()
	s.state = stateOf(freq)
	if freq == nil {
		s.Bass.UpdateWith(0, s.idleAlpha)
		s.Mid.UpdateWith(0, s.idleAlpha)
		s.High.UpdateWith(0, s.idleAlpha)
	} else {
		if len(freq) != s.bandsLen {
			s.bands = s.layout.Clamp(len(freq))
			s.bandsLen = len(freq)
		}
		lv := s.bands.Energies(freq)
		s.Bass.Update(lv.Bass)
		s.Mid.Update(lv.Mid)
		s.High.Update(lv.High)
	}

	target := th.SphereRGB()
	if !s.colorsSet {
		for i := range s.colors {
			s.colors[i].Value = target[i]
		}
		s.colorsSet = true
	}
	for i := range s.colors {
		s.colors[i].Update(target[i])
	}
}

func (s *Sphere) State() State { return s.state }

// Breathe is the uniform scale applied to the rest shape.
func (s *Sphere) Breathe(t float64) float64 {
	return 1 + math.Sin(t*0.5)*0.02 + s.Bass.Value*0.08
}

// Colors returns the current interpolated shader colours.
func (s *Sphere) Colors() [3]colorful.Color {
	return [3]colorful.Color{s.colors[0].Value, s.colors[1].Value, s.colors[2].Value}
}

// Reset drops band levels. Colours keep easing from where they are.
func (s *Sphere) Reset() {
	s.Bass.Value, s.Mid.Value, s.High.Value = 0, 0, 0
	s.state = Idle
}

type displacement struct {
	n1, n2, total float64
}

func (s *Sphere) displace(p Vec3, t float64) displacement {
	slow := t * 0.3
	q1 := p.Scale(1.5).AddScalar(slow)
	q2 := p.Scale(3).AddScalar(slow * 1.4)
	q3 := p.Scale(6).AddScalar(slow * 2)
	n1 := s.noise.Eval3(q1.X, q1.Y, q1.Z) * 0.6
	n2 := s.noise.Eval3(q2.X, q2.Y, q2.Z) * 0.3
	n3 := s.noise.Eval3(q3.X, q3.Y, q3.Z) * 0.15

	bass, mid := s.Bass.Value, s.Mid.Value
	total := n1*(0.15+bass*0.6) + n2*(0.1+mid*0.4) + n3*(0.05+bass*0.15)
	return displacement{n1: n1, n2: n2, total: total}
}

// Emit appends the displaced, tumbling surface.
func (s *Sphere) Emit(dst []Dot, t float64) []Dot {
	breathe := s.Breathe(t)
	c1, c2, c3 := s.colors[0].Value, s.colors[1].Value, s.colors[2].Value
	ridgeBase := c2.BlendRgb(c3, 0.5)
	alpha := 0.4 + s.Bass.Value*0.1

	rotY := t * 0.12
	rotX := math.Sin(t*0.08) * 0.15
	rotZ := math.Cos(t*0.06) * 0.1

	for _, v := range s.verts {
		d := s.displace(v, t)
		normal := v.Normalize()
		p := v.Scale(breathe).Add(normal.Scale(d.total))
		p = p.RotateX(rotX).RotateY(rotY).RotateZ(rotZ)

		flow := d.n1 + d.n2 + t*0.1
		blend1 := math.Sin(flow*2+v.X)*0.5 + 0.5
		blend2 := math.Cos(flow*1.5+v.Z)*0.5 + 0.5
		col := c1.BlendRgb(c2, blend1).BlendRgb(c3, clamp01(blend2*0.4+s.High.Value*0.2))

		ridge := smoothstep(0, 0.3, math.Abs(d.total)) * 0.12
		col = colorful.Color{
			R: col.R + ridgeBase.R*ridge,
			G: col.G + ridgeBase.G*ridge,
			B: col.B + ridgeBase.B*ridge,
		}.Clamped()

		dst = append(dst, Dot{Pos: p, Color: col, Alpha: alpha})
	}
	return dst
}

func smoothstep(lo, hi, x float64) float64 {
	t := clamp01((x - lo) / (hi - lo))
	return t * t * (3 - 2*t)
}
