package drivers

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivier-w/orbviz/internal/features"
	"github.com/olivier-w/orbviz/internal/theme"
)

const (
	// WaveSegments is the number of segments in the closed waveform ring.
	WaveSegments  = 256
	waveRadius    = 6.0
	waveSubsample = 4
)

// WaveIndex maps segment seg of WaveSegments to a time-domain index in
// [0, n). The closing point (seg == WaveSegments) wraps to 0.
func WaveIndex(seg, n int) int {
	if n <= 0 || seg < 0 {
		return 0
	}
	return (seg * n / WaveSegments) % n
}

// Waveform is the outer ring perturbed by the time-domain signal.
type Waveform struct {
	points  [WaveSegments + 1]Vec3
	values  [WaveSegments + 1]float64
	color   features.Color
	opacity features.Scalar
	primed  bool
	state   State
}

func NewWaveform(colorAlpha float64) *Waveform {
	return &Waveform{
		color:   features.NewColor(colorful.Color{}, colorAlpha),
		opacity: features.NewScalar(colorAlpha),
	}
}

// Update recomputes the ring from the latest time-domain frame.
func (w *Waveform) Update(s features.Sampler, th theme.Theme, t float64) {
	if !w.primed {
		w.color.Value = th.WaveRGB()
		w.opacity.Value = th.WaveOpacity
		w.primed = true
	}
	w.color.Update(th.WaveRGB())
	w.opacity.Update(th.WaveOpacity)

	td := s.SampleTimeDomain()
	w.state = stateOf(td)
	for i := 0; i <= WaveSegments; i++ {
		angle := float64(i) / WaveSegments * 2 * math.Pi
		v := 0.0
		if len(td) > 0 {
			v = (float64(td[WaveIndex(i, len(td))]) - 128) / 128
		}
		r := waveRadius + v*1.5
		w.values[i] = v
		w.points[i] = Vec3{
			X: math.Cos(angle) * r,
			Y: v*0.5 + math.Sin(t+angle*3)*0.1,
			Z: math.Sin(angle) * r,
		}
	}
}

func (w *Waveform) State() State { return w.state }

// Value is the centred sample of segment i in [-1, 1).
func (w *Waveform) Value(i int) float64 {
	if i < 0 || i > WaveSegments {
		return 0
	}
	return w.values[i]
}

// Point is the unrotated position of ring point i.
func (w *Waveform) Point(i int) Vec3 {
	if i < 0 || i > WaveSegments {
		return Vec3{}
	}
	return w.points[i]
}

// Opacity is the current interpolated line opacity.
func (w *Waveform) Opacity() float64 { return w.opacity.Value }

func (w *Waveform) Reset() {
	w.values = [WaveSegments + 1]float64{}
	w.state = Idle
}

// Emit appends the ring as a dotted polyline rotated about Y.
func (w *Waveform) Emit(dst []Dot, t float64) []Dot {
	rot := t * 0.08
	col := w.color.Value
	alpha := w.opacity.Value
	for i := range WaveSegments {
		a, b := w.points[i], w.points[i+1]
		for k := range waveSubsample {
			f := float64(k) / waveSubsample
			p := a.Scale(1 - f).Add(b.Scale(f))
			dst = append(dst, Dot{Pos: p.RotateY(rot), Color: col, Alpha: alpha})
		}
	}
	return dst
}
