package drivers

import (
	"math"

	"github.com/olivier-w/orbviz/internal/features"
	"github.com/olivier-w/orbviz/internal/theme"
)

const (
	// BarCount is the number of angular bar slots.
	BarCount  = 128
	barRadius = 4.0
	barStep   = 0.2
)

// Bars is the ring of frequency bars. Slot i reads frequency bin i; slots
// past the end of the frame read 0.
type Bars struct {
	levels features.Field
	state  State
}

func NewBars(alpha float64) *Bars {
	return &Bars{levels: features.NewField(BarCount, alpha)}
}

// Update pulls a frequency frame and smooths every slot toward it.
func (b *Bars) Update(s features.Sampler) {
	freq := s.SampleFrequency()
	b.state = stateOf(freq)
	for i := range BarCount {
		b.levels.Update(i, byteAt(freq, i))
	}
}

func (b *Bars) State() State { return b.state }

// Level is the smoothed value of slot i.
func (b *Bars) Level(i int) float64 {
	if i < 0 || i >= BarCount {
		return 0
	}
	return b.levels.Values[i]
}

// Height of slot i in scene units.
func (b *Bars) Height(i int) float64 {
	return 0.1 + b.Level(i)*4
}

// Reset drops all smoothed state.
func (b *Bars) Reset() {
	clear(b.levels.Values)
	b.state = Idle
}

// Emit appends one vertical column of dots per bar.
func (b *Bars) Emit(dst []Dot, th theme.Theme, t float64) []Dot {
	for i := range BarCount {
		v := b.Level(i)
		angle := float64(i) / BarCount * 2 * math.Pi
		base := Vec3{X: math.Cos(angle) * barRadius, Z: math.Sin(angle) * barRadius}
		hue := float64(i)/BarCount + th.BarHueOffset + t*0.05
		col := hsl(hue, th.BarSaturation, 0.4+v*0.3)

		h := b.Height(i)
		for y := 0.0; y <= h; y += barStep {
			dst = append(dst, Dot{Pos: base.Add(Vec3{Y: y}), Color: col, Alpha: 1})
		}
	}
	return dst
}
