package features

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Step moves current toward raw by alpha: current + (raw-current)*alpha.
// alpha is clamped into [0,1] so the result never overshoots, and a NaN or
// infinite raw value is read as 0.
func Step(current, raw, alpha float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		raw = 0
	}
	if math.IsNaN(current) || math.IsInf(current, 0) {
		current = 0
	}
	switch {
	case alpha <= 0 || math.IsNaN(alpha):
		return current
	case alpha >= 1:
		return raw
	}
	return current + (raw-current)*alpha
}

// Scalar is one exponentially smoothed signal.
type Scalar struct {
	Value float64
	Alpha float64
}

// NewScalar returns a Scalar at rest.
func NewScalar(alpha float64) Scalar {
	return Scalar{Alpha: alpha}
}

// Update feeds one raw sample and returns the smoothed value.
func (s *Scalar) Update(raw float64) float64 {
	s.Value = Step(s.Value, raw, s.Alpha)
	return s.Value
}

// UpdateWith feeds raw using a one-off alpha.
func (s *Scalar) UpdateWith(raw, alpha float64) float64 {
	s.Value = Step(s.Value, raw, alpha)
	return s.Value
}

// Field is a dense array of independently smoothed signals.
type Field struct {
	Values []float64
	Alpha  float64
}

// NewField returns a Field of n signals at rest.
func NewField(n int, alpha float64) Field {
	return Field{Values: make([]float64, n), Alpha: alpha}
}

// Update feeds raw into slot i and returns the smoothed value. Out of range
// slots are ignored and read as 0.
func (f *Field) Update(i int, raw float64) float64 {
	if i < 0 || i >= len(f.Values) {
		return 0
	}
	f.Values[i] = Step(f.Values[i], raw, f.Alpha)
	return f.Values[i]
}

// Color is a per-channel smoothed RGB colour.
type Color struct {
	Value colorful.Color
	Alpha float64
}

// NewColor starts at c.
func NewColor(c colorful.Color, alpha float64) Color {
	return Color{Value: c, Alpha: alpha}
}

// Update moves every channel toward target and returns the result.
func (c *Color) Update(target colorful.Color) colorful.Color {
	c.Value = colorful.Color{
		R: Step(c.Value.R, target.R, c.Alpha),
		G: Step(c.Value.G, target.G, c.Alpha),
		B: Step(c.Value.B, target.B, c.Alpha),
	}
	return c.Value
}
