// Package drivers turns sampled audio frames into animated scene geometry.
// Each visual element owns its smoothed state and is updated once per
// rendered frame; with no active session every element is fed silence and
// fades toward rest.
package drivers

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Vec3 is a point in scene space. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3          { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Scale(s float64) Vec3     { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) AddScalar(s float64) Vec3 { return Vec3{v.X + s, v.Y + s, v.Z + s} }
func (v Vec3) Dot(o Vec3) float64       { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64             { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length, or v when it is zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

func (v Vec3) RotateX(a float64) Vec3 {
	s, c := math.Sincos(a)
	return Vec3{v.X, v.Y*c - v.Z*s, v.Y*s + v.Z*c}
}

func (v Vec3) RotateY(a float64) Vec3 {
	s, c := math.Sincos(a)
	return Vec3{v.X*c + v.Z*s, v.Y, -v.X*s + v.Z*c}
}

func (v Vec3) RotateZ(a float64) Vec3 {
	s, c := math.Sincos(a)
	return Vec3{v.X*c - v.Y*s, v.X*s + v.Y*c, v.Z}
}

// Dot is one coloured point of scene geometry.
type Dot struct {
	Pos   Vec3
	Color colorful.Color
	Alpha float64
}

// State is a driver's view of the session.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

func stateOf(frame []byte) State {
	if frame == nil {
		return Idle
	}
	return Active
}

// hsl builds a colour from hue, saturation and lightness in [0,1].
func hsl(h, s, l float64) colorful.Color {
	return colorful.Hsl(wrap01(h)*360, clamp01(s), clamp01(l)).Clamped()
}

func wrap01(v float64) float64 {
	v = math.Mod(v, 1)
	if v < 0 {
		v++
	}
	return v
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

// byteAt reads frame[i]/255, or 0 when i is outside the frame.
func byteAt(frame []byte, i int) float64 {
	if i < 0 || i >= len(frame) {
		return 0
	}
	return float64(frame[i]) / 255
}
