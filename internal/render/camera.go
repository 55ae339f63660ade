package render

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/olivier-w/orbviz/internal/drivers"
)

const (
	cameraHeight   = 5.0
	cameraDistance = 10.0
	cameraFOV      = 60 * math.Pi / 180
	// One full orbit every two minutes.
	orbitPeriod = 120.0
	kickZoom    = 1.25
	nearPlane   = 0.1
)

// Camera orbits the origin. Its zoom is a harmonica spring so mode changes
// can pull back and settle.
type Camera struct {
	spring  harmonica.Spring
	zoom    float64
	zoomVel float64

	eye                Vec3
	right, up, forward Vec3
	focal              float64
}

// Vec3 is an alias so callers need not import drivers for camera maths.
type Vec3 = drivers.Vec3

func NewCamera(fps int) *Camera {
	if fps <= 0 {
		fps = 30
	}
	c := &Camera{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 0.6),
		zoom:   1,
		focal:  1 / math.Tan(cameraFOV/2),
	}
	c.Step(0)
	return c
}

// Kick pulls the camera back; Step springs it home.
func (c *Camera) Kick() {
	c.zoom = kickZoom
	c.zoomVel = 0
}

// Zoom is the current distance multiplier.
func (c *Camera) Zoom() float64 { return c.zoom }

// Step advances the zoom spring one frame and places the camera for time t.
func (c *Camera) Step(t float64) {
	c.zoom, c.zoomVel = c.spring.Update(c.zoom, c.zoomVel, 1)

	az := t / orbitPeriod * 2 * math.Pi
	dist := cameraDistance * c.zoom
	c.eye = Vec3{X: math.Sin(az) * dist, Y: cameraHeight * c.zoom, Z: math.Cos(az) * dist}

	c.forward = c.eye.Scale(-1).Normalize()
	c.right = cross(c.forward, Vec3{Y: 1}).Normalize()
	c.up = cross(c.right, c.forward)
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// Project maps p to dot coordinates on a w x h grid. ok is false behind the
// near plane. depth is the distance along the view axis.
func (c *Camera) Project(p Vec3, w, h int) (x, y int, depth float64, ok bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, 0, false
	}
	rel := p.Add(c.eye.Scale(-1))
	z := rel.Dot(c.forward)
	if z <= nearPlane {
		return 0, 0, 0, false
	}
	aspect := float64(w) / float64(h)
	ndcX := rel.Dot(c.right) * c.focal / (z * aspect)
	ndcY := rel.Dot(c.up) * c.focal / z
	x = int(math.Floor((ndcX + 1) / 2 * float64(w)))
	y = int(math.Floor((1 - ndcY) / 2 * float64(h)))
	if x < 0 || x >= w || y < 0 || y >= h {
		return x, y, z, false
	}
	return x, y, z, true
}
