package drivers

import (
	"math"
	"math/rand"

	"github.com/olivier-w/orbviz/internal/features"
	"github.com/olivier-w/orbviz/internal/theme"
)

// ParticleCount is the size of the orbiting ring.
const ParticleCount = 2000

// Particles is the orbiting particle ring. Each frame a particle is
// coupled to the frequency bin under its current angle, so excitation
// follows position rather than identity.
type Particles struct {
	angle  []float64
	radius []float64
	baseY  []float64
	y      []float64
	value  []float64
	energy float64
	state  State
}

func NewParticles(seed int64) *Particles {
	rng := rand.New(rand.NewSource(seed))
	p := &Particles{
		angle:  make([]float64, ParticleCount),
		radius: make([]float64, ParticleCount),
		baseY:  make([]float64, ParticleCount),
		y:      make([]float64, ParticleCount),
		value:  make([]float64, ParticleCount),
	}
	for i := range ParticleCount {
		p.angle[i] = rng.Float64() * 2 * math.Pi
		p.radius[i] = 3 + rng.Float64()*3
		p.baseY[i] = (rng.Float64() - 0.5) * 2
		p.y[i] = p.baseY[i]
	}
	return p
}

// ParticleBin maps a particle's azimuth, atan2(z, x), to a frequency bin in
// [0, n). The azimuth is shifted by pi so -pi reads bin 0 and +X reads n/2.
func ParticleBin(angle float64, n int) int {
	return turnBin(angle+math.Pi, n)
}

// turnBin maps an angle to one of n equal slices of a full turn. The angle
// is wrapped into [0, 2pi) first, so 2pi lands on bin 0.
func turnBin(a float64, n int) int {
	if n <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	idx := int(a/(2*math.Pi)*float64(n)) % n
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Update advances every particle one frame.
func (p *Particles) Update(s features.Sampler, t float64) {
	freq := s.SampleFrequency()
	p.state = stateOf(freq)
	p.energy = features.Energy(freq)
	speed := (0.2 + p.energy*0.8) * 0.01

	for i := range ParticleCount {
		v := 0.0
		if freq != nil {
			v = byteAt(freq, ParticleBin(p.angle[i], len(freq)))
		}
		p.value[i] = v
		p.angle[i] = math.Mod(p.angle[i]+speed, 2*math.Pi)
		p.y[i] = p.baseY[i] + math.Sin(t*2+float64(i)*0.01)*0.5 + v*2
	}
}

func (p *Particles) State() State { return p.state }

// Energy is the whole-spectrum energy seen in the last update.
func (p *Particles) Energy() float64 { return p.energy }

// Value is the bin value particle i read in the last update.
func (p *Particles) Value(i int) float64 {
	if i < 0 || i >= ParticleCount {
		return 0
	}
	return p.value[i]
}

// Position of particle i before the ring's own rotation.
func (p *Particles) Position(i int) Vec3 {
	return Vec3{
		X: math.Cos(p.angle[i]) * p.radius[i],
		Y: p.y[i],
		Z: math.Sin(p.angle[i]) * p.radius[i],
	}
}

// Reset settles every particle back to its base height.
func (p *Particles) Reset() {
	copy(p.y, p.baseY)
	clear(p.value)
	p.energy = 0
	p.state = Idle
}

// Emit appends the ring, rotated slowly about Y.
func (p *Particles) Emit(dst []Dot, th theme.Theme, t float64) []Dot {
	rot := t * 0.05
	for i := range ParticleCount {
		v := p.value[i]
		hue := float64(i)/ParticleCount + th.BarHueOffset + t*0.02 + v*0.3
		col := hsl(hue, th.ParticleSaturation, th.ParticleLightness+v*0.3)
		dst = append(dst, Dot{Pos: p.Position(i).RotateY(rot), Color: col, Alpha: 0.8})
	}
	return dst
}
