package drivers

import (
	"bytes"
	"math"
	"slices"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivier-w/orbviz/internal/features"
	"github.com/olivier-w/orbviz/internal/theme"
)

func frameOf(n int, v byte) []byte {
	return bytes.Repeat([]byte{v}, n)
}

func testTheme() theme.Theme {
	return theme.Theme{
		ID:                 "test",
		Fog:                "#000000",
		Sphere:             theme.SphereColors{Color1: [3]float64{1, 0, 0}, Color2: [3]float64{0, 1, 0}, Color3: [3]float64{0, 0, 1}},
		BarSaturation:      1,
		ParticleSaturation: 0.8,
		ParticleLightness:  0.6,
		WaveColor:          "#00ffff",
		WaveOpacity:        0.6,
		Accent:             "#8844ff",
	}
}

func allModes() theme.Mode {
	return theme.Mode{ID: "all", Sphere: true, Bars: true, Particles: true, Waveform: true}
}

func assertFinite(t *testing.T, dots []Dot) {
	t.Helper()
	for i, d := range dots {
		for _, v := range []float64{d.Pos.X, d.Pos.Y, d.Pos.Z, d.Color.R, d.Color.G, d.Color.B, d.Alpha} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("dot %d has non-finite value: %+v", i, d)
			}
		}
	}
}

func TestTurnBinWraps(t *testing.T) {
	for _, n := range []int{1, 128, 256, 512} {
		if got := turnBin(2*math.Pi, n); got != 0 {
			t.Fatalf("turnBin(2pi, %d) = %d, want 0", n, got)
		}
		for _, a := range []float64{0, 0.1, math.Pi, 2*math.Pi - 1e-12, -0.5, -7 * math.Pi, 1e6} {
			got := turnBin(a, n)
			if got < 0 || got >= n {
				t.Fatalf("turnBin(%v, %d) = %d out of range", a, n, got)
			}
		}
	}
	if got := turnBin(math.Pi, 256); got != 128 {
		t.Fatalf("turnBin(pi, 256) = %d, want 128", got)
	}
	if got := turnBin(math.NaN(), 256); got != 0 {
		t.Fatalf("turnBin(NaN) = %d, want 0", got)
	}
	if got := turnBin(1, 0); got != 0 {
		t.Fatalf("turnBin with empty frame = %d, want 0", got)
	}
}

func TestParticleBinFollowsAzimuth(t *testing.T) {
	tests := []struct {
		angle float64
		want  int
	}{
		{angle: -math.Pi, want: 0},
		{angle: -math.Pi / 2, want: 64},
		{angle: 0, want: 128},
		{angle: math.Pi/2 + 0.01, want: 192},
		{angle: math.Pi, want: 0},
		{angle: 2*math.Pi + 0.01, want: 128},
	}
	for _, tt := range tests {
		if got := ParticleBin(tt.angle, 256); got != tt.want {
			t.Fatalf("ParticleBin(%v, 256) = %d, want %d", tt.angle, got, tt.want)
		}
	}
	for _, a := range []float64{math.Pi, -math.Pi} {
		if got := ParticleBin(a, 512); got != 0 {
			t.Fatalf("ParticleBin(%v, 512) = %d, want 0", a, got)
		}
	}
}

func TestWaveIndex(t *testing.T) {
	if got := WaveIndex(128, 128); got != 64 {
		t.Fatalf("WaveIndex(128, 128) = %d, want 64", got)
	}
	if got := WaveIndex(WaveSegments, 256); got != 0 {
		t.Fatalf("closing point maps to %d, want 0", got)
	}
	for seg := 0; seg <= WaveSegments; seg++ {
		if got := WaveIndex(seg, 100); got < 0 || got >= 100 {
			t.Fatalf("WaveIndex(%d, 100) = %d out of range", seg, got)
		}
	}
	if got := WaveIndex(10, 0); got != 0 {
		t.Fatalf("WaveIndex with empty frame = %d", got)
	}
}

func TestBarsSlotsPastFrameReadZero(t *testing.T) {
	b := NewBars(1)
	b.Update(features.Static{Frequency: frameOf(64, 255)})

	if b.State() != Active {
		t.Fatalf("state = %v, want active", b.State())
	}
	if b.Level(10) != 1 {
		t.Fatalf("slot 10 = %v, want 1", b.Level(10))
	}
	if b.Level(100) != 0 {
		t.Fatalf("slot 100 = %v, want 0", b.Level(100))
	}
	if got := b.Height(10); math.Abs(got-4.1) > 1e-12 {
		t.Fatalf("height = %v, want 4.1", got)
	}
}

func TestBarsIdleEqualsSilence(t *testing.T) {
	idle := NewBars(0.3)
	silent := NewBars(0.3)
	loud := features.Static{Frequency: frameOf(256, 200)}
	for range 5 {
		idle.Update(loud)
		silent.Update(loud)
	}
	for range 10 {
		idle.Update(features.Idle{})
		silent.Update(features.Static{Frequency: frameOf(256, 0)})
	}
	for i := range BarCount {
		if idle.Level(i) != silent.Level(i) {
			t.Fatalf("slot %d: idle %v != silence %v", i, idle.Level(i), silent.Level(i))
		}
	}
	if idle.State() != Idle || silent.State() != Active {
		t.Fatalf("states = %v/%v", idle.State(), silent.State())
	}
}

func TestBarsDecayWhenIdle(t *testing.T) {
	b := NewBars(0.3)
	b.Update(features.Static{Frequency: frameOf(256, 255)})
	prev := b.Level(0)
	for range 20 {
		b.Update(features.Idle{})
		if b.Level(0) >= prev {
			t.Fatalf("level did not decay: %v -> %v", prev, b.Level(0))
		}
		prev = b.Level(0)
	}
}

func TestSphereBreathesAtRest(t *testing.T) {
	s := NewSphere(features.DefaultLayout(), 0.2, 0.05, 0.05, 1)
	for range 3 {
		s.Update(features.Idle{}, testTheme())
	}
	if s.Bass.Value != 0 {
		t.Fatalf("bass at rest = %v", s.Bass.Value)
	}
	if got := s.Breathe(0); got != 1 {
		t.Fatalf("Breathe(0) = %v, want 1", got)
	}
	if got := s.Breathe(math.Pi); math.Abs(got-1.02) > 1e-12 {
		t.Fatalf("Breathe(pi) = %v, want 1.02", got)
	}
	if s.Breathe(math.Pi) == s.Breathe(3*math.Pi) {
		t.Fatal("breathing is constant at rest")
	}
}

func TestSphereBandsAndIdleDecay(t *testing.T) {
	s := NewSphere(features.DefaultLayout(), 1, 0.05, 0.05, 1)
	s.Update(features.Static{Frequency: frameOf(256, 255)}, testTheme())
	if s.Bass.Value != 1 || s.Mid.Value != 1 || s.High.Value != 1 {
		t.Fatalf("levels = %v %v %v, want 1", s.Bass.Value, s.Mid.Value, s.High.Value)
	}

	s.Update(features.Idle{}, testTheme())
	if math.Abs(s.Bass.Value-0.95) > 1e-12 {
		t.Fatalf("bass after one idle frame = %v, want 0.95", s.Bass.Value)
	}
	if s.State() != Idle {
		t.Fatalf("state = %v, want idle", s.State())
	}
}

func TestSphereClampsLayoutPerFrameLength(t *testing.T) {
	s := NewSphere(features.DefaultLayout(), 1, 0.05, 0.05, 1)
	freq := frameOf(64, 255)
	s.Update(features.Static{Frequency: freq}, testTheme())
	if s.bandsLen != 64 || s.bands != features.DefaultLayout().Clamp(64) {
		t.Fatalf("bands = %+v for length %d", s.bands, s.bandsLen)
	}
	if s.Bass.Value != 1 || s.Mid.Value != 1 || s.High.Value != 0 {
		t.Fatalf("levels = %v %v %v, want 1 1 0", s.Bass.Value, s.Mid.Value, s.High.Value)
	}

	s.Update(features.Idle{}, testTheme())
	if s.bandsLen != 64 {
		t.Fatalf("idle frame reclamped to %d", s.bandsLen)
	}

	s.Update(features.Static{Frequency: frameOf(256, 255)}, testTheme())
	if s.bandsLen != 256 || s.bands.High.End != 256 {
		t.Fatalf("bands not reclamped for new length: %+v (%d)", s.bands, s.bandsLen)
	}
	if s.High.Value != 1 {
		t.Fatalf("high = %v, want 1", s.High.Value)
	}
}

func TestSphereColorsEaseTowardTheme(t *testing.T) {
	s := NewSphere(features.DefaultLayout(), 0.2, 0.05, 0.05, 1)
	red := testTheme()
	s.Update(features.Idle{}, red)
	if s.Colors()[0] != (colorful.Color{R: 1}) {
		t.Fatalf("first colour = %v, want theme colour", s.Colors()[0])
	}

	blue := red
	blue.Sphere.Color1 = [3]float64{0, 0, 1}
	s.Update(features.Idle{}, blue)
	got := s.Colors()[0]
	if math.Abs(got.R-0.95) > 1e-12 || math.Abs(got.B-0.05) > 1e-12 {
		t.Fatalf("colour after one step = %v", got)
	}
}

func TestParticlesCoupleToBins(t *testing.T) {
	p := NewParticles(7)
	p.Update(features.Static{Frequency: frameOf(256, 255)}, 0)
	if p.Energy() != 1 {
		t.Fatalf("energy = %v, want 1", p.Energy())
	}
	for i := range ParticleCount {
		if p.Value(i) != 1 {
			t.Fatalf("particle %d value = %v, want 1", i, p.Value(i))
		}
	}

	p.Update(features.Idle{}, 1)
	for i := range ParticleCount {
		if p.Value(i) != 0 {
			t.Fatalf("idle particle %d value = %v", i, p.Value(i))
		}
	}
	if p.State() != Idle {
		t.Fatalf("state = %v, want idle", p.State())
	}
}

func TestParticlesReadBinUnderAngle(t *testing.T) {
	p := NewParticles(3)
	freq := make([]byte, 256)
	for i := range freq {
		freq[i] = byte(i)
	}
	angles := slices.Clone(p.angle)
	p.Update(features.Static{Frequency: freq}, 0)
	for i := range 50 {
		want := float64(ParticleBin(angles[i], 256)) / 255
		if p.Value(i) != want {
			t.Fatalf("particle %d value = %v, want %v", i, p.Value(i), want)
		}
	}
}

func TestWaveformRadius(t *testing.T) {
	w := NewWaveform(0.05)
	w.Update(features.Static{TimeDomain: frameOf(256, 192)}, testTheme(), 0)
	if w.Value(0) != 0.5 {
		t.Fatalf("value = %v, want 0.5", w.Value(0))
	}
	p := w.Point(0)
	if r := math.Hypot(p.X, p.Z); math.Abs(r-6.75) > 1e-9 {
		t.Fatalf("radius = %v, want 6.75", r)
	}

	w.Update(features.Idle{}, testTheme(), 0)
	p = w.Point(64)
	if r := math.Hypot(p.X, p.Z); math.Abs(r-6) > 1e-9 {
		t.Fatalf("idle radius = %v, want 6", r)
	}
	if w.Opacity() != 0.6 {
		t.Fatalf("opacity = %v, want theme opacity", w.Opacity())
	}
}

func TestRainEnergyModulation(t *testing.T) {
	r := NewRain(0.2, 0.05, 1)
	r.Resize(10, 20)

	for range 200 {
		r.Update(features.Idle{}, colorful.Color{G: 1})
	}
	if r.Energy.Value != 0 || r.Fade() != 0.04 || r.SpeedBoost() != 1 {
		t.Fatalf("idle rain: energy %v fade %v boost %v", r.Energy.Value, r.Fade(), r.SpeedBoost())
	}

	lit := false
	for range 500 {
		r.Update(features.Static{Frequency: frameOf(256, 255)}, colorful.Color{G: 1})
	}
	if math.Abs(r.Energy.Value-1) > 1e-6 {
		t.Fatalf("energy = %v, want ~1", r.Energy.Value)
	}
	if math.Abs(r.SpeedBoost()-3) > 1e-5 {
		t.Fatalf("boost = %v, want ~3", r.SpeedBoost())
	}
	cols, rows := r.Size()
	for c := range cols {
		for row := range rows {
			cell := r.Cell(c, row)
			if cell.Intensity > 0 {
				lit = true
				if !slices.Contains(Glyphs, cell.Glyph) {
					t.Fatalf("cell glyph %q not in glyph set", cell.Glyph)
				}
			}
		}
	}
	if !lit {
		t.Fatal("no rain cell was ever drawn")
	}
	if got := r.Cell(-1, 0); got.Intensity != 0 {
		t.Fatal("out-of-grid cell is not blank")
	}
}

func TestRainResizeToZero(t *testing.T) {
	r := NewRain(0.2, 0.05, 1)
	r.Resize(0, 0)
	r.Update(features.Static{Frequency: frameOf(256, 100)}, colorful.Color{})
	r.Resize(-5, 3)
	r.Update(features.Idle{}, colorful.Color{})
}

func TestSetIdleGeometryIsFinite(t *testing.T) {
	s := NewSet(DefaultConfig())
	s.Rain.Resize(40, 12)
	f := Frame{T: 1.5, Theme: testTheme(), Mode: allModes(), RainOn: true}

	for range 3 {
		s.Update(features.Idle{}, f)
	}
	dots := s.Emit(nil, f)
	if len(dots) == 0 {
		t.Fatal("no geometry emitted")
	}
	assertFinite(t, dots)

	s.Update(features.Static{Frequency: frameOf(512, 255), TimeDomain: frameOf(512, 255)}, f)
	assertFinite(t, s.Emit(dots[:0], f))
}

func TestSetModeSelectsDrivers(t *testing.T) {
	s := NewSet(DefaultConfig())
	loud := features.Static{Frequency: frameOf(256, 255)}
	ring := theme.Mode{ID: "ring", Bars: true, Waveform: true}
	f := Frame{Theme: testTheme(), Mode: ring}

	s.Update(loud, f)
	if s.Bars.Level(0) == 0 {
		t.Fatal("bars did not update in ring mode")
	}
	if s.Sphere.Bass.Value != 0 {
		t.Fatal("sphere updated while disabled")
	}

	dots := s.Emit(nil, f)
	want := 0
	for i := range BarCount {
		want += int(math.Floor(s.Bars.Height(i)/barStep+1e-9)) + 1
	}
	want += WaveSegments * waveSubsample
	if len(dots) < want-BarCount || len(dots) > want+BarCount {
		t.Fatalf("emitted %d dots, want about %d", len(dots), want)
	}
}

func TestSetResetsReenabledDriver(t *testing.T) {
	s := NewSet(DefaultConfig())
	loud := features.Static{Frequency: frameOf(256, 255)}
	all := Frame{Theme: testTheme(), Mode: allModes()}
	galaxy := Frame{Theme: testTheme(), Mode: theme.Mode{ID: "galaxy", Particles: true, Waveform: true}}

	s.Update(loud, all)
	if s.Bars.Level(0) == 0 {
		t.Fatal("bars did not update")
	}
	s.Update(loud, galaxy)
	s.Update(features.Idle{}, all)
	if got, want := s.Bars.Level(0), 0.0; got != want {
		t.Fatalf("re-enabled bars level = %v, want %v", got, want)
	}
}
