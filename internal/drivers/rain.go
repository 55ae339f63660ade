package drivers

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/olivier-w/orbviz/internal/features"
)

// Glyphs is the rain character set: half-width katakana, hex digits and
// brackets. Every glyph is one terminal cell wide.
var Glyphs = []rune("ｱｲｳｴｵｶｷｸｹｺｻｼｽｾｿﾀﾁﾂﾃﾄﾅﾆﾇﾈﾉﾊﾋﾌﾍﾎﾏﾐﾑﾒﾓﾔﾕﾖﾗﾘﾙﾚﾛﾜｦﾝ0123456789ABCDEF<>{}[]|")

var white = colorful.Color{R: 1, G: 1, B: 1}

// RainCell is one glyph cell of the rain layer. Intensity fades every
// frame until a drop passes through again.
type RainCell struct {
	Glyph     rune
	Color     colorful.Color
	Intensity float64
}

// Rain is the digital-rain overlay. Only whole-spectrum energy feeds it:
// louder audio fades trails slower, brightens glyphs and speeds the drops.
type Rain struct {
	Energy features.Scalar

	color      features.Color
	colorSet   bool
	cols, rows int
	drops      []float64
	speeds     []float64
	cells      []RainCell
	rng        *rand.Rand
	state      State
}

func NewRain(energyAlpha, colorAlpha float64, seed int64) *Rain {
	return &Rain{
		Energy: features.NewScalar(energyAlpha),
		color:  features.NewColor(colorful.Color{}, colorAlpha),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Resize sets the grid size, restaggering drops when it changes.
func (r *Rain) Resize(cols, rows int) {
	cols, rows = max(cols, 0), max(rows, 0)
	if cols == r.cols && rows == r.rows {
		return
	}
	r.cols, r.rows = cols, rows
	r.drops = make([]float64, cols)
	r.speeds = make([]float64, cols)
	r.cells = make([]RainCell, cols*rows)
	for i := range cols {
		r.drops[i] = r.rng.Float64() * -100
		r.speeds[i] = 0.3 + r.rng.Float64()*0.7
	}
}

func (r *Rain) Size() (cols, rows int) { return r.cols, r.rows }

func (r *Rain) State() State { return r.state }

// Fade is the per-frame trail decay for the current energy.
func (r *Rain) Fade() float64 { return 0.04 + r.Energy.Value*0.03 }

// SpeedBoost multiplies every column's fall speed.
func (r *Rain) SpeedBoost() float64 { return 1 + r.Energy.Value*2 }

func (r *Rain) glyph() rune {
	return Glyphs[r.rng.Intn(len(Glyphs))]
}

// Update advances the drops one frame. accent is the trail colour target.
func (r *Rain) Update(s features.Sampler, accent colorful.Color) {
	freq := s.SampleFrequency()
	r.state = stateOf(freq)
	e := r.Energy.Update(features.Energy(freq))

	if !r.colorSet {
		r.color.Value = accent
		r.colorSet = true
	}
	trail := r.color.Update(accent)

	keep := 1 - (0.04 + e*0.03)
	for i := range r.cells {
		r.cells[i].Intensity *= keep
	}

	headAlpha := 0.8 + e*0.2
	trailAlpha := 0.3 + e*0.4
	dimAlpha := 0.1 + e*0.15
	boost := 1 + e*2

	for c := range r.cols {
		y := r.drops[c]
		if y > 0 && y < float64(r.rows) {
			row := int(y)
			r.put(c, row, white, headAlpha)
			r.put(c, row-1, trail, trailAlpha)
			if y-2 > 0 {
				r.put(c, row-2, trail, dimAlpha)
			}
		}

		r.drops[c] += r.speeds[c] * boost
		if r.drops[c] > float64(r.rows) && r.rng.Float64() > 0.98 {
			r.drops[c] = r.rng.Float64() * -20
			r.speeds[c] = 0.3 + r.rng.Float64()*0.7
		}
	}
}

func (r *Rain) put(col, row int, c colorful.Color, alpha float64) {
	if row < 0 || row >= r.rows || col < 0 || col >= r.cols {
		return
	}
	r.cells[row*r.cols+col] = RainCell{Glyph: r.glyph(), Color: c, Intensity: alpha}
}

// Cell returns the cell at (col, row); outside the grid it is blank.
func (r *Rain) Cell(col, row int) RainCell {
	if row < 0 || row >= r.rows || col < 0 || col >= r.cols {
		return RainCell{}
	}
	return r.cells[row*r.cols+col]
}

// Reset clears the grid and energy but keeps the drop layout.
func (r *Rain) Reset() {
	clear(r.cells)
	r.Energy.Value = 0
	r.state = Idle
}
