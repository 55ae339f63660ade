package features

const maxByte = 255.0

// Band is a half-open index range [Start, End) of the frequency magnitudes.
// End < 0 means "to the end of the frame".
type Band struct {
	Start int
	End   int
}

// Default band boundaries.
var (
	BassBand = Band{Start: 0, End: 30}
	MidBand  = Band{Start: 30, End: 100}
	HighBand = Band{Start: 100, End: -1}
)

// Clamp resolves the band against a frame length n.
func (b Band) Clamp(n int) Band {
	if n < 0 {
		n = 0
	}
	start, end := b.Start, b.End
	if end < 0 || end > n {
		end = n
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	return Band{Start: start, End: end}
}

// Len is the number of indices covered.
func (b Band) Len() int {
	if b.End <= b.Start {
		return 0
	}
	return b.End - b.Start
}

// BandEnergy is the mean magnitude over [start, end) divided by 255. A nil
// frame, an empty range or a range entirely outside the frame yields 0.
// Indices past the end of freq read as 0 but still count toward the mean.
func BandEnergy(freq []byte, start, end int) float64 {
	if freq == nil || end <= start {
		return 0
	}
	if start < 0 {
		start = 0
	}
	if end <= start {
		return 0
	}
	var sum int
	hi := min(end, len(freq))
	for i := start; i < hi; i++ {
		sum += int(freq[i])
	}
	return float64(sum) / (float64(end-start) * maxByte)
}

// Energy is the whole-spectrum band energy.
func Energy(freq []byte) float64 {
	return BandEnergy(freq, 0, len(freq))
}

// Levels are the three named band energies of one frame.
type Levels struct {
	Bass float64
	Mid  float64
	High float64
}

// Layout names the bass/mid/high split.
type Layout struct {
	Bass Band
	Mid  Band
	High Band
}

// DefaultLayout is bass [0,30), mid [30,100), high [100,N).
func DefaultLayout() Layout {
	return Layout{Bass: BassBand, Mid: MidBand, High: HighBand}
}

// Clamp resolves every band against n. Call once per session with the
// sampler's frame length.
func (l Layout) Clamp(n int) Layout {
	return Layout{Bass: l.Bass.Clamp(n), Mid: l.Mid.Clamp(n), High: l.High.Clamp(n)}
}

// Levels clamps the layout to len(freq) and computes the band energies of
// freq. A nil frame yields zeros.
func (l Layout) Levels(freq []byte) Levels {
	if freq == nil {
		return Levels{}
	}
	return l.Clamp(len(freq)).Energies(freq)
}

// Energies computes the band energies of freq for a layout already clamped
// to len(freq).
func (l Layout) Energies(freq []byte) Levels {
	if freq == nil {
		return Levels{}
	}
	return Levels{
		Bass: BandEnergy(freq, l.Bass.Start, l.Bass.End),
		Mid:  BandEnergy(freq, l.Mid.Start, l.Mid.End),
		High: BandEnergy(freq, l.High.Start, l.High.End),
	}
}
