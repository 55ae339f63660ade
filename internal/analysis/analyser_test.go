package analysis

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-audio/audio"
)

func newTestAnalyser(t *testing.T, opts Options) *Analyser {
	t.Helper()
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func sineBuffer(bin, fftSize, frames int, amp float32) *audio.Float32Buffer {
	data := make([]float32, frames)
	for i := range data {
		data[i] = amp * float32(math.Sin(2*math.Pi*float64(bin)*float64(i)/float64(fftSize)))
	}
	return &audio.Float32Buffer{Format: &audio.Format{NumChannels: 1, SampleRate: 44100}, Data: data}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []Options{
		{FFTSize: 100},
		{FFTSize: 16},
		{Smoothing: 1},
		{Smoothing: -0.1},
		{MinDecibels: -30, MaxDecibels: -100},
	}
	for _, opts := range tests {
		if _, err := New(opts); err == nil {
			t.Fatalf("expected error for %+v", opts)
		}
	}
}

func TestFrequencyBinCountIsHalfFFTSize(t *testing.T) {
	a := newTestAnalyser(t, Options{})
	if got := a.FrequencyBinCount(); got != 256 {
		t.Fatalf("expected 256 bins, got %d", got)
	}
}

func TestSilenceYieldsZeroSpectrumAndMidpointWaveform(t *testing.T) {
	a := newTestAnalyser(t, Options{Smoothing: DefaultSmoothing})
	a.Push(&audio.Float32Buffer{Data: make([]float32, 2048)})

	freq := make([]byte, a.FrequencyBinCount())
	a.ByteFrequencyData(freq)
	for i, v := range freq {
		if v != 0 {
			t.Fatalf("bin %d = %d, want 0", i, v)
		}
	}

	td := make([]byte, a.FrequencyBinCount())
	a.ByteTimeDomainData(td)
	for i, v := range td {
		if v != 128 {
			t.Fatalf("sample %d = %d, want 128", i, v)
		}
	}
}

func TestSinePeaksAtItsBin(t *testing.T) {
	a := newTestAnalyser(t, Options{Smoothing: DefaultSmoothing})
	a.Push(sineBuffer(32, a.FFTSize(), 4096, 0.01))

	freq := make([]byte, a.FrequencyBinCount())
	for range 20 {
		a.ByteFrequencyData(freq)
	}

	peak := 0
	for i, v := range freq {
		if v > freq[peak] {
			peak = i
		}
	}
	if peak < 31 || peak > 33 {
		t.Fatalf("expected peak near bin 32, got %d", peak)
	}
	if freq[200] >= freq[32] {
		t.Fatalf("expected far bin below peak: bin200=%d bin32=%d", freq[200], freq[32])
	}
}

func TestTimeDomainTracksAmplitude(t *testing.T) {
	a := newTestAnalyser(t, Options{})
	data := make([]float32, 512)
	for i := range data {
		data[i] = 0.5
	}
	a.Push(&audio.Float32Buffer{Data: data})

	td := make([]byte, 256)
	a.ByteTimeDomainData(td)
	if td[0] != 192 || td[255] != 192 {
		t.Fatalf("expected 192 for +0.5, got %d and %d", td[0], td[255])
	}
}

func TestWriteMixesInterleavedPCM(t *testing.T) {
	a := newTestAnalyser(t, Options{})

	// One stereo frame split across two writes: L=+16384, R=+16384.
	pcm := make([]byte, 4)
	binary.LittleEndian.PutUint16(pcm[0:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(pcm[2:], uint16(int16(16384)))
	if n, err := a.Write(pcm[:3]); n != 3 || err != nil {
		t.Fatalf("Write returned %d, %v", n, err)
	}
	if n, err := a.Write(pcm[3:]); n != 1 || err != nil {
		t.Fatalf("Write returned %d, %v", n, err)
	}

	td := make([]byte, 1)
	a.ByteTimeDomainData(td)
	if td[0] != 192 {
		t.Fatalf("expected mixed sample 192, got %d", td[0])
	}
}

func TestResetClearsHistory(t *testing.T) {
	a := newTestAnalyser(t, Options{Smoothing: DefaultSmoothing})
	a.Push(sineBuffer(16, a.FFTSize(), 2048, 0.8))
	freq := make([]byte, a.FrequencyBinCount())
	a.ByteFrequencyData(freq)

	a.Reset()
	a.ByteFrequencyData(freq)
	for i, v := range freq {
		if v != 0 {
			t.Fatalf("bin %d = %d after reset, want 0", i, v)
		}
	}
}

func TestRingKeepsMostRecentSamples(t *testing.T) {
	r := newSampleRing(4)
	r.write([]float32{1, 2, 3})
	r.write([]float32{4, 5})

	got := make([]float64, 4)
	r.latest(got)
	want := []float64{2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("latest = %v, want %v", got, want)
		}
	}

	short := make([]float64, 6)
	r.latest(short)
	if short[0] != 0 || short[1] != 0 || short[2] != 2 {
		t.Fatalf("expected zero padding at front, got %v", short)
	}
}
