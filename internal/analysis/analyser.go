// Package analysis turns a live PCM stream into byte-valued frequency and
// time-domain frames, the same numbers a browser AnalyserNode reports.
package analysis

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/go-audio/audio"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	DefaultFFTSize     = 512
	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0

	defaultChannels = 2
	ringFactor      = 4
)

// Options configures an Analyser. Zero FFTSize, decibel range and Channels
// take the defaults; Smoothing is used as given.
type Options struct {
	FFTSize     int
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
	Channels    int // interleaved channels expected by Write
}

func (o Options) withDefaults() Options {
	if o.FFTSize == 0 {
		o.FFTSize = DefaultFFTSize
	}
	if o.MinDecibels == 0 && o.MaxDecibels == 0 {
		o.MinDecibels = DefaultMinDecibels
		o.MaxDecibels = DefaultMaxDecibels
	}
	if o.Channels == 0 {
		o.Channels = defaultChannels
	}
	return o
}

// Analyser buffers the most recent mono samples and computes frames on
// demand. One goroutine may write while another reads.
type Analyser struct {
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64
	channels  int

	ring *sampleRing

	wmu   sync.Mutex // guards the Write scratch state
	carry []byte
	pcm   audio.Float32Buffer

	rmu    sync.Mutex // guards the frame computation state
	fft    *fourier.FFT
	frame  []float64
	coeffs []complex128
	mags   []float64
}

// New returns an Analyser. FFTSize must be a power of two between 32 and
// 32768, Smoothing in [0,1) and MinDecibels below MaxDecibels.
func New(opts Options) (*Analyser, error) {
	opts = opts.withDefaults()
	if opts.FFTSize < 32 || opts.FFTSize > 32768 || opts.FFTSize&(opts.FFTSize-1) != 0 {
		return nil, fmt.Errorf("analysis: fft size %d is not a power of two in [32, 32768]", opts.FFTSize)
	}
	if opts.Smoothing < 0 || opts.Smoothing >= 1 {
		return nil, fmt.Errorf("analysis: smoothing %v outside [0, 1)", opts.Smoothing)
	}
	if opts.MinDecibels >= opts.MaxDecibels {
		return nil, fmt.Errorf("analysis: min decibels %v not below max %v", opts.MinDecibels, opts.MaxDecibels)
	}
	if opts.Channels < 1 {
		return nil, fmt.Errorf("analysis: invalid channel count %d", opts.Channels)
	}

	return &Analyser{
		fftSize:   opts.FFTSize,
		smoothing: opts.Smoothing,
		minDB:     opts.MinDecibels,
		maxDB:     opts.MaxDecibels,
		channels:  opts.Channels,
		ring:      newSampleRing(opts.FFTSize * ringFactor),
		pcm: audio.Float32Buffer{
			Format:         &audio.Format{NumChannels: opts.Channels},
			SourceBitDepth: 16,
		},
		fft:    fourier.NewFFT(opts.FFTSize),
		frame:  make([]float64, opts.FFTSize),
		coeffs: make([]complex128, opts.FFTSize/2+1),
		mags:   make([]float64, opts.FFTSize/2),
	}, nil
}

// FFTSize is the analysis window length in samples.
func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount is the length of a frame, FFTSize/2.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// Push appends a buffer of samples, mixing all channels to mono.
func (a *Analyser) Push(buf *audio.Float32Buffer) {
	if buf == nil || len(buf.Data) == 0 {
		return
	}
	ch := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		ch = buf.Format.NumChannels
	}
	frames := len(buf.Data) / ch
	mono := make([]float32, frames)
	for i := range frames {
		var sum float32
		for c := range ch {
			sum += buf.Data[i*ch+c]
		}
		mono[i] = sum / float32(ch)
	}
	a.ring.write(mono)
}

// Write accepts interleaved signed 16-bit little-endian PCM. It never fails,
// so the Analyser can sit on an io.TeeReader in the playback path. Partial
// sample frames are carried over to the next call.
func (a *Analyser) Write(p []byte) (int, error) {
	a.wmu.Lock()
	defer a.wmu.Unlock()

	data := p
	if len(a.carry) > 0 {
		data = append(a.carry, p...)
		a.carry = nil
	}
	frameBytes := 2 * a.channels
	whole := len(data) - len(data)%frameBytes
	if rest := data[whole:]; len(rest) > 0 {
		a.carry = append([]byte(nil), rest...)
	}
	if whole == 0 {
		return len(p), nil
	}

	samples := whole / 2
	if cap(a.pcm.Data) < samples {
		a.pcm.Data = make([]float32, samples)
	}
	a.pcm.Data = a.pcm.Data[:samples]
	for i := range samples {
		a.pcm.Data[i] = float32(int16(binary.LittleEndian.Uint16(data[i*2:]))) / 32768
	}

	a.Push(&a.pcm)
	return len(p), nil
}

// ByteFrequencyData fills dst with the current magnitude spectrum in
// decibels mapped to [0,255]. Each call advances the temporal smoothing by
// one step. Entries past FrequencyBinCount are zeroed.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.rmu.Lock()
	defer a.rmu.Unlock()

	a.ring.latest(a.frame)
	window.Blackman(a.frame)
	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	scale := 1 / float64(a.fftSize)
	for k := range a.mags {
		mag := cmplx.Abs(a.coeffs[k]) * scale
		a.mags[k] = a.smoothing*a.mags[k] + (1-a.smoothing)*mag
	}

	for i := range dst {
		if i >= len(a.mags) {
			dst[i] = 0
			continue
		}
		dst[i] = a.magnitudeByte(a.mags[i])
	}
}

func (a *Analyser) magnitudeByte(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := math.Floor(255 * (db - a.minDB) / (a.maxDB - a.minDB))
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 255:
		return 255
	}
	return byte(v)
}

// ByteTimeDomainData fills dst with the most recent samples mapped to
// 128*(1+x). At most FFTSize samples are written; the rest of dst is set to
// the 128 midpoint.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	a.rmu.Lock()
	defer a.rmu.Unlock()

	n := min(len(dst), a.fftSize)
	samples := a.frame[:n]
	a.ring.latest(samples)
	for i := range dst {
		if i >= n {
			dst[i] = 128
			continue
		}
		v := math.Floor(128 * (1 + samples[i]))
		switch {
		case v < 0:
			dst[i] = 0
		case v > 255:
			dst[i] = 255
		default:
			dst[i] = byte(v)
		}
	}
}

// Reset drops buffered samples and smoothing history.
func (a *Analyser) Reset() {
	a.ring.clear()

	a.wmu.Lock()
	a.carry = nil
	a.wmu.Unlock()

	a.rmu.Lock()
	clear(a.mags)
	a.rmu.Unlock()
}
