package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep/v2"
)

const (
	outputSampleRate = 44100
	outputChannels   = 2
	outputFrameSize  = outputChannels * 2

	resampleQuality = 4
)

// pcmStreamer reads mono or stereo s16le PCM as a beep.Streamer.
type pcmStreamer struct {
	src      io.Reader
	channels int
	buf      []byte
	done     bool
	err      error
}

func (s *pcmStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.done {
		return 0, false
	}
	frameSize := s.channels * 2
	need := len(samples) * frameSize
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}

	n, err := io.ReadFull(s.src, s.buf[:need])
	frames := n / frameSize
	for i := range frames {
		off := i * frameSize
		left := float64(int16(binary.LittleEndian.Uint16(s.buf[off:]))) / 32768
		right := left
		if s.channels == 2 {
			right = float64(int16(binary.LittleEndian.Uint16(s.buf[off+2:]))) / 32768
		}
		samples[i] = [2]float64{left, right}
	}

	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			s.err = err
		}
		return frames, frames > 0
	}
	return frames, true
}

func (s *pcmStreamer) Err() error { return s.err }

// conformReader presents any mono or stereo s16le source as 44.1 kHz
// stereo s16le.
type conformReader struct {
	stream  beep.Streamer
	length  int64
	samples [][2]float64
}

func newConformReader(src pcmSource) (pcmSource, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", rate)
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > outputChannels {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if rate == outputSampleRate && channels == outputChannels {
		return src, nil
	}

	var stream beep.Streamer = &pcmStreamer{src: src, channels: channels}
	if rate != outputSampleRate {
		stream = beep.Resample(resampleQuality, beep.SampleRate(rate), beep.SampleRate(outputSampleRate), stream)
	}

	length := int64(-1)
	if n := src.Length(); n >= 0 {
		frames := n / int64(channels*2)
		length = frames * outputSampleRate / int64(rate) * outputFrameSize
	}
	return &conformReader{stream: stream, length: length}, nil
}

func (c *conformReader) Length() int64     { return c.length }
func (c *conformReader) SampleRate() int   { return outputSampleRate }
func (c *conformReader) ChannelCount() int { return outputChannels }

func (c *conformReader) Read(p []byte) (int, error) {
	frames := len(p) / outputFrameSize
	if frames == 0 {
		return 0, nil
	}
	if cap(c.samples) < frames {
		c.samples = make([][2]float64, frames)
	}

	n, ok := c.stream.Stream(c.samples[:frames])
	for i := range n {
		off := i * outputFrameSize
		binary.LittleEndian.PutUint16(p[off:], uint16(pcm16(c.samples[i][0])))
		binary.LittleEndian.PutUint16(p[off+2:], uint16(pcm16(c.samples[i][1])))
	}
	if n == 0 && !ok {
		if err := c.stream.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	return n * outputFrameSize, nil
}

// pcm16 converts a [-1, 1] sample back to 16-bit, clamping overshoot from
// the interpolation.
func pcm16(x float64) int16 {
	v := math.Round(x * 32768)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
