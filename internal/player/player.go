package player

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/olivier-w/orbviz/internal/analysis"
	"github.com/olivier-w/orbviz/internal/session"
)

const (
	bytesPerSec  = outputSampleRate * outputFrameSize
	monitorEvery = 100 * time.Millisecond
)

// countingReader wraps an io.Reader and tracks bytes read and whether the
// source reported EOF.
type countingReader struct {
	reader io.Reader
	pos    int64
	eof    bool
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	if err == io.EOF {
		cr.eof = true
	}
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) EOF() bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.eof
}

// otoPlayer is the subset of *oto.Player the Player drives.
type otoPlayer interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(float64)
}

// Player plays one source and feeds every byte it plays into an analysis
// node. It satisfies session.Stream.
type Player struct {
	decoder   pcmSource
	counter   *countingReader
	node      *analysis.Analyser
	otoPlayer otoPlayer
	duration  time.Duration
	volume    float64
	paused    bool
	done      chan struct{}
	stopMon   chan struct{}
	cleanup   func()
	mu        sync.Mutex
	closed    bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   outputSampleRate,
			ChannelCount: outputChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// start wires decoder -> counter -> analysis tee -> oto and begins playback.
// cleanup runs once on Close.
func start(dec pcmSource, opts analysis.Options, volume float64, cleanup func()) (*Player, error) {
	conformed, err := newConformReader(dec)
	if err != nil {
		return nil, err
	}

	opts.Channels = outputChannels
	node, err := analysis.New(opts)
	if err != nil {
		return nil, err
	}

	ctx, err := initOto()
	if err != nil {
		return nil, err
	}

	var dur time.Duration
	if total := conformed.Length(); total > 0 {
		dur = time.Duration(float64(total) / float64(bytesPerSec) * float64(time.Second))
	}

	p := &Player{
		decoder:  conformed,
		counter:  &countingReader{reader: conformed},
		node:     node,
		duration: dur,
		volume:   volume,
		done:     make(chan struct{}),
		stopMon:  make(chan struct{}),
		cleanup:  cleanup,
	}

	op := ctx.NewPlayer(io.TeeReader(p.counter, node))
	op.SetVolume(volume)
	op.Play()
	p.otoPlayer = op

	go p.monitor()
	return p, nil
}

// monitor closes done once the source is exhausted and oto has drained its
// buffer.
func (p *Player) monitor() {
	ticker := time.NewTicker(monitorEvery)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopMon:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		finished := !p.paused && p.counter.EOF() && !p.otoPlayer.IsPlaying()
		p.mu.Unlock()
		if finished {
			close(p.done)
			return
		}
	}
}

// Node returns the analysis node fed by this player.
func (p *Player) Node() session.Node { return p.node }

// Done returns a channel that closes when playback finishes naturally.
func (p *Player) Done() <-chan struct{} { return p.done }

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.otoPlayer == nil {
		return
	}
	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Pause pauses playback without toggling.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	p.paused = true
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the amount of audio handed to the output so far.
func (p *Player) Position() time.Duration {
	if p.counter == nil {
		return 0
	}
	secs := float64(p.counter.Pos()) / float64(bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration, or 0 for live streams.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v = max(0, min(1, v))
	p.volume = v
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(v)
	}
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.SetVolume(p.Volume() + delta)
}

// Close stops playback and releases all resources. Safe to call twice.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	if p.stopMon != nil {
		close(p.stopMon)
	}
	cleanup := p.cleanup
	p.mu.Unlock()

	if p.node != nil {
		p.node.Reset()
	}
	if cleanup != nil {
		cleanup()
	}
	slog.Debug("player closed")
}
