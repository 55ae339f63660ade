package player

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/olivier-w/orbviz/internal/analysis"
	"github.com/olivier-w/orbviz/internal/session"
)

const defaultVolume = 0.8

// Loader opens sources for a session.Controller.
type Loader struct {
	Analysis analysis.Options
	Volume   float64
}

// Load opens src and starts playing it. A cancelled ctx aborts the open and
// releases anything acquired so far.
func (l Loader) Load(ctx context.Context, src session.Source) (session.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		dec     pcmSource
		cleanup func()
	)
	switch src.Kind() {
	case session.KindStream:
		sd, err := newStreamDecoder(src.URL)
		if err != nil {
			return nil, err
		}
		dec, cleanup = sd, func() { _ = sd.Close() }
	case session.KindFile:
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, err
		}
		fd, err := newDecoder(src.Path, f)
		if err != nil {
			f.Close()
			return nil, err
		}
		dec, cleanup = fd, func() { _ = f.Close() }
	default:
		return nil, fmt.Errorf("source %q has neither a path nor a URL", src.Label)
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return nil, err
	}

	vol := l.Volume
	if vol <= 0 {
		vol = defaultVolume
	}
	p, err := start(dec, l.Analysis, vol, cleanup)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("error creating player: %w", err)
	}

	if err := ctx.Err(); err != nil {
		p.Close()
		return nil, err
	}
	slog.Info("playback started", "label", src.Label, "duration", p.Duration())
	return p, nil
}
