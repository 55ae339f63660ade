package player

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
)

// streamDecoder adapts an ffmpeg live decode subprocess to pcmSource.
// Wait closes stdout, so the process is reaped only once stdout has
// reported EOF, or on Close.
type streamDecoder struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	waitOnce  sync.Once
	waitErr   error
	closeOnce sync.Once
}

var lookPath = exec.LookPath

func newStreamDecoder(url string) (*streamDecoder, error) {
	ffmpeg, err := lookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found (required for URL playback)")
	}

	cmd := exec.Command(
		ffmpeg,
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-vn",
		"-ac", "2",
		"-ar", "44100",
		"-f", "s16le",
		"pipe:1",
	)
	cmd.Stdin = nil
	cmd.Stderr = io.Discard

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("setting up ffmpeg stream: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg stream: %w", err)
	}

	return &streamDecoder{cmd: cmd, stdout: stdout}, nil
}

func (d *streamDecoder) Read(p []byte) (int, error) {
	n, err := d.stdout.Read(p)
	if err == io.EOF {
		if werr := d.reap(); werr != nil {
			slog.Warn("ffmpeg exited with error", "err", werr)
		}
	}
	return n, err
}

func (d *streamDecoder) Length() int64     { return -1 }
func (d *streamDecoder) SampleRate() int   { return outputSampleRate }
func (d *streamDecoder) ChannelCount() int { return outputChannels }

func (d *streamDecoder) reap() error {
	d.waitOnce.Do(func() {
		d.waitErr = d.cmd.Wait()
	})
	return d.waitErr
}

func (d *streamDecoder) Close() error {
	d.closeOnce.Do(func() {
		if d.stdout != nil {
			_ = d.stdout.Close()
		}
		if d.cmd != nil && d.cmd.Process != nil {
			_ = d.cmd.Process.Kill()
		}
		_ = d.reap()
	})
	return nil
}
