package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/olivier-w/orbviz/internal/config"
	"github.com/olivier-w/orbviz/internal/media"
	"github.com/olivier-w/orbviz/internal/session"
	"github.com/olivier-w/orbviz/internal/theme"
)

// setupLogging installs the default slog logger. The TUI owns the terminal,
// so logs go to the configured file or nowhere.
func setupLogging(cfg *config.Config) (func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel.Level()}
	if cfg.LogFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, opts)))
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, opts)))
	return func() { _ = f.Close() }, nil
}

// loadCatalog returns the built-in tables with the user's presets added,
// and checks that the configured theme and mode exist.
func loadCatalog(cfg *config.Config) (*theme.Catalog, error) {
	cat, err := theme.Builtin()
	if err != nil {
		return nil, err
	}
	cat.Merge(cfg.Presets)

	if _, ok := cat.Theme(cfg.Theme); !ok {
		return nil, fmt.Errorf("unknown theme %q", cfg.Theme)
	}
	if _, ok := cat.Mode(cfg.Mode); !ok {
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	return cat, nil
}

// initialSource picks what plays at launch: the command-line argument, or
// else the first preset. It returns nil when there is nothing to play.
func initialSource(args []string, cat *theme.Catalog, musicDir string) (*session.Source, error) {
	if len(args) > 0 {
		arg := args[0]
		if !session.IsURL(arg) {
			if err := media.CheckPath(arg); err != nil {
				return nil, err
			}
		}
		src := media.Resolve("", arg, "")
		return &src, nil
	}
	if len(cat.Presets) == 0 {
		return nil, nil
	}
	pr := cat.Presets[0]
	src := media.Resolve(pr.Name, pr.Location, musicDir)
	return &src, nil
}
