package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/olivier-w/orbviz/internal/config"
	"github.com/olivier-w/orbviz/internal/observe"
	"github.com/olivier-w/orbviz/internal/player"
	"github.com/olivier-w/orbviz/internal/session"
	"github.com/olivier-w/orbviz/internal/ui"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, cfgPath, err := config.LoadDefault()
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.Info("orbviz starting", "version", version, "config", cfgPath)

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	initial, err := initialSource(args, cat, cfg.MusicDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    "orbviz",
			ServiceVersion: version,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("metrics shutdown", "err", err)
			}
		}()
	}
	metrics := observe.DefaultMetrics()

	ctrl := session.NewController(player.Loader{
		Analysis: cfg.AnalysisOptions(),
		Volume:   cfg.Volume,
	}, metrics)
	defer ctrl.Close()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	model := ui.New(ctrl, cat, ui.Options{
		FPS:      cfg.FPS,
		Theme:    cfg.Theme,
		Mode:     cfg.Mode,
		Rain:     cfg.Rain,
		Volume:   cfg.Volume,
		MusicDir: cfg.MusicDir,
		Drivers:  cfg.DriverConfig(),
		Metrics:  metrics,
		Initial:  initial,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx))

	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return observe.Serve(runCtx, cfg.MetricsAddr)
		})
	}

	err = g.Wait()
	slog.Info("orbviz stopped", "err", err)
	return err
}
