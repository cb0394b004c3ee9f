package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jakecoffman/cp"

	"github.com/zeusync/gameplay/internal/core/components"
	"github.com/zeusync/gameplay/internal/core/config"
	"github.com/zeusync/gameplay/internal/core/effects"
	"github.com/zeusync/gameplay/internal/core/host"
	"github.com/zeusync/gameplay/internal/core/observability/log"
	"github.com/zeusync/gameplay/internal/core/world"
	"github.com/zeusync/gameplay/internal/injector"
)

func main() {
	var (
		path     = flag.String("config", "cmd/sandbox/defs.yaml", "definitions file")
		watch    = flag.Bool("watch", false, "reload the definitions file when it changes")
		frames   = flag.Int("frames", -1, "frames to run, 0 runs until interrupted; -1 uses loop.frames")
		logLevel = flag.String("log-level", "", "overrides log_level from the definitions file")
	)
	flag.Parse()

	if err := run(*path, *watch, *frames, *logLevel); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "sandbox:", err)
		os.Exit(1)
	}
}

func run(path string, watch bool, frames int, logLevel string) error {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if frames >= 0 {
		cfg.Loop.Frames = frames
	}

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	logger, w := app.Log, app.World
	for _, h := range w.Hosts() {
		if mv, ok := host.Find[*components.Movement](h); ok {
			mv.SetHeading(cp.Vector{X: 1})
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopCh)
	go func() {
		select {
		case sig := <-stopCh:
			logger.Info("stopping", log.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	if watch {
		watcher, err := config.NewWatcher(path)
		if err != nil {
			return err
		}
		defer watcher.Close()
		go forwardReloads(ctx, watcher, w, logger)
	}

	logger.Info("sandbox started",
		log.String("config", path),
		log.Int("hosts", w.Len()),
		log.Int("frames", cfg.Loop.Frames),
	)
	err = w.Run(ctx, cfg.Loop.FrameStep, cfg.Loop.Frames)
	report(w, logger)
	return err
}

// forwardReloads hands every reloaded config to the loop goroutine.
func forwardReloads(ctx context.Context, watcher *config.Watcher, w *world.World, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("definitions not reloaded", log.Error(err))
		case cfg, ok := <-watcher.Reloads:
			if !ok {
				return
			}
			w.Post(func() {
				if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
					logger.SetLevel(level)
				}
				if err := w.Reload(cfg, effects.NewCatalog(cfg.Effects), logger); err != nil {
					logger.Warn("reload incomplete", log.Error(err))
				}
			})
		}
	}
}

func report(w *world.World, logger *log.Logger) {
	for _, h := range w.Hosts() {
		fields := []log.Field{
			log.String("host", h.Name()),
			log.Int("effects", h.Resolver().Len()),
		}
		if hp, ok := host.Find[*components.Health](h); ok {
			fields = append(fields, log.Float64("health", hp.Current()), log.Float64("max_health", hp.Max()))
		}
		if mv, ok := host.Find[*components.Movement](h); ok {
			fields = append(fields, log.Float64("speed", mv.Speed()), log.Float64("x", mv.Position.X), log.Float64("y", mv.Position.Y))
		}
		logger.Info("host state", fields...)
	}
	logger.Info("sandbox stopped", log.Uint64("frames", w.Frame()))
}
