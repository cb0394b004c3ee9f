package injector

import (
	"github.com/zeusync/gameplay/internal/core/config"
	"github.com/zeusync/gameplay/internal/core/observability/log"
	"github.com/zeusync/gameplay/internal/core/world"
)

// App is a populated world and the logger it writes through.
type App struct {
	Log   *log.Logger
	World *world.World
}

func NewApp(l *log.Logger, w *world.World) *App {
	return &App{Log: l, World: w}
}

// ProvideLogger builds the process logger at the configured level.
func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	l := log.New(level)
	return l, func() { _ = l.Sync() }, nil
}

// ProvideWorld builds the world and every host defined in cfg.
func ProvideWorld(cfg *config.Config, l log.Log) (*world.World, func(), error) {
	w, err := world.FromConfig(cfg, l)
	if err != nil {
		return nil, nil, err
	}
	return w, w.Close, nil
}
