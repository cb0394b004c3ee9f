//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/gameplay/internal/core/config"
	"github.com/zeusync/gameplay/internal/core/observability/log"
)

func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		ProvideLogger,
		wire.Bind(new(log.Log), new(*log.Logger)),
		ProvideWorld,
		NewApp,
	)
	return nil, nil, nil
}
