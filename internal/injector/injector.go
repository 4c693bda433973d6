//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/lanepath/internal/core/observability/log"
	"github.com/zeusync/lanepath/internal/fleet"
	"github.com/zeusync/lanepath/internal/server"
)

var runnerSet = wire.NewSet(
	log.New,
	wire.Bind(new(log.Log), new(*log.Logger)),
	server.NewTelemetry,
	fleet.NewRunner,
)

func InitializeRunner(level log.Level) *fleet.Runner {
	wire.Build(runnerSet)
	return nil
}
