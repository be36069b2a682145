//go:build wireinject

package di

import (
	"github.com/google/wire"

	"solar-relay/internal/app"
	"solar-relay/internal/config"
	"solar-relay/internal/usecase"
)

// InitializeApp wires the server, scheduler and relay together.
func InitializeApp(cfg *config.Config) (*app.App, func(), error) {
	wire.Build(
		RelaySet,
		provideCommands,
		provideHandlers,
		provideHTTPServer,
		provideTracing,
		provideApp,
	)
	return nil, nil, nil
}

// InitializeRelay wires a relay for one-shot CLI runs.
func InitializeRelay(cfg *config.Config) (*usecase.Relay, func(), error) {
	wire.Build(RelaySet)
	return nil, nil, nil
}
