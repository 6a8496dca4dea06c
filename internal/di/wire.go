//go:build wireinject
// +build wireinject

package di

import (
	"CandlePull/pkg/config"
	"CandlePull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideBarStore,
		ProvideBarPublisher,
		ProvideSignalCache,

		// Ingestion
		ProvideAggregator,
		ProvideIngestPipeline,
		ProvideStreamFactory,
		ProvideSupervisor,

		// Use cases
		ProvideBarsUseCase,
		ProvideMetaUseCase,
		ProvideSignalUseCase,

		// HTTP
		ProvideHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
