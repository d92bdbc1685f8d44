//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRateLimiter,
		ProvideCacheService,
		ProvideBytesCache,

		// Repositories
		ProvideTickStore,
		ProvideTickPublisher,
		ProvidePredictionStore,
		ProvidePriceSource,

		// Domain services
		ProvideModelServer,
		ProvideSignalGenerator,
		ProvidePredictor,

		// Use cases
		ProvideTickProcessor,
		ProvideTickPipeline,
		ProvideTickCollector,
		ProvideKafkaTicksHandler,
		ProvideAnalysisUseCase,
		ProvidePredictionUseCase,
		ProvideTicksUseCase,
		ProvideAccuracyWorker,

		// Transport
		ProvideHub,
		ProvideRouter,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
