//go:build wireinject
// +build wireinject

package di

import (
	"Conflux/pkg/config"
	"Conflux/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideWeightRepository,
		ProvideClickHouseClient,
		ProvideOutcomeMirror,
		ProvideKafkaProducer,
		ProvideSignalPublisher,
		ProvideKafkaConsumer,
		ProvideCandleStream,

		// Engine components
		ProvideRegimeClassifier,
		ProvideFilterRegistry,
		ProvideWeightStore,
		ProvideScorer,
		ProvideLedger,
		ProvideSignalEngine,

		// Drivers
		ProvideOutcomesHandler,
		ProvideFeedRunner,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
