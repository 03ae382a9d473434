package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"Conflux/internal/domain/repository"
	"Conflux/internal/services/weights"
	"Conflux/internal/usecase"
	pkgch "Conflux/pkg/clickhouse"
	"Conflux/pkg/config"
	xhttp "Conflux/pkg/http"
	pkgkafka "Conflux/pkg/kafka"
	applogger "Conflux/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	engine     *usecase.SignalEngine
	weights    *weights.Store
	weightRepo repository.WeightTableRepository
	runner     *usecase.FeedRunner
	consumer   *pkgkafka.Consumer
	oh         *usecase.KafkaOutcomesHandler
	publisher  repository.SignalPublisher
	chClient   *pkgch.Client

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	engine *usecase.SignalEngine,
	store *weights.Store,
	weightRepo repository.WeightTableRepository,
	runner *usecase.FeedRunner,
	consumer *pkgkafka.Consumer,
	oh *usecase.KafkaOutcomesHandler,
	publisher repository.SignalPublisher,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		handler:    handler,
		engine:     engine,
		weights:    store,
		weightRepo: weightRepo,
		runner:     runner,
		consumer:   consumer,
		oh:         oh,
		publisher:  publisher,
		chClient:   chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := a.cfg.Metrics.Path
	if !a.cfg.Metrics.Enabled {
		metricsPath = ""
	}
	a.httpServer = xhttp.NewServer(a.handler, a.log,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	// Live feed
	if a.runner != nil {
		go func() {
			if err := a.runner.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Error("feed runner stopped", applogger.Error(err))
			}
		}()
		a.log.Info("feed runner started", applogger.Strings("symbols", a.cfg.Feed.Symbols))
	}

	// Outcome feedback consumer
	if a.consumer != nil && a.oh != nil {
		a.consumer.RegisterHandler(a.oh)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.oh.Topic()))
	}

	// HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services, then flushes learned weights so a
// restart resumes from the latest table.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("signal publisher close error", applogger.Error(err))
		}
	}

	if a.weights != nil {
		if err := a.weights.Flush(ctx); err != nil {
			a.log.Warn("weights flush error", applogger.Error(err))
		}
	}

	if a.weightRepo != nil {
		if err := a.weightRepo.Close(); err != nil {
			a.log.Warn("weight repo close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
