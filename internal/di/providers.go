package di

import (
	"context"
	"fmt"
	"time"

	"Conflux/internal/domain/repository"
	domsvc "Conflux/internal/domain/service"
	"Conflux/internal/handler/api"
	internalrepo "Conflux/internal/repository"
	"Conflux/internal/service/candlefeed"
	"Conflux/internal/services/filters"
	"Conflux/internal/services/outcomes"
	"Conflux/internal/services/regime"
	"Conflux/internal/services/scoring"
	"Conflux/internal/services/weights"
	"Conflux/internal/usecase"
	pkgch "Conflux/pkg/clickhouse"
	"Conflux/pkg/config"
	xhttp "Conflux/pkg/http"
	pkgkafka "Conflux/pkg/kafka"
	applogger "Conflux/pkg/logger"
	"Conflux/pkg/metrics"
	"Conflux/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stdout",
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideWeightRepository selects the weight persistence backend.
func ProvideWeightRepository(cfg *config.Config) (repository.WeightTableRepository, error) {
	switch cfg.Persistence.Backend {
	case "redis":
		return internalrepo.NewRedisWeightStore(
			cfg.Persistence.Redis.Addr,
			cfg.Persistence.Redis.Password,
			cfg.Persistence.Redis.DB,
			cfg.Persistence.Redis.Key,
		), nil
	case "file":
		return internalrepo.NewFileWeightStore(cfg.Persistence.File.Path), nil
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", cfg.Persistence.Backend)
	}
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideOutcomeMirror creates the durable ledger mirror, or nil when
// ClickHouse is disabled.
func ProvideOutcomeMirror(client *pkgch.Client, cfg *config.Config) (repository.OutcomeLedgerRepository, error) {
	if client == nil {
		return nil, nil
	}
	mirror := internalrepo.NewClickHouseOutcomeStore(client, cfg.ClickHouse.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mirror.Init(ctx); err != nil {
		return nil, fmt.Errorf("outcome mirror init: %w", err)
	}
	return mirror, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.Producer.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher creates the downstream signal publisher, or nil when
// publishing is off.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil || !cfg.Engine.PublishSignals || cfg.Kafka.SignalsTopic == "" {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
}

// ProvideKafkaConsumer creates the outcome feedback consumer, or nil when
// Kafka is disabled or no outcomes topic is configured.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.OutcomesTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRegimeClassifier builds the classifier from config, falling back to
// the shipped tuning for unset fields.
func ProvideRegimeClassifier(cfg *config.Config) domsvc.RegimeClassifier {
	rc := regime.DefaultConfig()
	if len(cfg.Regime.TimeframeWeights) > 0 {
		rc.Timeframes = rc.Timeframes[:0]
		for tf, w := range cfg.Regime.TimeframeWeights {
			rc.Timeframes = append(rc.Timeframes, regime.TimeframeWeight{Timeframe: tf, Weight: w})
		}
	}
	if cfg.Regime.ADXStrong > 0 {
		rc.ADXStrong = cfg.Regime.ADXStrong
	}
	if cfg.Regime.ADXWeak > 0 {
		rc.ADXWeak = cfg.Regime.ADXWeak
	}
	if cfg.Regime.ATRExpansion > 0 {
		rc.ATRExpansion = cfg.Regime.ATRExpansion
	}
	if cfg.Regime.VolumeQuiet > 0 {
		rc.VolumeQuiet = cfg.Regime.VolumeQuiet
	}
	if cfg.Regime.SmoothingThreshold > 0 {
		rc.SmoothingThreshold = cfg.Regime.SmoothingThreshold
	}
	if len(cfg.Regime.OffHoursUTC) > 0 {
		rc.OffHoursUTC = cfg.Regime.OffHoursUTC
	}
	return regime.NewClassifier(rc)
}

// ProvideFilterRegistry creates the built-in filter set evaluated on the
// default decision timeframe.
func ProvideFilterRegistry() *filters.Registry {
	return filters.Builtins(string(repository.DefaultTimeframe()))
}

// ProvideWeightStore creates and loads the adaptive weight store.
func ProvideWeightStore(cfg *config.Config, repo repository.WeightTableRepository, log *applogger.Logger) *weights.Store {
	wc := weights.DefaultConfig()
	wc.MinSample = cfg.Weights.MinSample
	wc.LearningRate = cfg.Weights.LearningRate
	wc.SuccessBonus = cfg.Weights.SuccessBonus
	wc.FailurePenalty = cfg.Weights.FailurePenalty
	if cfg.Weights.Decay > 0 {
		wc.Decay = cfg.Weights.Decay
	}
	wc.FlushEvery = cfg.Weights.FlushEvery

	store := weights.NewStore(wc, repo, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store.Load(ctx)
	return store
}

// ProvideScorer creates the confidence scorer with the shipped tuning.
func ProvideScorer() *scoring.Scorer {
	return scoring.NewScorer(scoring.DefaultConfig())
}

// ProvideLedger creates the in-memory outcome ledger with optional mirror.
func ProvideLedger(cfg *config.Config, mirror repository.OutcomeLedgerRepository, log *applogger.Logger) *outcomes.Ledger {
	return outcomes.NewLedger(cfg.Outcomes.Retention, mirror, log)
}

// ProvideSignalEngine assembles the engine with gate thresholds from config.
func ProvideSignalEngine(
	cfg *config.Config,
	classifier domsvc.RegimeClassifier,
	registry *filters.Registry,
	store *weights.Store,
	scorer *scoring.Scorer,
	ledger *outcomes.Ledger,
	publisher repository.SignalPublisher,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.SignalEngine {
	gate := usecase.GateConfig{
		MinConfidence:            cfg.Engine.MinConfidence,
		MinFiltersRequired:       cfg.Engine.MinFiltersRequired,
		MaxContradictions:        cfg.Engine.MaxContradictions,
		VolatileRegimeConfidence: cfg.Engine.VolatileRegimeConfidence,
	}
	return usecase.NewSignalEngine(classifier, registry, store, scorer, ledger, publisher, m, log, gate)
}

// ProvideOutcomesHandler registers the Kafka feedback handler, or nil when
// the consumer is off.
func ProvideOutcomesHandler(cfg *config.Config, engine *usecase.SignalEngine, m repository.Metrics) *usecase.KafkaOutcomesHandler {
	if !cfg.Kafka.Enabled || cfg.Kafka.OutcomesTopic == "" {
		return nil
	}
	return usecase.NewKafkaOutcomesHandler(cfg.Kafka.OutcomesTopic, engine, m)
}

// ProvideCandleStream creates the live feed client, or nil when the feed is
// disabled.
func ProvideCandleStream(cfg *config.Config, log *applogger.Logger) repository.CandleStream {
	if !cfg.Feed.Enabled {
		return nil
	}
	pingInterval := cfg.Feed.PingInterval
	if pingInterval == 0 {
		pingInterval = 20 * time.Second
	}
	return candlefeed.New(
		cfg.Feed.WebSocketURL,
		cfg.Feed.Symbols,
		cfg.Feed.Timeframes,
		cfg.Feed.ReconnectDelay,
		pingInterval,
		log,
	)
}

// ProvideFeedRunner drives the engine from the live stream, or nil when the
// feed is disabled.
func ProvideFeedRunner(stream repository.CandleStream, engine *usecase.SignalEngine, cfg *config.Config, log *applogger.Logger) *usecase.FeedRunner {
	if stream == nil {
		return nil
	}
	windows := candlefeed.NewWindows(cfg.Feed.WindowSize)
	triggerTF := string(repository.DefaultTimeframe())
	if len(cfg.Feed.Timeframes) > 0 {
		triggerTF = string(repository.NormalizeTimeframe(cfg.Feed.Timeframes[0]))
	}
	return usecase.NewFeedRunner(stream, windows, engine, triggerTF, log)
}

// ProvideHTTPHandler exposes the engine over HTTP.
func ProvideHTTPHandler(log *applogger.Logger, engine *usecase.SignalEngine) xhttp.Handler {
	return api.NewSignalsEchoHandler(log, engine)
}

// ProvideApp creates the application server.
func ProvideApp(
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
) *server.App {
	return server.New(cfg, log, handler, engine, store, weightRepo, runner, consumer, oh, publisher, chClient)
}
