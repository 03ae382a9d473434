package repository

import (
	"context"

	"Conflux/internal/domain/models"
)

// WeightTableRepository persists the weight/stat table wholesale. Load returns
// (nil, nil) when no prior state exists.
type WeightTableRepository interface {
	Load(ctx context.Context) (*models.WeightTable, error)
	Save(ctx context.Context, table *models.WeightTable) error
	Close() error
}

// OutcomeLedgerRepository mirrors the append-only signal/outcome ledger to
// durable storage for offline analysis. Failures must never block signal
// generation.
type OutcomeLedgerRepository interface {
	Init(ctx context.Context) error
	AppendSignal(ctx context.Context, s *models.Signal) error
	AppendOutcome(ctx context.Context, o models.TradeOutcome) error
	Health(ctx context.Context) error
	Close() error
}

// SignalPublisher pushes executed signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	Close() error
}

// CandleStream is the market-data boundary: a push source of closed candles.
type CandleStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.StreamCandle, <-chan error)
	Close() error
	IsConnected() bool
}

// Metrics records engine observability counters.
type Metrics interface {
	RecordSignal(result string, regime models.RegimeType)
	RecordOutcome(success bool)
	RecordUnknownOutcome()
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordWeight(filter string, weight float64)
}
