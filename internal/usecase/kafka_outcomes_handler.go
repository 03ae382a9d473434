package usecase

import (
	"context"
	"encoding/json"
	"time"

	"Conflux/internal/domain/models"
	domrepo "Conflux/internal/domain/repository"
	pkgkafka "Conflux/pkg/kafka"
)

// KafkaOutcomesHandler consumes trade outcome messages and feeds them back
// into the engine's learning loop.
type KafkaOutcomesHandler struct {
	topic   string
	engine  *SignalEngine
	metrics domrepo.Metrics
}

func NewKafkaOutcomesHandler(topic string, engine *SignalEngine, metrics domrepo.Metrics) *KafkaOutcomesHandler {
	return &KafkaOutcomesHandler{topic: topic, engine: engine, metrics: metrics}
}

func (h *KafkaOutcomesHandler) Topic() string { return h.topic }

// incoming message schema: {signal_id, success, pnl, entry_time, exit_time}
func (h *KafkaOutcomesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		SignalID  string  `json:"signal_id"`
		Success   bool    `json:"success"`
		PnL       float64 `json:"pnl"`
		EntryTime int64   `json:"entry_time"`
		ExitTime  int64   `json:"exit_time"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("outcome_unmarshal")
		return err
	}

	outcome := models.TradeOutcome{
		SignalID: m.SignalID,
		Success:  m.Success,
		PnL:      m.PnL,
	}
	if m.EntryTime > 0 {
		outcome.EntryTime = time.Unix(m.EntryTime, 0)
	}
	if m.ExitTime > 0 {
		outcome.ExitTime = time.Unix(m.ExitTime, 0)
	}

	h.engine.UpdateSignalResult(ctx, outcome)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaOutcomesHandler)(nil)
