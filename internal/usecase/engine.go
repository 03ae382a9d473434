package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"Conflux/internal/domain/models"
	domrepo "Conflux/internal/domain/repository"
	domsvc "Conflux/internal/domain/service"
	"Conflux/internal/services/filters"
	"Conflux/internal/services/outcomes"
	"Conflux/internal/services/scoring"
	"Conflux/internal/services/weights"
	"Conflux/pkg/logger"
)

// GateConfig holds the quality-gate thresholds.
type GateConfig struct {
	MinConfidence            float64
	MinFiltersRequired       int
	MaxContradictions        int
	VolatileRegimeConfidence float64
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinConfidence:            0.65,
		MinFiltersRequired:       4,
		MaxContradictions:        1,
		VolatileRegimeConfidence: 0.75,
	}
}

// SignalEngine orchestrates one evaluation: regime classification, filter
// evaluation, scoring, tagging and the quality gate. It is stateless across
// calls except for the classifier's smoothing buffer and the weight table.
// Engine failures degrade to a rejected signal; nothing propagates.
type SignalEngine struct {
	classifier domsvc.RegimeClassifier
	registry   *filters.Registry
	weights    *weights.Store
	scorer     *scoring.Scorer
	ledger     *outcomes.Ledger
	publisher  domrepo.SignalPublisher
	metrics    domrepo.Metrics
	log        *logger.Logger
	gate       GateConfig
}

func NewSignalEngine(
	classifier domsvc.RegimeClassifier,
	registry *filters.Registry,
	store *weights.Store,
	scorer *scoring.Scorer,
	ledger *outcomes.Ledger,
	publisher domrepo.SignalPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	gate GateConfig,
) *SignalEngine {
	if gate.MinFiltersRequired == 0 {
		gate = DefaultGateConfig()
	}
	return &SignalEngine{
		classifier: classifier,
		registry:   registry,
		weights:    store,
		scorer:     scorer,
		ledger:     ledger,
		publisher:  publisher,
		metrics:    metrics,
		log:        log,
		gate:       gate,
	}
}

// GenerateSignal runs the full pipeline for one snapshot. It always returns
// a signal: malformed input or internal faults produce a rejected signal
// tagged ERROR with the failure in the reasoning, never an error.
func (e *SignalEngine) GenerateSignal(ctx context.Context, snapshot *models.MarketSnapshot) (sig *models.Signal) {
	start := time.Now()
	symbol := ""
	if snapshot != nil {
		symbol = snapshot.Symbol
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("signal evaluation panic", logger.Any("panic", r), logger.String("symbol", symbol))
			sig = e.rejected(symbol, fmt.Sprintf("internal fault: %v", r))
		}
		e.metrics.RecordLatency("generate_signal", time.Since(start).Seconds())
		if sig != nil {
			result := "rejected"
			if sig.Execute {
				result = "emitted"
			}
			e.metrics.RecordSignal(result, sig.Regime.Type)
			e.ledger.Append(ctx, sig)
		}
	}()

	if snapshot == nil || len(snapshot.Timeframes) == 0 {
		return e.rejected(symbol, "malformed snapshot: no timeframe data")
	}

	regime := e.classifier.Classify(snapshot)

	votes, faults := e.evaluateFilters(snapshot, regime)
	score := e.scorer.Evaluate(votes, regime)
	tag := scoring.Tag(votes, regime.Type)

	sig = &models.Signal{
		ID:                 uuid.NewString(),
		Symbol:             symbol,
		Timestamp:          time.Now(),
		Direction:          score.Direction,
		Confidence:         score.Confidence,
		Regime:             regime,
		SetupTag:           tag,
		Filters:            votes,
		PassedCount:        score.PassedCount,
		ContradictionCount: score.Contradictions,
	}

	if reason, ok := e.qualityGate(score, regime); !ok {
		sig.Execute = false
		sig.Confidence = 0
		sig.Direction = models.DirectionNone
		sig.Strength = models.StrengthWeak
		sig.Risk = models.RiskFor(0, regime.Type)
		sig.Reasoning = reason
		return sig
	}

	sig.Execute = true
	sig.Strength = models.StrengthFor(sig.Confidence)
	sig.Risk = models.RiskFor(sig.Confidence, regime.Type)
	sig.Reasoning = e.reasoning(sig, faults)

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, sig); err != nil {
			e.log.Warn("signal publish failed", logger.Error(err), logger.String("signal", sig.ID))
			e.metrics.RecordError("publish")
		}
	}
	return sig
}

// evaluateFilters runs the regime-selected subset. A panicking filter is
// skipped, its fault recorded for the reasoning string.
func (e *SignalEngine) evaluateFilters(snapshot *models.MarketSnapshot, regime models.RegimeClassification) ([]models.FilterVote, []string) {
	selected := e.registry.ForRegime(regime.Type)
	names := make([]string, len(selected))
	for i, f := range selected {
		names[i] = f.Name()
	}
	weightsByName := e.weights.GetWeights(snapshot.Symbol, regime.Type, names)

	votes := make([]models.FilterVote, 0, len(selected))
	var faults []string
	for _, f := range selected {
		v := e.safeEvaluate(f, snapshot, weightsByName[f.Name()], &faults)
		if v != nil {
			votes = append(votes, *v)
		}
	}
	return votes, faults
}

func (e *SignalEngine) safeEvaluate(f domsvc.Filter, snapshot *models.MarketSnapshot, weight float64, faults *[]string) (v *models.FilterVote) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("filter fault", logger.String("filter", f.Name()), logger.Any("panic", r))
			e.metrics.RecordError("filter_fault")
			*faults = append(*faults, fmt.Sprintf("%s faulted", f.Name()))
			v = nil
		}
	}()
	return f.Evaluate(snapshot, weight)
}

// qualityGate applies the rejection rules; the first violated rule wins.
func (e *SignalEngine) qualityGate(score scoring.Score, regime models.RegimeClassification) (string, bool) {
	switch {
	case regime.Type == models.RegimeLowActivity:
		return "rejected: low-activity regime", false
	case regime.Type == models.RegimeVolatile && regime.Confidence < e.gate.VolatileRegimeConfidence:
		return fmt.Sprintf("rejected: volatile regime with weak classification (%.2f)", regime.Confidence), false
	case score.PassedCount < e.gate.MinFiltersRequired:
		return fmt.Sprintf("rejected: only %d filters passed (minimum %d)", score.PassedCount, e.gate.MinFiltersRequired), false
	case score.Contradictions > e.gate.MaxContradictions:
		return fmt.Sprintf("rejected: %d contradicting votes (maximum %d)", score.Contradictions, e.gate.MaxContradictions), false
	case score.Confidence < e.gate.MinConfidence:
		return fmt.Sprintf("rejected: confidence %.2f below threshold %.2f", score.Confidence, e.gate.MinConfidence), false
	default:
		return "", true
	}
}

// reasoning assembles a human-readable explanation from the top contributing
// rationales plus any filter faults.
func (e *SignalEngine) reasoning(sig *models.Signal, faults []string) string {
	var reasons []string
	for _, v := range sig.Filters {
		if v.Passed && v.Direction == sig.Direction && v.Rationale != "" {
			reasons = append(reasons, v.Rationale)
		}
		if len(reasons) == 5 {
			break
		}
	}
	b := fmt.Sprintf("%s %s in %s regime (%.0f%% confidence): %s",
		sig.Strength, sig.Direction, sig.Regime.Type, sig.Confidence*100,
		strings.Join(reasons, "; "))
	if sig.ContradictionCount > 0 {
		b += fmt.Sprintf("; %d filters disagree", sig.ContradictionCount)
	}
	if len(faults) > 0 {
		b += "; skipped: " + strings.Join(faults, ", ")
	}
	return b
}

// rejected builds the degraded error signal.
func (e *SignalEngine) rejected(symbol, reason string) *models.Signal {
	return &models.Signal{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Timestamp: time.Now(),
		Direction: models.DirectionNone,
		Regime: models.RegimeClassification{
			Type: models.RegimeRanging, Confidence: 0, RawType: models.RegimeRanging, Degraded: true,
		},
		SetupTag:  "ERROR",
		Execute:   false,
		Strength:  models.StrengthWeak,
		Risk:      models.RiskHigh,
		Reasoning: reason,
	}
}

// UpdateSignalResult is the feedback hook. It resolves the outcome against
// the ledger, folds the setup aggregate into the durable weight table, and
// forwards the outcome to the weight store. Unknown signal ids are counted
// and ignored.
func (e *SignalEngine) UpdateSignalResult(ctx context.Context, outcome models.TradeOutcome) {
	sig, ok := e.ledger.Resolve(ctx, outcome)
	if !ok {
		e.log.Info("outcome for unknown signal ignored", logger.String("signal", outcome.SignalID))
		e.metrics.RecordUnknownOutcome()
		return
	}
	e.metrics.RecordOutcome(outcome.Success)
	if stats, ok := e.ledger.SetupStats(sig.SetupTag); ok {
		e.weights.RecordSetup(stats)
	}
	e.weights.RecordOutcome(sig, outcome)
	for name, w := range e.weights.GetWeights("", "", e.registry.Names()) {
		e.metrics.RecordWeight(name, w)
	}
	e.log.Info("outcome recorded",
		logger.String("signal", outcome.SignalID),
		logger.String("setup", sig.SetupTag),
		logger.Bool("success", outcome.Success),
		logger.Float64("pnl", outcome.PnL))
}

// SetupStats exposes the ledger's per-tag aggregates.
func (e *SignalEngine) SetupStats() []models.SetupStats {
	return e.ledger.AllSetupStats()
}

// EffectiveWeights exposes the merged weights for a scope.
func (e *SignalEngine) EffectiveWeights(symbol string, regime models.RegimeType) map[string]float64 {
	return e.weights.GetWeights(symbol, regime, e.registry.Names())
}
