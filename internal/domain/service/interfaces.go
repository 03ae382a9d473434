package service

import "Conflux/internal/domain/models"

// RegimeClassifier scores a multi-timeframe snapshot against the regime
// archetypes and emits a smoothed classification. Classify must degrade on
// bad input, never fail.
type RegimeClassifier interface {
	Classify(snapshot *models.MarketSnapshot) models.RegimeClassification
	Reset()
}

// Filter is an independent technical predicate contributing one vote to a
// signal. Evaluate returns nil when the filter is not applicable to the
// snapshot (distinct from a failed vote). Implementations must be pure:
// no I/O, no retained state.
type Filter interface {
	Name() string
	Category() models.FilterCategory
	Evaluate(snapshot *models.MarketSnapshot, weight float64) *models.FilterVote
}

// WeightProvider supplies effective per-filter weights for a scope.
type WeightProvider interface {
	GetWeights(symbol string, regime models.RegimeType, names []string) map[string]float64
}
