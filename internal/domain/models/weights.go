package models

import (
	"strings"
	"time"
)

// Weight bounds shared by every scope.
const (
	WeightMin     = 0.5
	WeightMax     = 2.0
	WeightDefault = 1.0
)

// ScopeAny is the wildcard component of a weight scope key.
const ScopeAny = "*"

// WeightRecord is the learned state for one filter in one scope.
type WeightRecord struct {
	Weight       float64 `json:"weight"`
	TotalUses    int     `json:"total_uses"`
	SuccessCount int     `json:"success_count"`
	FailureCount int     `json:"failure_count"`
	SuccessRate  float64 `json:"success_rate"`
}

// ScopeKey builds the flat composite key for a (filter, symbol, regime)
// scope. Wildcards mark the unconstrained components, e.g. the global scope
// for "trend_adx" is "trend_adx|*|*".
func ScopeKey(filter, symbol string, regime RegimeType) string {
	if symbol == "" {
		symbol = ScopeAny
	}
	r := string(regime)
	if r == "" {
		r = ScopeAny
	}
	return filter + "|" + symbol + "|" + r
}

// SplitScopeKey returns the components of a composite scope key.
func SplitScopeKey(key string) (filter, symbol, regime string) {
	parts := strings.SplitN(key, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, ScopeAny)
	}
	return parts[0], parts[1], parts[2]
}

// WeightTable is the durable weight/stat document. It round-trips every
// scoped record and setup aggregate losslessly.
type WeightTable struct {
	Records map[string]*WeightRecord `json:"records"`
	Setups  map[string]*SetupStats   `json:"setups,omitempty"`
	SavedAt time.Time                `json:"saved_at"`
}

// NewWeightTable returns an empty table.
func NewWeightTable() *WeightTable {
	return &WeightTable{
		Records: make(map[string]*WeightRecord),
		Setups:  make(map[string]*SetupStats),
	}
}

// Clone deep-copies the table so a flush never serializes state that a
// concurrent update is still mutating.
func (t *WeightTable) Clone() *WeightTable {
	out := NewWeightTable()
	out.SavedAt = t.SavedAt
	for k, r := range t.Records {
		cp := *r
		out.Records[k] = &cp
	}
	for k, s := range t.Setups {
		cp := *s
		out.Setups[k] = &cp
	}
	return out
}
