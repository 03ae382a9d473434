package models

import "time"

// Direction of a filter vote or an emitted signal.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionNone Direction = "NONE"
)

// RegimeType is a coarse classification of current market behavior.
type RegimeType string

const (
	RegimeTrending    RegimeType = "TRENDING"
	RegimeRanging     RegimeType = "RANGING"
	RegimeVolatile    RegimeType = "VOLATILE"
	RegimeLowActivity RegimeType = "LOW_ACTIVITY"
)

// FilterCategory groups filters for regime selection and weighting.
type FilterCategory string

const (
	CategoryMomentum   FilterCategory = "momentum"
	CategoryTrend      FilterCategory = "trend"
	CategoryVolume     FilterCategory = "volume"
	CategoryStructure  FilterCategory = "structure"
	CategoryVolatility FilterCategory = "volatility"
	CategorySmartMoney FilterCategory = "smc"
	CategoryPattern    FilterCategory = "pattern"
)

// RegimeClassification is the smoothed output of the regime classifier.
// RawType/RawConfidence carry the unsmoothed single-sample read.
type RegimeClassification struct {
	Type          RegimeType
	Confidence    float64
	RawType       RegimeType
	RawConfidence float64
	// TimeframeAgreement is the share of contributing timeframes whose own
	// top-scoring regime matches the overall raw winner.
	TimeframeAgreement float64
	Degraded           bool // true when too few candles forced the fallback read
}

// FilterVote is one filter's verdict for one evaluation. Never persisted
// directly; aggregated into Signal.
type FilterVote struct {
	Name      string         `json:"name"`
	Category  FilterCategory `json:"category"`
	Passed    bool           `json:"passed"`
	Direction Direction      `json:"direction"`
	Weight    float64        `json:"weight"`
	Rationale string         `json:"rationale"`
}

// SignalStrength bands confidence for display.
type SignalStrength string

const (
	StrengthVeryStrong SignalStrength = "VERY_STRONG"
	StrengthStrong     SignalStrength = "STRONG"
	StrengthModerate   SignalStrength = "MODERATE"
	StrengthWeak       SignalStrength = "WEAK"
)

// RiskLevel annotates an emitted signal with a coarse risk read derived from
// confidence and regime volatility.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Signal is the engine's final, immutable decision for one evaluation.
type Signal struct {
	ID                 string               `json:"id"`
	Symbol             string               `json:"symbol"`
	Timestamp          time.Time            `json:"timestamp"`
	Direction          Direction            `json:"direction"`
	Confidence         float64              `json:"confidence"`
	Regime             RegimeClassification `json:"regime"`
	SetupTag           string               `json:"setup_tag"`
	Filters            []FilterVote         `json:"filters"`
	PassedCount        int                  `json:"passed_count"`
	ContradictionCount int                  `json:"contradiction_count"`
	Execute            bool                 `json:"execute"`
	Strength           SignalStrength       `json:"strength"`
	Risk               RiskLevel            `json:"risk"`
	Reasoning          string               `json:"reasoning"`
}

// TradeOutcome is the realized result of acting on a signal, supplied by the
// execution collaborator arbitrarily long after emission.
type TradeOutcome struct {
	SignalID  string    `json:"signal_id"`
	Success   bool      `json:"success"`
	PnL       float64   `json:"pnl"`
	EntryTime time.Time `json:"entry_time"`
	ExitTime  time.Time `json:"exit_time"`
}

// SetupStats aggregates realized outcomes per setup tag.
type SetupStats struct {
	Tag         string    `json:"tag"`
	TotalTrades int       `json:"total_trades"`
	WinCount    int       `json:"win_count"`
	LossCount   int       `json:"loss_count"`
	WinRate     float64   `json:"win_rate"`
	TotalPnL    float64   `json:"total_pnl"`
	AvgPnL      float64   `json:"avg_pnl"`
	LastUpdated time.Time `json:"last_updated"`
}

// StrengthFor bands a confidence value.
func StrengthFor(confidence float64) SignalStrength {
	switch {
	case confidence >= 0.85:
		return StrengthVeryStrong
	case confidence >= 0.75:
		return StrengthStrong
	case confidence >= 0.65:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// RiskFor derives a risk level from confidence and regime.
func RiskFor(confidence float64, regime RegimeType) RiskLevel {
	score := 50.0
	if confidence > 0.8 {
		score -= 15
	} else if confidence < 0.65 {
		score += 15
	}
	if regime == RegimeVolatile {
		score += 20
	} else if regime == RegimeLowActivity {
		score += 10
	}
	switch {
	case score > 70:
		return RiskHigh
	case score > 40:
		return RiskMedium
	default:
		return RiskLow
	}
}
