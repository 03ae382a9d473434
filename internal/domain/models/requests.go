package models

// Requests for the signal HTTP endpoints. Defined in domain for consistency and reuse.

// CandlePayload is the wire form of a single candle.
type CandlePayload struct {
	T int64   `json:"t" validate:"required"`
	O float64 `json:"o" validate:"required"`
	H float64 `json:"h" validate:"required"`
	L float64 `json:"l" validate:"required"`
	C float64 `json:"c" validate:"required"`
	V float64 `json:"v"`
}

// SignalRequest carries a full multi-timeframe snapshot for one evaluation.
type SignalRequest struct {
	Symbol     string                     `json:"symbol" validate:"required"`
	Timeframes map[string][]CandlePayload `json:"timeframes" validate:"required,min=1"`
}

// OutcomeRequest reports the realized result of a previously emitted signal.
type OutcomeRequest struct {
	SignalID  string  `json:"signal_id" validate:"required"`
	Success   bool    `json:"success"`
	PnL       float64 `json:"pnl"`
	EntryTime string  `json:"entry_time"`
	ExitTime  string  `json:"exit_time"`
}

// WeightsRequest queries the effective merged weights for a scope.
type WeightsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Regime string `query:"regime" json:"regime" default:"TRENDING" validate:"oneof=TRENDING RANGING VOLATILE LOW_ACTIVITY"`
}
