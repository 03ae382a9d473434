package models

import "time"

// Candle represents a single OHLCV record, ordered oldest-to-newest within a series.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// MarketSnapshot is a read-only view of multi-timeframe candle series for one
// instrument. Owned by the caller for the duration of a single evaluation.
type MarketSnapshot struct {
	Symbol     string
	Timeframes map[string][]Candle
}

// StreamCandle is one closed candle event from a live feed.
type StreamCandle struct {
	Symbol    string
	Timeframe string
	Candle    Candle
}

// Series returns the candle series for a timeframe, or nil if absent.
func (s *MarketSnapshot) Series(tf string) []Candle {
	if s == nil || s.Timeframes == nil {
		return nil
	}
	return s.Timeframes[tf]
}

// Last returns the most recent candle of a timeframe.
func (s *MarketSnapshot) Last(tf string) (Candle, bool) {
	cs := s.Series(tf)
	if len(cs) == 0 {
		return Candle{}, false
	}
	return cs[len(cs)-1], true
}
