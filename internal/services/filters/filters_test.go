package filters

import (
	"testing"
	"time"

	"Conflux/internal/domain/models"
)

func snapshot(tf string, cs []models.Candle) *models.MarketSnapshot {
	return &models.MarketSnapshot{
		Symbol:     "BTCUSDT",
		Timeframes: map[string][]models.Candle{tf: cs},
	}
}

func series(closes ...float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	ts := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = models.Candle{
			Timestamp: ts.Add(time.Duration(i) * time.Minute * 15),
			Open:      c, High: c + 0.5, Low: c - 0.5, Close: c,
			Volume: 100,
		}
	}
	return out
}

func TestRSIExtremeOversold(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	v := momentumRSIExtreme("15m")(snapshot("15m", series(closes...)), 1.0)
	if v == nil || !v.Passed || v.Direction != models.DirectionUp {
		t.Fatalf("steady selloff should pass oversold UP, got %+v", v)
	}
}

func TestRSIExtremeInsufficientData(t *testing.T) {
	v := momentumRSIExtreme("15m")(snapshot("15m", series(100, 101)), 1.0)
	if v != nil {
		t.Fatalf("short series should return nil, got %+v", v)
	}
}

func TestROCThreshold(t *testing.T) {
	closes := make([]float64, 12)
	for i := range closes {
		closes[i] = 100 + 0.5*float64(i)
	}
	v := momentumROC("15m")(snapshot("15m", series(closes...)), 1.0)
	if v == nil || !v.Passed || v.Direction != models.DirectionUp {
		t.Fatalf("5.5%% rise should pass ROC UP, got %+v", v)
	}

	flat := momentumROC("15m")(snapshot("15m", series(100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100)), 1.0)
	if flat == nil || flat.Passed {
		t.Fatalf("flat series should fail ROC, got %+v", flat)
	}
	if flat.Direction != models.DirectionNone {
		t.Fatalf("failed vote must carry no direction, got %s", flat.Direction)
	}
}

func TestPatternEngulfingBullish(t *testing.T) {
	cs := series(100, 100)
	// red candle then a green candle engulfing it
	cs[0].Open, cs[0].Close = 101, 100
	cs[1].Open, cs[1].Close = 99.5, 101.5
	cs[1].High, cs[1].Low = 102, 99

	v := patternEngulfing("15m")(snapshot("15m", cs), 1.0)
	if v == nil || !v.Passed || v.Direction != models.DirectionUp {
		t.Fatalf("bullish engulfing not detected: %+v", v)
	}
}

func TestPatternPinBarBullish(t *testing.T) {
	cs := series(100)
	cs[0].Open, cs[0].Close = 100, 100.2
	cs[0].High, cs[0].Low = 100.3, 97

	v := patternPinBar("15m")(snapshot("15m", cs), 1.0)
	if v == nil || !v.Passed || v.Direction != models.DirectionUp {
		t.Fatalf("bullish pin bar not detected: %+v", v)
	}
}

func TestVoteWeightPropagates(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	v := momentumRSIExtreme("15m")(snapshot("15m", series(closes...)), 1.7)
	if v == nil || v.Weight != 1.7 {
		t.Fatalf("weight must propagate into the vote, got %+v", v)
	}
}
