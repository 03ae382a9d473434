package candlefeed

import (
	"testing"
	"time"

	"Conflux/internal/domain/models"
)

func streamCandle(symbol, tf string, close float64) *models.StreamCandle {
	return &models.StreamCandle{
		Symbol:    symbol,
		Timeframe: tf,
		Candle: models.Candle{
			Timestamp: time.Now(),
			Open:      close, High: close + 1, Low: close - 1, Close: close,
			Volume: 10,
		},
	}
}

func TestWindowsEvictOldest(t *testing.T) {
	w := NewWindows(3)
	for i := 0; i < 5; i++ {
		w.Add(streamCandle("BTCUSDT", "15m", float64(100+i)))
	}
	if got := w.Len("BTCUSDT", "15m"); got != 3 {
		t.Fatalf("window len = %d, want 3", got)
	}
	snap := w.Snapshot("BTCUSDT")
	cs := snap.Series("15m")
	if cs[0].Close != 102 || cs[2].Close != 104 {
		t.Fatalf("eviction order wrong: first=%v last=%v", cs[0].Close, cs[2].Close)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	w := NewWindows(10)
	w.Add(streamCandle("BTCUSDT", "15m", 100))
	snap := w.Snapshot("BTCUSDT")
	snap.Timeframes["15m"][0].Close = 999

	again := w.Snapshot("BTCUSDT")
	if again.Series("15m")[0].Close != 100 {
		t.Fatalf("snapshot must not alias the window")
	}
}

func TestSnapshotUnknownSymbol(t *testing.T) {
	w := NewWindows(10)
	if snap := w.Snapshot("ETHUSDT"); snap != nil {
		t.Fatalf("unknown symbol should return nil, got %+v", snap)
	}
}

func TestWindowsSeparateTimeframes(t *testing.T) {
	w := NewWindows(10)
	w.Add(streamCandle("BTCUSDT", "15m", 100))
	w.Add(streamCandle("BTCUSDT", "1h", 200))
	snap := w.Snapshot("BTCUSDT")
	if len(snap.Timeframes) != 2 {
		t.Fatalf("timeframes = %d, want 2", len(snap.Timeframes))
	}
	if c, ok := snap.Last("1h"); !ok || c.Close != 200 {
		t.Fatalf("1h series wrong: %+v", c)
	}
}
