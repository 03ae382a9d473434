package candlefeed

import (
	"sync"

	"Conflux/internal/domain/models"
)

// Windows keeps bounded per-symbol, per-timeframe candle histories and builds
// evaluation snapshots from them.
type Windows struct {
	size int

	mu     sync.RWMutex
	series map[string]map[string][]models.Candle
}

// NewWindows creates rolling windows holding up to size candles per series.
func NewWindows(size int) *Windows {
	if size <= 0 {
		size = 200
	}
	return &Windows{
		size:   size,
		series: make(map[string]map[string][]models.Candle),
	}
}

// Add appends a closed candle, evicting the oldest when the window is full.
func (w *Windows) Add(sc *models.StreamCandle) {
	if sc == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	tfs, ok := w.series[sc.Symbol]
	if !ok {
		tfs = make(map[string][]models.Candle)
		w.series[sc.Symbol] = tfs
	}
	cs := append(tfs[sc.Timeframe], sc.Candle)
	if len(cs) > w.size {
		cs = cs[len(cs)-w.size:]
	}
	tfs[sc.Timeframe] = cs
}

// Snapshot copies the current windows for one symbol into a MarketSnapshot.
// Returns nil when no candles have been seen for the symbol.
func (w *Windows) Snapshot(symbol string) *models.MarketSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tfs, ok := w.series[symbol]
	if !ok || len(tfs) == 0 {
		return nil
	}
	out := &models.MarketSnapshot{
		Symbol:     symbol,
		Timeframes: make(map[string][]models.Candle, len(tfs)),
	}
	for tf, cs := range tfs {
		cp := make([]models.Candle, len(cs))
		copy(cp, cs)
		out.Timeframes[tf] = cp
	}
	return out
}

// Len returns the number of candles held for one series.
func (w *Windows) Len(symbol, timeframe string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.series[symbol][timeframe])
}
