package indicators

import (
	"math"
	"testing"
	"time"

	"Conflux/internal/domain/models"
)

func flatCandles(n int, price, volume float64) []models.Candle {
	out := make([]models.Candle, n)
	ts := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.Candle{
			Timestamp: ts.Add(time.Duration(i) * time.Hour),
			Open:      price, High: price + 1, Low: price - 1, Close: price,
			Volume: volume,
		}
	}
	return out
}

func risingCandles(n int, start, step float64) []models.Candle {
	out := make([]models.Candle, n)
	ts := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := range out {
		p := start + step*float64(i)
		out[i] = models.Candle{
			Timestamp: ts.Add(time.Duration(i) * time.Hour),
			Open:      p - step/2, High: p + step, Low: p - step, Close: p,
			Volume: 100,
		}
	}
	return out
}

func TestSMA(t *testing.T) {
	if got := SMA([]float64{1, 2, 3, 4}, 2); got != 3.5 {
		t.Fatalf("SMA = %v, want 3.5", got)
	}
	if got := SMA([]float64{1, 2}, 5); got != 0 {
		t.Fatalf("short series should return 0, got %v", got)
	}
}

func TestRSIExtremes(t *testing.T) {
	up := risingCandles(20, 100, 1)
	if got := RSI(up, 14); got != 100 {
		t.Fatalf("all-gains RSI = %v, want 100", got)
	}
	down := risingCandles(20, 100, -1)
	if got := RSI(down, 14); got != 0 {
		t.Fatalf("all-losses RSI = %v, want 0", got)
	}
	if got := RSI(up[:5], 14); got != 50 {
		t.Fatalf("short series RSI = %v, want neutral 50", got)
	}
}

func TestATRFlat(t *testing.T) {
	cs := flatCandles(30, 100, 50)
	if got := ATR(cs, 14); got != 2 {
		t.Fatalf("flat ATR = %v, want 2", got)
	}
	if got := ATR(cs[:10], 14); got != 0 {
		t.Fatalf("short ATR = %v, want 0", got)
	}
}

func TestBollingerFlat(t *testing.T) {
	cs := flatCandles(30, 100, 50)
	mid, width := Bollinger(cs, 20)
	if mid != 100 {
		t.Fatalf("mid = %v, want 100", mid)
	}
	if width != 0 {
		t.Fatalf("flat width = %v, want 0", width)
	}
}

func TestHighLow(t *testing.T) {
	cs := risingCandles(10, 100, 1)
	hi, lo := HighLow(cs, 5)
	wantHi := cs[len(cs)-1].High
	wantLo := cs[len(cs)-5].Low
	if hi != wantHi || lo != wantLo {
		t.Fatalf("HighLow = (%v, %v), want (%v, %v)", hi, lo, wantHi, wantLo)
	}
}

func TestROC(t *testing.T) {
	cs := risingCandles(11, 100, 1)
	got := ROC(cs, 10)
	if math.Abs(got-10) > 1e-9 {
		t.Fatalf("ROC = %v, want 10", got)
	}
}

func TestVWAPFlat(t *testing.T) {
	cs := flatCandles(20, 100, 50)
	got := VWAP(cs, 10)
	if got != 100 {
		t.Fatalf("VWAP = %v, want 100", got)
	}
}

func TestOBVSlopeDirection(t *testing.T) {
	if got := OBVSlope(risingCandles(10, 100, 1), 5); got <= 0 {
		t.Fatalf("rising OBV slope = %v, want > 0", got)
	}
	if got := OBVSlope(risingCandles(10, 100, -1), 5); got >= 0 {
		t.Fatalf("falling OBV slope = %v, want < 0", got)
	}
}

func TestADXTrending(t *testing.T) {
	adx, plusDI, minusDI := ADX(risingCandles(40, 100, 2), 14)
	if adx <= 20 {
		t.Fatalf("strong uptrend ADX = %v, want > 20", adx)
	}
	if plusDI <= minusDI {
		t.Fatalf("uptrend +DI (%v) should exceed -DI (%v)", plusDI, minusDI)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Fatalf("clamp upper: %v", got)
	}
	if got := Clamp(-0.5, 0, 1); got != 0 {
		t.Fatalf("clamp lower: %v", got)
	}
	if got := Clamp(0.4, 0, 1); got != 0.4 {
		t.Fatalf("clamp inside: %v", got)
	}
}
