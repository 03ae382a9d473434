package indicators

import (
	"math"

	"Conflux/internal/domain/models"
)

// Shared indicator math for the regime classifier and the built-in filters.
// All functions operate on candle series ordered oldest-to-newest and return
// zero values when the series is too short.

// Closes extracts close prices.
func Closes(cs []models.Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// SMA returns the simple moving average of the last period values, or 0.
func SMA(series []float64, period int) float64 {
	if period <= 0 || len(series) < period {
		return 0
	}
	sum := 0.0
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average series.
func EMA(series []float64, period int) []float64 {
	if period <= 1 || len(series) == 0 {
		return append([]float64(nil), series...)
	}
	out := make([]float64, len(series))
	k := 2.0 / (float64(period) + 1.0)
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = series[i]*k + out[i-1]*(1.0-k)
	}
	return out
}

// LastEMA returns the final value of the EMA series, or 0 when too short.
func LastEMA(series []float64, period int) float64 {
	if len(series) < period {
		return 0
	}
	out := EMA(series, period)
	return out[len(out)-1]
}

// RSI returns the relative strength index over the last period, Wilder style.
func RSI(cs []models.Candle, period int) float64 {
	if period <= 0 || len(cs) <= period {
		return 50
	}
	var gain, loss float64
	for i := len(cs) - period; i < len(cs); i++ {
		delta := cs[i].Close - cs[i-1].Close
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	if loss == 0 {
		return 100
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}

// TrueRange returns the true range at index i (i >= 1).
func TrueRange(cs []models.Candle, i int) float64 {
	hl := cs[i].High - cs[i].Low
	hc := math.Abs(cs[i].High - cs[i-1].Close)
	lc := math.Abs(cs[i].Low - cs[i-1].Close)
	return math.Max(hl, math.Max(hc, lc))
}

// ATR returns the average true range over the last period candles.
func ATR(cs []models.Candle, period int) float64 {
	if period <= 0 || len(cs) <= period {
		return 0
	}
	sum := 0.0
	for i := len(cs) - period; i < len(cs); i++ {
		sum += TrueRange(cs, i)
	}
	return sum / float64(period)
}

// ADX returns the average directional index plus the +DI/-DI components,
// Wilder smoothing approximated with simple averages over the window.
func ADX(cs []models.Candle, period int) (adx, plusDI, minusDI float64) {
	if period <= 0 || len(cs) < 2*period+1 {
		return 0, 0, 0
	}
	var trSum, plusSum, minusSum float64
	dxs := make([]float64, 0, period)
	for w := 0; w < period; w++ {
		trSum, plusSum, minusSum = 0, 0, 0
		end := len(cs) - period + w + 1
		for i := end - period; i < end; i++ {
			trSum += TrueRange(cs, i)
			up := cs[i].High - cs[i-1].High
			down := cs[i-1].Low - cs[i].Low
			if up > down && up > 0 {
				plusSum += up
			}
			if down > up && down > 0 {
				minusSum += down
			}
		}
		if trSum == 0 {
			dxs = append(dxs, 0)
			continue
		}
		p := 100 * plusSum / trSum
		m := 100 * minusSum / trSum
		if p+m == 0 {
			dxs = append(dxs, 0)
			continue
		}
		dxs = append(dxs, 100*math.Abs(p-m)/(p+m))
	}
	sum := 0.0
	for _, v := range dxs {
		sum += v
	}
	adx = sum / float64(len(dxs))
	if trSum > 0 {
		plusDI = 100 * plusSum / trSum
		minusDI = 100 * minusSum / trSum
	}
	return adx, plusDI, minusDI
}

// Bollinger returns the middle band and band width (upper-lower)/middle for
// the last period candles using 2 standard deviations.
func Bollinger(cs []models.Candle, period int) (mid, width float64) {
	if period <= 0 || len(cs) < period {
		return 0, 0
	}
	closes := Closes(cs)
	mid = SMA(closes, period)
	var varSum float64
	for _, v := range closes[len(closes)-period:] {
		d := v - mid
		varSum += d * d
	}
	sd := math.Sqrt(varSum / float64(period))
	if mid == 0 {
		return mid, 0
	}
	width = 4 * sd / mid
	return mid, width
}

// HighLow returns the highest high and lowest low over the last period.
func HighLow(cs []models.Candle, period int) (hi, lo float64) {
	if len(cs) == 0 {
		return 0, 0
	}
	start := 0
	if period > 0 && period < len(cs) {
		start = len(cs) - period
	}
	hi, lo = cs[start].High, cs[start].Low
	for _, c := range cs[start:] {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	return hi, lo
}

// AvgVolume returns the mean volume over the last period candles.
func AvgVolume(cs []models.Candle, period int) float64 {
	if period <= 0 || len(cs) < period {
		return 0
	}
	sum := 0.0
	for _, c := range cs[len(cs)-period:] {
		sum += c.Volume
	}
	return sum / float64(period)
}

// VWAP returns the volume-weighted average price over the last period.
func VWAP(cs []models.Candle, period int) float64 {
	if period <= 0 || len(cs) < period {
		return 0
	}
	var pv, vol float64
	for _, c := range cs[len(cs)-period:] {
		tp := (c.High + c.Low + c.Close) / 3.0
		pv += tp * c.Volume
		vol += c.Volume
	}
	if vol == 0 {
		return 0
	}
	return pv / vol
}

// OBVSlope returns the sign of the on-balance-volume change over the last
// period candles: >0 accumulation, <0 distribution.
func OBVSlope(cs []models.Candle, period int) float64 {
	if period <= 0 || len(cs) <= period {
		return 0
	}
	obv := 0.0
	for i := len(cs) - period; i < len(cs); i++ {
		switch {
		case cs[i].Close > cs[i-1].Close:
			obv += cs[i].Volume
		case cs[i].Close < cs[i-1].Close:
			obv -= cs[i].Volume
		}
	}
	return obv
}

// ROC returns the rate of change (percent) over the last period candles.
func ROC(cs []models.Candle, period int) float64 {
	if period <= 0 || len(cs) <= period {
		return 0
	}
	prev := cs[len(cs)-1-period].Close
	if prev == 0 {
		return 0
	}
	return (cs[len(cs)-1].Close - prev) / prev * 100
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
