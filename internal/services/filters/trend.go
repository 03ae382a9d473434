package filters

import (
	"fmt"

	"Conflux/internal/domain/models"
	"Conflux/internal/services/indicators"
)

func trendMAAlignment(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 50 {
			return nil
		}
		closes := indicators.Closes(cs)
		short := indicators.SMA(closes, 9)
		med := indicators.SMA(closes, 21)
		long := indicators.SMA(closes, 50)
		if short > med && med > long {
			return vote("trend_ma_alignment", true, models.DirectionUp, w, "MAs stacked bullish 9>21>50")
		}
		if short < med && med < long {
			return vote("trend_ma_alignment", true, models.DirectionDown, w, "MAs stacked bearish 9<21<50")
		}
		return vote("trend_ma_alignment", false, models.DirectionNone, w, "MAs mixed")
	}
}

func trendADXDirection(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 30 {
			return nil
		}
		adx, plusDI, minusDI := indicators.ADX(cs, 14)
		if adx < 25 {
			return vote("trend_adx_direction", false, models.DirectionNone, w,
				fmt.Sprintf("ADX weak at %.1f", adx))
		}
		if plusDI > minusDI {
			return vote("trend_adx_direction", true, models.DirectionUp, w,
				fmt.Sprintf("ADX %.1f with +DI dominance", adx))
		}
		return vote("trend_adx_direction", true, models.DirectionDown, w,
			fmt.Sprintf("ADX %.1f with -DI dominance", adx))
	}
}

func trendHigherHighs(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 20 {
			return nil
		}
		recent := cs[len(cs)-10:]
		older := cs[len(cs)-20 : len(cs)-10]
		rHi, rLo := indicators.HighLow(recent, 10)
		oHi, oLo := indicators.HighLow(older, 10)
		if rHi > oHi && rLo > oLo {
			return vote("trend_higher_highs", true, models.DirectionUp, w, "higher highs and higher lows")
		}
		if rHi < oHi && rLo < oLo {
			return vote("trend_higher_highs", true, models.DirectionDown, w, "lower highs and lower lows")
		}
		return vote("trend_higher_highs", false, models.DirectionNone, w, "no swing progression")
	}
}
