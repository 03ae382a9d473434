package filters

import (
	"fmt"

	"Conflux/internal/domain/models"
	"Conflux/internal/services/indicators"
)

func volatilitySqueezeBreak(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 40 {
			return nil
		}
		mid, width := indicators.Bollinger(cs, 20)
		_, priorWidth := indicators.Bollinger(cs[:len(cs)-5], 20)
		if mid <= 0 || priorWidth <= 0 {
			return nil
		}
		squeezed := priorWidth < 0.7*bandWidthBaseline(cs)
		last := cs[len(cs)-1].Close
		if squeezed && width > priorWidth*1.2 {
			if last > mid {
				return vote("volatility_squeeze_break", true, models.DirectionUp, w, "squeeze release above mid band")
			}
			return vote("volatility_squeeze_break", true, models.DirectionDown, w, "squeeze release below mid band")
		}
		return vote("volatility_squeeze_break", false, models.DirectionNone, w, "no squeeze release")
	}
}

func volatilityATRExpansion(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 30 {
			return nil
		}
		atr := indicators.ATR(cs, 7)
		base := indicators.ATR(cs, 21)
		if base <= 0 {
			return nil
		}
		ratio := atr / base
		if ratio < 1.3 {
			return vote("volatility_atr_expansion", false, models.DirectionNone, w,
				fmt.Sprintf("ATR ratio %.2f", ratio))
		}
		last := cs[len(cs)-1]
		dir := models.DirectionUp
		if last.Close < last.Open {
			dir = models.DirectionDown
		}
		return vote("volatility_atr_expansion", true, dir, w,
			fmt.Sprintf("ATR expanding %.2fx with %s impulse", ratio, candleColor(last)))
	}
}

func volatilityBandRide(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 22 {
			return nil
		}
		mid, width := indicators.Bollinger(cs, 20)
		if mid <= 0 || width <= 0 {
			return nil
		}
		upper := mid * (1 + width/2)
		lower := mid * (1 - width/2)
		riding := 0
		for _, c := range cs[len(cs)-3:] {
			switch {
			case c.Close >= upper*0.995:
				riding++
			case c.Close <= lower*1.005:
				riding--
			}
		}
		if riding >= 2 {
			return vote("volatility_band_ride", true, models.DirectionUp, w, "closing on upper band 2 of 3 bars")
		}
		if riding <= -2 {
			return vote("volatility_band_ride", true, models.DirectionDown, w, "closing on lower band 2 of 3 bars")
		}
		return vote("volatility_band_ride", false, models.DirectionNone, w, "inside bands")
	}
}

// bandWidthBaseline averages the band width over a few trailing windows.
func bandWidthBaseline(cs []models.Candle) float64 {
	sum, n := 0.0, 0
	for i := 5; i <= 15; i += 5 {
		if len(cs) < 20+i {
			break
		}
		_, w := indicators.Bollinger(cs[:len(cs)-i], 20)
		sum += w
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
