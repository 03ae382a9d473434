package filters

import (
	"fmt"

	"Conflux/internal/domain/models"
	"Conflux/internal/services/indicators"
)

func volumeSurge(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 21 {
			return nil
		}
		avg := indicators.AvgVolume(cs, 20)
		last := cs[len(cs)-1]
		if avg <= 0 {
			return nil
		}
		ratio := last.Volume / avg
		if ratio < 1.5 {
			return vote("volume_surge", false, models.DirectionNone, w,
				fmt.Sprintf("volume %.1fx average", ratio))
		}
		dir := models.DirectionUp
		if last.Close < last.Open {
			dir = models.DirectionDown
		}
		return vote("volume_surge", true, dir, w,
			fmt.Sprintf("volume surge %.1fx average on %s candle", ratio, candleColor(last)))
	}
}

func volumeOBVSlope(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 15 {
			return nil
		}
		obv := indicators.OBVSlope(cs, 14)
		avg := indicators.AvgVolume(cs, 14)
		if avg <= 0 {
			return nil
		}
		// Require net flow of at least two average candles to call it a side.
		if obv > 2*avg {
			return vote("volume_obv_slope", true, models.DirectionUp, w, "OBV accumulation")
		}
		if obv < -2*avg {
			return vote("volume_obv_slope", true, models.DirectionDown, w, "OBV distribution")
		}
		return vote("volume_obv_slope", false, models.DirectionNone, w, "OBV balanced")
	}
}

func volumeVWAPSide(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 20 {
			return nil
		}
		vwap := indicators.VWAP(cs, 20)
		if vwap <= 0 {
			return nil
		}
		last := cs[len(cs)-1].Close
		dev := (last - vwap) / vwap
		if dev > 0.001 {
			return vote("volume_vwap_side", true, models.DirectionUp, w,
				fmt.Sprintf("price %.2f%% above VWAP", dev*100))
		}
		if dev < -0.001 {
			return vote("volume_vwap_side", true, models.DirectionDown, w,
				fmt.Sprintf("price %.2f%% below VWAP", dev*100))
		}
		return vote("volume_vwap_side", false, models.DirectionNone, w, "price pinned to VWAP")
	}
}

func candleColor(c models.Candle) string {
	if c.Close >= c.Open {
		return "green"
	}
	return "red"
}
