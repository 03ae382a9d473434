package filters

import (
	"fmt"

	"Conflux/internal/domain/models"
	"Conflux/internal/services/indicators"
)

func structureSupportBounce(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 30 {
			return nil
		}
		_, lo := indicators.HighLow(cs[:len(cs)-1], 29)
		last := cs[len(cs)-1]
		if lo <= 0 {
			return nil
		}
		near := (last.Low-lo)/lo < 0.005
		if near && last.Close > last.Open {
			return vote("structure_support_bounce", true, models.DirectionUp, w,
				fmt.Sprintf("bullish rejection off support %.4g", lo))
		}
		return vote("structure_support_bounce", false, models.DirectionNone, w, "no support interaction")
	}
}

func structureResistanceReject(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 30 {
			return nil
		}
		hi, _ := indicators.HighLow(cs[:len(cs)-1], 29)
		last := cs[len(cs)-1]
		if hi <= 0 {
			return nil
		}
		near := (hi-last.High)/hi < 0.005
		if near && last.Close < last.Open {
			return vote("structure_resistance_reject", true, models.DirectionDown, w,
				fmt.Sprintf("bearish rejection off resistance %.4g", hi))
		}
		return vote("structure_resistance_reject", false, models.DirectionNone, w, "no resistance interaction")
	}
}

func structureRangePosition(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 20 {
			return nil
		}
		hi, lo := indicators.HighLow(cs, 20)
		if hi <= lo {
			return nil
		}
		pos := (cs[len(cs)-1].Close - lo) / (hi - lo)
		if pos < 0.25 {
			return vote("structure_range_position", true, models.DirectionUp, w,
				fmt.Sprintf("close in bottom quartile of range (%.0f%%)", pos*100))
		}
		if pos > 0.75 {
			return vote("structure_range_position", true, models.DirectionDown, w,
				fmt.Sprintf("close in top quartile of range (%.0f%%)", pos*100))
		}
		return vote("structure_range_position", false, models.DirectionNone, w, "mid-range close")
	}
}
