package filters

import (
	"fmt"

	"Conflux/internal/domain/models"
	"Conflux/internal/services/indicators"
)

func momentumRSIExtreme(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 15 {
			return nil
		}
		rsi := indicators.RSI(cs, 14)
		switch {
		case rsi < 30:
			return vote("momentum_rsi_extreme", true, models.DirectionUp, w,
				fmt.Sprintf("RSI oversold at %.1f", rsi))
		case rsi > 70:
			return vote("momentum_rsi_extreme", true, models.DirectionDown, w,
				fmt.Sprintf("RSI overbought at %.1f", rsi))
		default:
			return vote("momentum_rsi_extreme", false, models.DirectionNone, w,
				fmt.Sprintf("RSI neutral at %.1f", rsi))
		}
	}
}

func momentumMACDCross(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 35 {
			return nil
		}
		closes := indicators.Closes(cs)
		fast := indicators.EMA(closes, 12)
		slow := indicators.EMA(closes, 26)
		macd := fast[len(fast)-1] - slow[len(slow)-1]
		prev := fast[len(fast)-2] - slow[len(slow)-2]
		if macd > 0 && macd > prev {
			return vote("momentum_macd_cross", true, models.DirectionUp, w, "MACD positive and rising")
		}
		if macd < 0 && macd < prev {
			return vote("momentum_macd_cross", true, models.DirectionDown, w, "MACD negative and falling")
		}
		return vote("momentum_macd_cross", false, models.DirectionNone, w, "MACD flat")
	}
}

func momentumROC(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 11 {
			return nil
		}
		roc := indicators.ROC(cs, 10)
		if roc > 1.0 {
			return vote("momentum_roc", true, models.DirectionUp, w,
				fmt.Sprintf("10-bar ROC %.2f%%", roc))
		}
		if roc < -1.0 {
			return vote("momentum_roc", true, models.DirectionDown, w,
				fmt.Sprintf("10-bar ROC %.2f%%", roc))
		}
		return vote("momentum_roc", false, models.DirectionNone, w,
			fmt.Sprintf("10-bar ROC %.2f%% below threshold", roc))
	}
}
