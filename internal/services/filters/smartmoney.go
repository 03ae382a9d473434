package filters

import (
	"fmt"

	"Conflux/internal/domain/models"
)

// smcOrderBlock looks for the last opposing candle before a strong impulse
// and votes when price has returned into that block.
func smcOrderBlock(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 20 {
			return nil
		}
		last := cs[len(cs)-1]
		for i := len(cs) - 4; i >= len(cs)-15 && i > 0; i-- {
			impulse := cs[i+1].Close - cs[i+1].Open
			body := cs[i].Close - cs[i].Open
			if impulse > 0 && body < 0 && impulse > -body*2 {
				// bullish order block: last red candle before an up impulse
				if last.Low <= cs[i].High && last.Close >= cs[i].Low {
					return vote("smc_order_block", true, models.DirectionUp, w,
						fmt.Sprintf("price revisiting bullish order block at %.4g", cs[i].Low))
				}
			}
			if impulse < 0 && body > 0 && -impulse > body*2 {
				if last.High >= cs[i].Low && last.Close <= cs[i].High {
					return vote("smc_order_block", true, models.DirectionDown, w,
						fmt.Sprintf("price revisiting bearish order block at %.4g", cs[i].High))
				}
			}
		}
		return vote("smc_order_block", false, models.DirectionNone, w, "no order block in play")
	}
}

// smcFairValueGap detects a three-candle imbalance whose gap the current
// price is trading back into.
func smcFairValueGap(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 15 {
			return nil
		}
		last := cs[len(cs)-1].Close
		for i := len(cs) - 3; i >= len(cs)-12 && i >= 2; i-- {
			// bullish FVG: candle i-2 high below candle i low
			if cs[i-2].High < cs[i].Low {
				if last >= cs[i-2].High && last <= cs[i].Low {
					return vote("smc_fair_value_gap", true, models.DirectionUp, w,
						"price filling bullish fair value gap")
				}
			}
			if cs[i-2].Low > cs[i].High {
				if last <= cs[i-2].Low && last >= cs[i].High {
					return vote("smc_fair_value_gap", true, models.DirectionDown, w,
						"price filling bearish fair value gap")
				}
			}
		}
		return vote("smc_fair_value_gap", false, models.DirectionNone, w, "no open imbalance")
	}
}

// smcLiquiditySweep detects a wick through a recent extreme that closed back
// inside the range, implying a stop hunt.
func smcLiquiditySweep(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 20 {
			return nil
		}
		last := cs[len(cs)-1]
		prior := cs[len(cs)-16 : len(cs)-1]
		lo, hi := prior[0].Low, prior[0].High
		for _, c := range prior {
			if c.Low < lo {
				lo = c.Low
			}
			if c.High > hi {
				hi = c.High
			}
		}
		if last.Low < lo && last.Close > lo {
			return vote("smc_liquidity_sweep", true, models.DirectionUp, w,
				fmt.Sprintf("sweep of lows at %.4g with reclaim", lo))
		}
		if last.High > hi && last.Close < hi {
			return vote("smc_liquidity_sweep", true, models.DirectionDown, w,
				fmt.Sprintf("sweep of highs at %.4g with rejection", hi))
		}
		return vote("smc_liquidity_sweep", false, models.DirectionNone, w, "no liquidity sweep")
	}
}
