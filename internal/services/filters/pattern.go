package filters

import (
	"Conflux/internal/domain/models"
)

func patternEngulfing(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 2 {
			return nil
		}
		p, c := cs[len(cs)-2], cs[len(cs)-1]
		if p.Close < p.Open && c.Close > c.Open && c.Close >= p.Open && c.Open <= p.Close {
			return vote("pattern_engulfing", true, models.DirectionUp, w, "bullish engulfing")
		}
		if p.Close > p.Open && c.Close < c.Open && c.Close <= p.Open && c.Open >= p.Close {
			return vote("pattern_engulfing", true, models.DirectionDown, w, "bearish engulfing")
		}
		return vote("pattern_engulfing", false, models.DirectionNone, w, "no engulfing")
	}
}

func patternPinBar(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 1 {
			return nil
		}
		c := cs[len(cs)-1]
		rng := c.High - c.Low
		if rng <= 0 {
			return nil
		}
		body := c.Close - c.Open
		if body < 0 {
			body = -body
		}
		upperWick := c.High - maxf(c.Open, c.Close)
		lowerWick := minf(c.Open, c.Close) - c.Low
		if body < rng/3 && lowerWick > rng*0.6 {
			return vote("pattern_pin_bar", true, models.DirectionUp, w, "bullish pin bar")
		}
		if body < rng/3 && upperWick > rng*0.6 {
			return vote("pattern_pin_bar", true, models.DirectionDown, w, "bearish pin bar")
		}
		return vote("pattern_pin_bar", false, models.DirectionNone, w, "no pin bar")
	}
}

func patternInsideBreakout(tf string) evalFunc {
	return func(s *models.MarketSnapshot, w float64) *models.FilterVote {
		cs := s.Series(tf)
		if len(cs) < 3 {
			return nil
		}
		mother, inside, c := cs[len(cs)-3], cs[len(cs)-2], cs[len(cs)-1]
		if inside.High > mother.High || inside.Low < mother.Low {
			return vote("pattern_inside_breakout", false, models.DirectionNone, w, "no inside bar")
		}
		if c.Close > mother.High {
			return vote("pattern_inside_breakout", true, models.DirectionUp, w, "inside bar breakout up")
		}
		if c.Close < mother.Low {
			return vote("pattern_inside_breakout", true, models.DirectionDown, w, "inside bar breakout down")
		}
		return vote("pattern_inside_breakout", false, models.DirectionNone, w, "inside bar unresolved")
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
