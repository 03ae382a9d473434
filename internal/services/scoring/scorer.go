package scoring

import (
	"Conflux/internal/domain/models"
)

// Config holds scoring tunables. The exact constants are policy, not
// contract; the binding ordering is trend-aligned > neutral > contradictory.
type Config struct {
	Base                 float64
	PassMultiplier       float64
	ContradictionPenalty float64
	RegimeBonus          float64
	MinConfidence        float64
	MaxConfidence        float64
	// Category multipliers reflect differing reliability: smart money and
	// structure highest, volatility and volume lowest.
	CategoryMultipliers map[models.FilterCategory]float64
}

func DefaultConfig() Config {
	return Config{
		Base:                 0.5,
		PassMultiplier:       0.04,
		ContradictionPenalty: 0.05,
		RegimeBonus:          0.08,
		MinConfidence:        0.3,
		MaxConfidence:        0.95,
		CategoryMultipliers: map[models.FilterCategory]float64{
			models.CategorySmartMoney: 1.3,
			models.CategoryStructure:  1.2,
			models.CategoryTrend:      1.1,
			models.CategoryMomentum:   1.0,
			models.CategoryPattern:    1.0,
			models.CategoryVolume:     0.8,
			models.CategoryVolatility: 0.8,
		},
	}
}

// regimeAffinity lists the categories canonically compatible with a regime.
var regimeAffinity = map[models.RegimeType]map[models.FilterCategory]bool{
	models.RegimeTrending: {
		models.CategoryTrend: true, models.CategoryMomentum: true, models.CategorySmartMoney: true,
	},
	models.RegimeRanging: {
		models.CategoryStructure: true, models.CategoryMomentum: true, models.CategoryPattern: true,
	},
	models.RegimeVolatile: {
		models.CategoryVolatility: true, models.CategoryVolume: true, models.CategorySmartMoney: true,
	},
	models.RegimeLowActivity: {
		models.CategoryStructure: true, models.CategoryPattern: true,
	},
}

// Score is the scorer's breakdown for one evaluation.
type Score struct {
	Direction           models.Direction
	Confidence          float64
	PassedCount         int
	Contradictions      int
	RegimeCompatibility float64
}

// Scorer turns filter votes plus regime into a direction and a bounded
// confidence. Deterministic and side-effect-free given identical inputs.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	if cfg.MaxConfidence == 0 {
		cfg = DefaultConfig()
	}
	return &Scorer{cfg: cfg}
}

// Evaluate computes the majority direction, adds weighted contributions for
// aligned passes, penalizes contradictions, applies the regime-alignment
// bonus, and discounts by regime confidence before clamping.
func (s *Scorer) Evaluate(votes []models.FilterVote, regime models.RegimeClassification) Score {
	var up, down, passed int
	for _, v := range votes {
		if !v.Passed {
			continue
		}
		passed++
		switch v.Direction {
		case models.DirectionUp:
			up++
		case models.DirectionDown:
			down++
		}
	}

	direction := models.DirectionNone
	if up > down {
		direction = models.DirectionUp
	} else if down > up {
		direction = models.DirectionDown
	}

	contradictions := up
	if down < up {
		contradictions = down
	}

	confidence := s.cfg.Base
	aligned := 0
	for _, v := range votes {
		if !v.Passed || v.Direction != direction || direction == models.DirectionNone {
			continue
		}
		confidence += s.cfg.PassMultiplier * v.Weight * s.categoryMultiplier(v.Category)
		if regimeAffinity[regime.Type][v.Category] {
			aligned++
		}
	}

	confidence -= s.cfg.ContradictionPenalty * float64(contradictions)

	compat := 0.0
	if passed > 0 {
		compat = float64(aligned) / float64(passed)
	}
	confidence += s.cfg.RegimeBonus * compat

	// Discount the whole read when the regime classification itself is weak.
	confidence *= 0.7 + 0.3*regime.Confidence

	if confidence < s.cfg.MinConfidence {
		confidence = s.cfg.MinConfidence
	}
	if confidence > s.cfg.MaxConfidence {
		confidence = s.cfg.MaxConfidence
	}

	return Score{
		Direction:           direction,
		Confidence:          confidence,
		PassedCount:         passed,
		Contradictions:      contradictions,
		RegimeCompatibility: compat,
	}
}

func (s *Scorer) categoryMultiplier(cat models.FilterCategory) float64 {
	if m, ok := s.cfg.CategoryMultipliers[cat]; ok {
		return m
	}
	return 1.0
}
