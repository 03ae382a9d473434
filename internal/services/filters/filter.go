package filters

import (
	"Conflux/internal/domain/models"
	domsvc "Conflux/internal/domain/service"
)

// evalFunc is the evaluation body of a built-in filter. Returning nil means
// "not applicable" (insufficient data), distinct from a failed vote.
type evalFunc func(snapshot *models.MarketSnapshot, weight float64) *models.FilterVote

// builtin adapts a pure evaluation function to the Filter interface. The
// category is derived from the name prefix convention.
type builtin struct {
	name string
	eval evalFunc
}

func (b *builtin) Name() string                    { return b.name }
func (b *builtin) Category() models.FilterCategory { return CategoryOf(b.name) }

func (b *builtin) Evaluate(snapshot *models.MarketSnapshot, weight float64) *models.FilterVote {
	return b.eval(snapshot, weight)
}

// vote builds a FilterVote for a built-in filter.
func vote(name string, passed bool, dir models.Direction, weight float64, rationale string) *models.FilterVote {
	if !passed {
		dir = models.DirectionNone
	}
	return &models.FilterVote{
		Name:      name,
		Category:  CategoryOf(name),
		Passed:    passed,
		Direction: dir,
		Weight:    weight,
		Rationale: rationale,
	}
}

// Builtins constructs the shipped filter set evaluated against the given
// timeframe and registers it into a fresh registry.
func Builtins(tf string) *Registry {
	r := NewRegistry()
	for _, f := range builtinFilters(tf) {
		r.Register(f)
	}
	return r
}

func builtinFilters(tf string) []domsvc.Filter {
	return []domsvc.Filter{
		// momentum
		&builtin{"momentum_rsi_extreme", momentumRSIExtreme(tf)},
		&builtin{"momentum_macd_cross", momentumMACDCross(tf)},
		&builtin{"momentum_roc", momentumROC(tf)},
		// trend
		&builtin{"trend_ma_alignment", trendMAAlignment(tf)},
		&builtin{"trend_adx_direction", trendADXDirection(tf)},
		&builtin{"trend_higher_highs", trendHigherHighs(tf)},
		// volume
		&builtin{"volume_surge", volumeSurge(tf)},
		&builtin{"volume_obv_slope", volumeOBVSlope(tf)},
		&builtin{"volume_vwap_side", volumeVWAPSide(tf)},
		// structure
		&builtin{"structure_support_bounce", structureSupportBounce(tf)},
		&builtin{"structure_resistance_reject", structureResistanceReject(tf)},
		&builtin{"structure_range_position", structureRangePosition(tf)},
		// volatility
		&builtin{"volatility_squeeze_break", volatilitySqueezeBreak(tf)},
		&builtin{"volatility_atr_expansion", volatilityATRExpansion(tf)},
		&builtin{"volatility_band_ride", volatilityBandRide(tf)},
		// smart money
		&builtin{"smc_order_block", smcOrderBlock(tf)},
		&builtin{"smc_fair_value_gap", smcFairValueGap(tf)},
		&builtin{"smc_liquidity_sweep", smcLiquiditySweep(tf)},
		// pattern
		&builtin{"pattern_engulfing", patternEngulfing(tf)},
		&builtin{"pattern_pin_bar", patternPinBar(tf)},
		&builtin{"pattern_inside_breakout", patternInsideBreakout(tf)},
	}
}
