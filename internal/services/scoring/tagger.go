package scoring

import (
	"strings"

	"Conflux/internal/domain/models"
)

// canonical category order and short labels for tag assembly.
var tagOrder = []models.FilterCategory{
	models.CategoryTrend,
	models.CategoryMomentum,
	models.CategoryVolume,
	models.CategoryStructure,
	models.CategoryVolatility,
	models.CategorySmartMoney,
	models.CategoryPattern,
}

var tagLabels = map[models.FilterCategory]string{
	models.CategoryTrend:      "TREND",
	models.CategoryMomentum:   "MOMENTUM",
	models.CategoryVolume:     "VOLUME",
	models.CategoryStructure:  "STRUCTURE",
	models.CategoryVolatility: "VOLATILITY",
	models.CategorySmartMoney: "SMC",
	models.CategoryPattern:    "PATTERN",
}

// Tag derives the setup label from the regime type plus the set of passed
// filter categories, e.g. "TRENDING_TREND_MOMENTUM_SMC". Collisions across
// signals are intentional; the tag is a bucketing key for outcome stats.
func Tag(votes []models.FilterVote, regime models.RegimeType) string {
	seen := map[models.FilterCategory]bool{}
	for _, v := range votes {
		if v.Passed {
			seen[v.Category] = true
		}
	}
	parts := []string{string(regime)}
	for _, cat := range tagOrder {
		if seen[cat] {
			parts = append(parts, tagLabels[cat])
		}
	}
	if len(parts) == 1 {
		parts = append(parts, "NONE")
	}
	return strings.Join(parts, "_")
}
