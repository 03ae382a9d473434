package filters

import (
	"sort"
	"strings"

	"Conflux/internal/domain/models"
	domsvc "Conflux/internal/domain/service"
)

// categoryPrefixes maps the filter-name prefix convention to a category so
// weighting logic can apply category-level multipliers without consulting
// the filter instance.
var categoryPrefixes = map[string]models.FilterCategory{
	"momentum":   models.CategoryMomentum,
	"trend":      models.CategoryTrend,
	"volume":     models.CategoryVolume,
	"structure":  models.CategoryStructure,
	"volatility": models.CategoryVolatility,
	"smc":        models.CategorySmartMoney,
	"pattern":    models.CategoryPattern,
}

// CategoryOf derives the category from a filter name prefix, defaulting to
// structure for unknown names.
func CategoryOf(name string) models.FilterCategory {
	if i := strings.IndexByte(name, '_'); i > 0 {
		if cat, ok := categoryPrefixes[name[:i]]; ok {
			return cat
		}
	}
	return models.CategoryStructure
}

// regimeCategories selects which categories are evaluated per regime. Smart
// money, pattern and volume filters are layered in regardless of regime,
// except in low-activity markets which run a conservative subset only.
var regimeCategories = map[models.RegimeType][]models.FilterCategory{
	models.RegimeTrending: {
		models.CategoryTrend, models.CategoryMomentum, models.CategorySmartMoney,
		models.CategoryPattern, models.CategoryVolume,
	},
	models.RegimeRanging: {
		models.CategoryStructure, models.CategoryMomentum, models.CategoryPattern,
		models.CategorySmartMoney, models.CategoryVolume,
	},
	models.RegimeVolatile: {
		models.CategoryVolatility, models.CategoryVolume, models.CategorySmartMoney,
		models.CategoryPattern,
	},
	models.RegimeLowActivity: {
		models.CategoryStructure, models.CategoryPattern,
	},
}

// CategoriesFor returns the category subset evaluated under a regime.
func CategoriesFor(regime models.RegimeType) []models.FilterCategory {
	if cats, ok := regimeCategories[regime]; ok {
		return cats
	}
	return regimeCategories[models.RegimeRanging]
}

// Registry is an ordered list of registered filters. Registration order is
// stable so evaluation and reasoning output are deterministic.
type Registry struct {
	filters []domsvc.Filter
	byName  map[string]domsvc.Filter
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]domsvc.Filter)}
}

// Register adds a filter. Re-registering a name replaces the previous
// instance in place, preserving order.
func (r *Registry) Register(f domsvc.Filter) {
	if prev, ok := r.byName[f.Name()]; ok {
		for i, existing := range r.filters {
			if existing == prev {
				r.filters[i] = f
				break
			}
		}
		r.byName[f.Name()] = f
		return
	}
	r.filters = append(r.filters, f)
	r.byName[f.Name()] = f
}

// All returns the registered filters in registration order.
func (r *Registry) All() []domsvc.Filter {
	return r.filters
}

// Names returns all registered filter names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.filters))
	for _, f := range r.filters {
		out = append(out, f.Name())
	}
	sort.Strings(out)
	return out
}

// ForRegime returns the filters whose category participates under the regime,
// in registration order.
func (r *Registry) ForRegime(regime models.RegimeType) []domsvc.Filter {
	allowed := map[models.FilterCategory]bool{}
	for _, cat := range CategoriesFor(regime) {
		allowed[cat] = true
	}
	out := make([]domsvc.Filter, 0, len(r.filters))
	for _, f := range r.filters {
		if allowed[f.Category()] {
			out = append(out, f)
		}
	}
	return out
}
