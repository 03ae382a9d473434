package filters

import (
	"sort"
	"testing"

	"Conflux/internal/domain/models"
	domsvc "Conflux/internal/domain/service"
)

func TestCategoryOf(t *testing.T) {
	cases := map[string]models.FilterCategory{
		"momentum_rsi_extreme": models.CategoryMomentum,
		"trend_ma_alignment":   models.CategoryTrend,
		"smc_order_block":      models.CategorySmartMoney,
		"volatility_band_ride": models.CategoryVolatility,
		"unknown_thing":        models.CategoryStructure,
		"noprefix":             models.CategoryStructure,
	}
	for name, want := range cases {
		if got := CategoryOf(name); got != want {
			t.Fatalf("CategoryOf(%s) = %s, want %s", name, got, want)
		}
	}
}

func TestBuiltinsComplete(t *testing.T) {
	r := Builtins("15m")
	if len(r.All()) != 21 {
		t.Fatalf("builtin count = %d, want 21", len(r.All()))
	}
	names := r.Names()
	if !sort.StringsAreSorted(names) {
		t.Fatalf("Names() must be sorted")
	}
	perCategory := map[models.FilterCategory]int{}
	for _, f := range r.All() {
		perCategory[f.Category()]++
	}
	for cat, n := range perCategory {
		if n != 3 {
			t.Fatalf("category %s has %d filters, want 3", cat, n)
		}
	}
}

func TestForRegimeSubsets(t *testing.T) {
	r := Builtins("15m")

	low := r.ForRegime(models.RegimeLowActivity)
	if len(low) != 6 {
		t.Fatalf("low-activity subset = %d filters, want 6", len(low))
	}
	for _, f := range low {
		if f.Category() != models.CategoryStructure && f.Category() != models.CategoryPattern {
			t.Fatalf("low-activity subset includes %s (%s)", f.Name(), f.Category())
		}
	}

	volatile := r.ForRegime(models.RegimeVolatile)
	for _, f := range volatile {
		if f.Category() == models.CategoryTrend {
			t.Fatalf("volatile subset must exclude trend filters, found %s", f.Name())
		}
	}

	// Unknown regimes fall back to the ranging subset.
	if got, want := len(r.ForRegime("BOGUS")), len(r.ForRegime(models.RegimeRanging)); got != want {
		t.Fatalf("unknown regime subset = %d, want ranging subset %d", got, want)
	}
}

type stubFilter struct {
	name string
}

func (s *stubFilter) Name() string                    { return s.name }
func (s *stubFilter) Category() models.FilterCategory { return CategoryOf(s.name) }
func (s *stubFilter) Evaluate(_ *models.MarketSnapshot, weight float64) *models.FilterVote {
	return vote(s.name, true, models.DirectionUp, weight, "stub")
}

var _ domsvc.Filter = (*stubFilter)(nil)

func TestRegisterReplacesInPlace(t *testing.T) {
	r := NewRegistry()
	a := &stubFilter{name: "trend_first"}
	b := &stubFilter{name: "momentum_second"}
	r.Register(a)
	r.Register(b)

	replacement := &stubFilter{name: "trend_first"}
	r.Register(replacement)

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("re-register must not grow the registry, got %d", len(all))
	}
	if all[0] != domsvc.Filter(replacement) {
		t.Fatalf("re-register must replace in place")
	}
}
