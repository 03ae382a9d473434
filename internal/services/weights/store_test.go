package weights

import (
	"context"
	"path/filepath"
	"testing"

	"Conflux/internal/domain/models"
	internalrepo "Conflux/internal/repository"
	"Conflux/pkg/logger"
)

func testStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	return NewStore(cfg, nil, logger.Nop())
}

func signalWith(symbol string, regime models.RegimeType, passed ...string) *models.Signal {
	votes := make([]models.FilterVote, 0, len(passed))
	for _, name := range passed {
		votes = append(votes, models.FilterVote{Name: name, Passed: true, Direction: models.DirectionUp})
	}
	return &models.Signal{
		ID:      "sig-1",
		Symbol:  symbol,
		Regime:  models.RegimeClassification{Type: regime},
		Filters: votes,
	}
}

func TestGetWeightsDefault(t *testing.T) {
	s := testStore(t, DefaultConfig())
	got := s.GetWeights("BTCUSDT", models.RegimeTrending, []string{"trend_ma_alignment"})
	if got["trend_ma_alignment"] != models.WeightDefault {
		t.Fatalf("untrained weight = %v, want default 1.0", got["trend_ma_alignment"])
	}
}

func TestWeightAdjustsOnlyAfterMinSample(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSample = 5
	s := testStore(t, cfg)
	sig := signalWith("BTCUSDT", models.RegimeTrending, "volume_surge")

	for i := 0; i < 4; i++ {
		s.RecordOutcome(sig, models.TradeOutcome{SignalID: "sig-1", Success: true})
	}
	r, ok := s.Record("volume_surge", "", "")
	if !ok {
		t.Fatalf("global record missing")
	}
	if r.Weight != models.WeightDefault {
		t.Fatalf("weight moved before min sample: %v", r.Weight)
	}
	if r.TotalUses != 4 || r.SuccessCount != 4 {
		t.Fatalf("stats must accrue below min sample: %+v", r)
	}

	s.RecordOutcome(sig, models.TradeOutcome{SignalID: "sig-1", Success: true})
	r, _ = s.Record("volume_surge", "", "")
	if r.Weight <= models.WeightDefault {
		t.Fatalf("weight should rise at min sample, got %v", r.Weight)
	}
}

func TestWeightClampBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSample = 1
	s := testStore(t, cfg)
	sig := signalWith("BTCUSDT", models.RegimeTrending, "momentum_roc")

	for i := 0; i < 200; i++ {
		s.RecordOutcome(sig, models.TradeOutcome{SignalID: "sig-1", Success: true})
	}
	r, _ := s.Record("momentum_roc", "", "")
	if r.Weight > models.WeightMax {
		t.Fatalf("weight above ceiling: %v", r.Weight)
	}

	for i := 0; i < 400; i++ {
		s.RecordOutcome(sig, models.TradeOutcome{SignalID: "sig-1", Success: false})
	}
	r, _ = s.Record("momentum_roc", "", "")
	if r.Weight < models.WeightMin {
		t.Fatalf("weight below floor: %v", r.Weight)
	}
}

func TestScopedOverridesRequireSamples(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSample = 2
	s := testStore(t, cfg)
	sig := signalWith("BTCUSDT", models.RegimeTrending, "smc_order_block")

	// 3 outcomes: global scope adjusts (>= 2) but the instrument scope needs
	// 2x, the regime scope 3x and the combined scope 4x the min sample.
	for i := 0; i < 3; i++ {
		s.RecordOutcome(sig, models.TradeOutcome{SignalID: "sig-1", Success: true})
	}

	global := s.GetWeights("", "", []string{"smc_order_block"})["smc_order_block"]
	scoped := s.GetWeights("BTCUSDT", models.RegimeTrending, []string{"smc_order_block"})["smc_order_block"]
	if global == models.WeightDefault {
		t.Fatalf("global weight should have adjusted")
	}
	if scoped != global {
		t.Fatalf("scoped read should fall back to global below sample gate: %v vs %v", scoped, global)
	}

	// Push the combined scope past 4x min sample; it then takes precedence.
	for i := 0; i < 6; i++ {
		s.RecordOutcome(sig, models.TradeOutcome{SignalID: "sig-1", Success: true})
	}
	combined, ok := s.Record("smc_order_block", "BTCUSDT", models.RegimeTrending)
	if !ok || combined.TotalUses != 9 {
		t.Fatalf("combined scope stats missing: %+v", combined)
	}
	scoped = s.GetWeights("BTCUSDT", models.RegimeTrending, []string{"smc_order_block"})["smc_order_block"]
	if scoped != combined.Weight {
		t.Fatalf("combined scope should win once sampled: %v vs %v", scoped, combined.Weight)
	}
}

func TestSuccessRateTracking(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSample = 100
	s := testStore(t, cfg)
	sig := signalWith("ETHUSDT", models.RegimeRanging, "structure_range_position")

	for i := 0; i < 50; i++ {
		s.RecordOutcome(sig, models.TradeOutcome{SignalID: "sig-1", Success: i < 40})
	}
	r, _ := s.Record("structure_range_position", "", "")
	if r.TotalUses != 50 || r.SuccessCount != 40 || r.FailureCount != 10 {
		t.Fatalf("counts wrong: %+v", r)
	}
	if r.SuccessRate != 0.8 {
		t.Fatalf("success rate = %v, want 0.8", r.SuccessRate)
	}
}

func TestFlushRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	repo := internalrepo.NewFileWeightStore(path)

	cfg := DefaultConfig()
	cfg.MinSample = 1
	s := NewStore(cfg, repo, logger.Nop())
	sig := signalWith("BTCUSDT", models.RegimeTrending, "trend_higher_highs")
	for i := 0; i < 5; i++ {
		s.RecordOutcome(sig, models.TradeOutcome{SignalID: "sig-1", Success: true})
	}
	s.RecordSetup(models.SetupStats{Tag: "TRENDING_TREND", TotalTrades: 5, WinCount: 5, WinRate: 1})

	ctx := context.Background()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reloaded := NewStore(cfg, repo, logger.Nop())
	reloaded.Load(ctx)
	r, ok := reloaded.Record("trend_higher_highs", "", "")
	if !ok {
		t.Fatalf("record lost across flush/load")
	}
	if r.TotalUses != 5 || r.Weight <= models.WeightDefault {
		t.Fatalf("reloaded record mismatch: %+v", r)
	}

	before, _ := s.Record("trend_higher_highs", "BTCUSDT", models.RegimeTrending)
	after, _ := reloaded.Record("trend_higher_highs", "BTCUSDT", models.RegimeTrending)
	if before != after {
		t.Fatalf("scoped record did not round-trip: %+v vs %+v", before, after)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	repo := internalrepo.NewFileWeightStore(filepath.Join(t.TempDir(), "missing.json"))
	s := NewStore(DefaultConfig(), repo, logger.Nop())
	s.Load(context.Background())

	got := s.GetWeights("BTCUSDT", models.RegimeTrending, []string{"volume_surge"})
	if got["volume_surge"] != models.WeightDefault {
		t.Fatalf("missing state must fall back to defaults, got %v", got["volume_surge"])
	}
}
