package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"Conflux/internal/domain/models"
	domsvc "Conflux/internal/domain/service"
	"Conflux/internal/services/filters"
	"Conflux/internal/services/outcomes"
	"Conflux/internal/services/scoring"
	"Conflux/internal/services/weights"
	"Conflux/pkg/logger"
)

type stubClassifier struct {
	out models.RegimeClassification
}

func (s *stubClassifier) Classify(_ *models.MarketSnapshot) models.RegimeClassification { return s.out }
func (s *stubClassifier) Reset()                                                        {}

type stubFilter struct {
	name     string
	category models.FilterCategory
	passed   bool
	dir      models.Direction
	panics   bool
}

func (f *stubFilter) Name() string                    { return f.name }
func (f *stubFilter) Category() models.FilterCategory { return f.category }
func (f *stubFilter) Evaluate(_ *models.MarketSnapshot, weight float64) *models.FilterVote {
	if f.panics {
		panic("boom")
	}
	dir := f.dir
	if !f.passed {
		dir = models.DirectionNone
	}
	return &models.FilterVote{
		Name: f.name, Category: f.category, Passed: f.passed,
		Direction: dir, Weight: weight, Rationale: f.name + " fired",
	}
}

var _ domsvc.Filter = (*stubFilter)(nil)

type countingMetrics struct {
	mu       sync.Mutex
	signals  map[string]int
	outcomes map[bool]int
	unknown  int
	errors   map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		signals:  map[string]int{},
		outcomes: map[bool]int{},
		errors:   map[string]int{},
	}
}

func (m *countingMetrics) RecordSignal(result string, _ models.RegimeType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals[result]++
}

func (m *countingMetrics) RecordOutcome(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[success]++
}

func (m *countingMetrics) RecordUnknownOutcome() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unknown++
}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *countingMetrics) RecordLatency(string, float64) {}
func (m *countingMetrics) RecordWeight(string, float64)  {}

func upFilters() []*stubFilter {
	return []*stubFilter{
		{name: "trend_stub", category: models.CategoryTrend, passed: true, dir: models.DirectionUp},
		{name: "momentum_stub", category: models.CategoryMomentum, passed: true, dir: models.DirectionUp},
		{name: "smc_stub", category: models.CategorySmartMoney, passed: true, dir: models.DirectionUp},
		{name: "pattern_stub", category: models.CategoryPattern, passed: true, dir: models.DirectionUp},
		{name: "volume_stub", category: models.CategoryVolume, passed: true, dir: models.DirectionUp},
	}
}

func testEngine(t *testing.T, regime models.RegimeClassification, fs []*stubFilter) (*SignalEngine, *countingMetrics) {
	t.Helper()
	registry := filters.NewRegistry()
	for _, f := range fs {
		registry.Register(f)
	}
	store := weights.NewStore(weights.DefaultConfig(), nil, logger.Nop())
	ledger := outcomes.NewLedger(100, nil, logger.Nop())
	m := newCountingMetrics()
	engine := NewSignalEngine(
		&stubClassifier{out: regime},
		registry,
		store,
		scoring.NewScorer(scoring.DefaultConfig()),
		ledger,
		nil,
		m,
		logger.Nop(),
		DefaultGateConfig(),
	)
	return engine, m
}

func testSnapshot() *models.MarketSnapshot {
	return &models.MarketSnapshot{
		Symbol: "BTCUSDT",
		Timeframes: map[string][]models.Candle{
			"15m": {{Timestamp: time.Now(), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}},
		},
	}
}

func strongTrending() models.RegimeClassification {
	return models.RegimeClassification{
		Type: models.RegimeTrending, Confidence: 0.9,
		RawType: models.RegimeTrending, RawConfidence: 0.9,
	}
}

func TestGenerateSignalEmits(t *testing.T) {
	engine, m := testEngine(t, strongTrending(), upFilters())
	sig := engine.GenerateSignal(context.Background(), testSnapshot())

	if !sig.Execute {
		t.Fatalf("expected executed signal, got rejection: %s", sig.Reasoning)
	}
	if sig.Direction != models.DirectionUp {
		t.Fatalf("direction = %s, want UP", sig.Direction)
	}
	if sig.Confidence < 0.65 || sig.Confidence > 0.95 {
		t.Fatalf("confidence out of bounds: %v", sig.Confidence)
	}
	if sig.PassedCount != 5 || sig.ContradictionCount != 0 {
		t.Fatalf("counts wrong: %d passed, %d contradictions", sig.PassedCount, sig.ContradictionCount)
	}
	if !strings.HasPrefix(sig.SetupTag, "TRENDING_") {
		t.Fatalf("setup tag = %s", sig.SetupTag)
	}
	if sig.Reasoning == "" {
		t.Fatalf("executed signal must carry reasoning")
	}
	if m.signals["emitted"] != 1 {
		t.Fatalf("emitted metric = %d, want 1", m.signals["emitted"])
	}
}

func TestGenerateSignalRejectsLowActivity(t *testing.T) {
	regime := models.RegimeClassification{Type: models.RegimeLowActivity, Confidence: 0.95}
	engine, _ := testEngine(t, regime, upFilters())
	sig := engine.GenerateSignal(context.Background(), testSnapshot())
	if sig.Execute {
		t.Fatalf("low-activity regime must always reject")
	}
	if sig.Confidence != 0 || sig.Direction != models.DirectionNone {
		t.Fatalf("rejected signal must be zeroed: conf=%v dir=%s", sig.Confidence, sig.Direction)
	}
}

func TestGenerateSignalRejectsWeakVolatile(t *testing.T) {
	regime := models.RegimeClassification{Type: models.RegimeVolatile, Confidence: 0.6}
	fs := []*stubFilter{
		{name: "volatility_stub", category: models.CategoryVolatility, passed: true, dir: models.DirectionUp},
		{name: "volume_stub", category: models.CategoryVolume, passed: true, dir: models.DirectionUp},
		{name: "smc_stub", category: models.CategorySmartMoney, passed: true, dir: models.DirectionUp},
		{name: "pattern_stub", category: models.CategoryPattern, passed: true, dir: models.DirectionUp},
	}
	engine, _ := testEngine(t, regime, fs)
	sig := engine.GenerateSignal(context.Background(), testSnapshot())
	if sig.Execute {
		t.Fatalf("weakly classified volatile regime must reject")
	}
}

func TestGenerateSignalRejectsTooFewFilters(t *testing.T) {
	engine, _ := testEngine(t, strongTrending(), upFilters()[:3])
	sig := engine.GenerateSignal(context.Background(), testSnapshot())
	if sig.Execute {
		t.Fatalf("3 passed filters must not clear a minimum of 4")
	}
	if !strings.Contains(sig.Reasoning, "filters passed") {
		t.Fatalf("reasoning should name the failed rule: %s", sig.Reasoning)
	}
}

func TestGenerateSignalRejectsContradictions(t *testing.T) {
	fs := upFilters()
	fs = append(fs,
		&stubFilter{name: "momentum_contra", category: models.CategoryMomentum, passed: true, dir: models.DirectionDown},
		&stubFilter{name: "pattern_contra", category: models.CategoryPattern, passed: true, dir: models.DirectionDown},
	)
	engine, _ := testEngine(t, strongTrending(), fs)
	sig := engine.GenerateSignal(context.Background(), testSnapshot())
	if sig.Execute {
		t.Fatalf("2 contradicting votes must reject")
	}
	if sig.ContradictionCount != 2 {
		t.Fatalf("contradictions = %d, want 2", sig.ContradictionCount)
	}
}

func TestGenerateSignalNilSnapshot(t *testing.T) {
	engine, m := testEngine(t, strongTrending(), upFilters())
	sig := engine.GenerateSignal(context.Background(), nil)
	if sig == nil {
		t.Fatalf("must degrade, never return nil")
	}
	if sig.Execute || sig.SetupTag != "ERROR" {
		t.Fatalf("malformed input should produce ERROR signal: %+v", sig)
	}
	if m.signals["rejected"] != 1 {
		t.Fatalf("rejected metric = %d, want 1", m.signals["rejected"])
	}
}

func TestGenerateSignalSurvivesFilterPanic(t *testing.T) {
	fs := upFilters()
	fs = append(fs, &stubFilter{name: "trend_bad", category: models.CategoryTrend, panics: true})
	engine, m := testEngine(t, strongTrending(), fs)

	sig := engine.GenerateSignal(context.Background(), testSnapshot())
	if !sig.Execute {
		t.Fatalf("one faulting filter must not sink the evaluation: %s", sig.Reasoning)
	}
	if len(sig.Filters) != 5 {
		t.Fatalf("faulting filter should be skipped, got %d votes", len(sig.Filters))
	}
	if m.errors["filter_fault"] != 1 {
		t.Fatalf("filter fault not recorded")
	}
}

func TestUpdateSignalResultFeedsWeights(t *testing.T) {
	engine, m := testEngine(t, strongTrending(), upFilters())
	sig := engine.GenerateSignal(context.Background(), testSnapshot())
	if !sig.Execute {
		t.Fatalf("setup: signal rejected: %s", sig.Reasoning)
	}

	engine.UpdateSignalResult(context.Background(), models.TradeOutcome{
		SignalID: sig.ID, Success: true, PnL: 12,
	})

	if m.outcomes[true] != 1 {
		t.Fatalf("outcome metric missing")
	}
	stats := engine.SetupStats()
	if len(stats) != 1 || stats[0].TotalTrades != 1 || stats[0].WinCount != 1 {
		t.Fatalf("setup stats wrong: %+v", stats)
	}
	r, ok := engine.weights.Record("trend_stub", "", "")
	if !ok || r.TotalUses != 1 || r.SuccessCount != 1 {
		t.Fatalf("weight stats not updated: %+v", r)
	}
}

func TestUpdateSignalResultUnknownID(t *testing.T) {
	engine, m := testEngine(t, strongTrending(), upFilters())
	engine.UpdateSignalResult(context.Background(), models.TradeOutcome{SignalID: "ghost"})
	if m.unknown != 1 {
		t.Fatalf("unknown outcome not counted")
	}
	if m.outcomes[true]+m.outcomes[false] != 0 {
		t.Fatalf("unknown outcome must not count as win/loss")
	}
}

func TestEffectiveWeightsDefaults(t *testing.T) {
	engine, _ := testEngine(t, strongTrending(), upFilters())
	got := engine.EffectiveWeights("BTCUSDT", models.RegimeTrending)
	if len(got) != 5 {
		t.Fatalf("weights for %d filters, want 5", len(got))
	}
	for name, w := range got {
		if w != models.WeightDefault {
			t.Fatalf("untrained weight %s = %v", name, w)
		}
	}
}
