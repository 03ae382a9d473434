package outcomes

import (
	"context"
	"fmt"
	"testing"

	"Conflux/internal/domain/models"
	"Conflux/pkg/logger"
)

func testSignal(id, tag string) *models.Signal {
	return &models.Signal{ID: id, Symbol: "BTCUSDT", SetupTag: tag, Execute: true}
}

func TestResolveUpdatesSetupStats(t *testing.T) {
	l := NewLedger(10, nil, logger.Nop())
	ctx := context.Background()

	l.Append(ctx, testSignal("s1", "TRENDING_TREND_SMC"))
	l.Append(ctx, testSignal("s2", "TRENDING_TREND_SMC"))

	if _, ok := l.Resolve(ctx, models.TradeOutcome{SignalID: "s1", Success: true, PnL: 10}); !ok {
		t.Fatalf("resolve s1 failed")
	}
	if _, ok := l.Resolve(ctx, models.TradeOutcome{SignalID: "s2", Success: false, PnL: -4}); !ok {
		t.Fatalf("resolve s2 failed")
	}

	stats, ok := l.SetupStats("TRENDING_TREND_SMC")
	if !ok {
		t.Fatalf("missing setup stats")
	}
	if stats.TotalTrades != 2 || stats.WinCount != 1 || stats.LossCount != 1 {
		t.Fatalf("counts wrong: %+v", stats)
	}
	if stats.WinRate != 0.5 {
		t.Fatalf("win rate = %v, want 0.5", stats.WinRate)
	}
	if stats.TotalPnL != 6 || stats.AvgPnL != 3 {
		t.Fatalf("pnl wrong: %+v", stats)
	}
}

func TestRetentionEvictsOldest(t *testing.T) {
	l := NewLedger(3, nil, logger.Nop())
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		l.Append(ctx, testSignal(fmt.Sprintf("s%d", i), "RANGING_STRUCTURE"))
	}
	if l.Len() != 3 {
		t.Fatalf("ledger len = %d, want 3", l.Len())
	}
	if _, ok := l.Signal("s0"); ok {
		t.Fatalf("oldest entry should be evicted")
	}
	if _, ok := l.Signal("s4"); !ok {
		t.Fatalf("newest entry must be retained")
	}
}

func TestUnknownOutcomeCounted(t *testing.T) {
	l := NewLedger(10, nil, logger.Nop())
	ctx := context.Background()

	if _, ok := l.Resolve(ctx, models.TradeOutcome{SignalID: "nope"}); ok {
		t.Fatalf("unknown id should not resolve")
	}
	if l.UnknownOutcomes() != 1 {
		t.Fatalf("unknown count = %d, want 1", l.UnknownOutcomes())
	}

	stats := l.AllSetupStats()
	if len(stats) != 0 {
		t.Fatalf("unknown outcome must not create stats: %+v", stats)
	}
}

func TestAllSetupStatsSorted(t *testing.T) {
	l := NewLedger(10, nil, logger.Nop())
	ctx := context.Background()
	l.Append(ctx, testSignal("s1", "VOLATILE_VOLUME"))
	l.Append(ctx, testSignal("s2", "RANGING_STRUCTURE"))
	l.Resolve(ctx, models.TradeOutcome{SignalID: "s1", Success: true})
	l.Resolve(ctx, models.TradeOutcome{SignalID: "s2", Success: true})

	stats := l.AllSetupStats()
	if len(stats) != 2 {
		t.Fatalf("stats count = %d, want 2", len(stats))
	}
	if stats[0].Tag != "RANGING_STRUCTURE" || stats[1].Tag != "VOLATILE_VOLUME" {
		t.Fatalf("stats not sorted by tag: %v, %v", stats[0].Tag, stats[1].Tag)
	}
}
