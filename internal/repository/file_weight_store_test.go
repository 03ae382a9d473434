package repository

import (
	"context"
	"path/filepath"
	"testing"

	"Conflux/internal/domain/models"
)

func TestFileWeightStoreMissing(t *testing.T) {
	s := NewFileWeightStore(filepath.Join(t.TempDir(), "weights.json"))
	table, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if table != nil {
		t.Fatalf("missing file should yield nil table")
	}
}

func TestFileWeightStoreRoundTrip(t *testing.T) {
	s := NewFileWeightStore(filepath.Join(t.TempDir(), "nested", "weights.json"))
	ctx := context.Background()

	table := models.NewWeightTable()
	table.Records[models.ScopeKey("volume_surge", "BTCUSDT", models.RegimeTrending)] = &models.WeightRecord{
		Weight: 1.4, TotalUses: 20, SuccessCount: 15, FailureCount: 5, SuccessRate: 0.75,
	}
	table.Setups["TRENDING_VOLUME"] = &models.SetupStats{Tag: "TRENDING_VOLUME", TotalTrades: 20}

	if err := s.Save(ctx, table); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r := got.Records[models.ScopeKey("volume_surge", "BTCUSDT", models.RegimeTrending)]
	if r == nil || *r != *table.Records[models.ScopeKey("volume_surge", "BTCUSDT", models.RegimeTrending)] {
		t.Fatalf("record mismatch: %+v", r)
	}
	if got.Setups["TRENDING_VOLUME"] == nil || got.Setups["TRENDING_VOLUME"].TotalTrades != 20 {
		t.Fatalf("setups mismatch")
	}
	if got.SavedAt.IsZero() {
		t.Fatalf("saved_at must be stamped")
	}
}
