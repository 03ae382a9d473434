package weights

import (
	"context"
	"sync"

	"Conflux/internal/domain/models"
	domrepo "Conflux/internal/domain/repository"
	domsvc "Conflux/internal/domain/service"
	"Conflux/pkg/logger"
)

// Config holds the learning-rule tunables.
type Config struct {
	// Minimum outcomes in a scope before its weight starts adjusting.
	// Instrument, regime and instrument+regime scopes require 2x/3x/4x.
	MinSample int
	// Step scale for every adjustment.
	LearningRate float64
	// Raw step applied on a successful outcome.
	SuccessBonus float64
	// Raw step applied on a failed outcome.
	FailurePenalty float64
	// Fraction of the deviation from 1.0 pulled back after each adjustment.
	Decay float64
	// Persist the table after this many recorded outcomes.
	FlushEvery int
}

func DefaultConfig() Config {
	return Config{
		MinSample:      5,
		LearningRate:   0.5,
		SuccessBonus:   0.1,
		FailurePenalty: 0.1,
		Decay:          0.05,
		FlushEvery:     10,
	}
}

// Store owns the scoped weight table. All reads and writes go through the
// store's lock; persistence flushes serialize a deep copy of the latest
// in-memory state so concurrent updates never produce a stale snapshot.
type Store struct {
	cfg  Config
	repo domrepo.WeightTableRepository
	log  *logger.Logger

	mu     sync.RWMutex
	table  *models.WeightTable
	dirty  int
	loaded bool
}

func NewStore(cfg Config, repo domrepo.WeightTableRepository, log *logger.Logger) *Store {
	if cfg.MinSample <= 0 {
		cfg = DefaultConfig()
	}
	return &Store{cfg: cfg, repo: repo, log: log, table: models.NewWeightTable()}
}

// Load replaces the in-memory table with persisted state. Missing or
// unreadable state falls back to built-in defaults; reads never fail.
func (s *Store) Load(ctx context.Context) {
	if s.repo == nil {
		return
	}
	table, err := s.repo.Load(ctx)
	if err != nil {
		s.log.Warn("weight table load failed, using defaults", logger.Error(err))
		return
	}
	if table == nil {
		return
	}
	if table.Records == nil {
		table.Records = make(map[string]*models.WeightRecord)
	}
	if table.Setups == nil {
		table.Setups = make(map[string]*models.SetupStats)
	}
	s.mu.Lock()
	s.table = table
	s.loaded = true
	s.mu.Unlock()
	s.log.Info("weight table loaded", logger.Int("records", len(table.Records)))
}

// GetWeights merges, in increasing precedence, the built-in default, the
// global learned weight, then instrument/regime/instrument+regime overrides.
// A scoped override only applies once its sample count crosses the scope's
// minimum-sample threshold, preventing premature specialization.
func (s *Store) GetWeights(symbol string, regime models.RegimeType, names []string) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(names))
	for _, name := range names {
		w := models.WeightDefault
		if r := s.table.Records[models.ScopeKey(name, "", "")]; r != nil {
			w = r.Weight
		}
		if r := s.table.Records[models.ScopeKey(name, symbol, "")]; r != nil && r.TotalUses >= 2*s.cfg.MinSample {
			w = r.Weight
		}
		if r := s.table.Records[models.ScopeKey(name, "", regime)]; r != nil && r.TotalUses >= 3*s.cfg.MinSample {
			w = r.Weight
		}
		if r := s.table.Records[models.ScopeKey(name, symbol, regime)]; r != nil && r.TotalUses >= 4*s.cfg.MinSample {
			w = r.Weight
		}
		out[name] = w
	}
	return out
}

// Record returns a copy of the record for a scope, if present.
func (s *Store) Record(filter, symbol string, regime models.RegimeType) (models.WeightRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.table.Records[models.ScopeKey(filter, symbol, regime)]
	if r == nil {
		return models.WeightRecord{}, false
	}
	return *r, true
}

// RecordOutcome is the single mutation entry point. For every filter that
// voted passed in the originating signal it updates the stats of all four
// scopes and, once a scope has enough samples, nudges the scoped weight:
// reinforcement step, decay toward 1.0, clamp to [0.5, 2.0].
func (s *Store) RecordOutcome(signal *models.Signal, outcome models.TradeOutcome) {
	scopesFor := func(name string) []string {
		return []string{
			models.ScopeKey(name, "", ""),
			models.ScopeKey(name, signal.Symbol, ""),
			models.ScopeKey(name, "", signal.Regime.Type),
			models.ScopeKey(name, signal.Symbol, signal.Regime.Type),
		}
	}

	s.mu.Lock()
	for _, v := range signal.Filters {
		if !v.Passed {
			continue
		}
		for _, key := range scopesFor(v.Name) {
			s.applyLocked(key, outcome.Success)
		}
	}
	s.dirty++
	flush := s.cfg.FlushEvery > 0 && s.dirty >= s.cfg.FlushEvery
	var snapshot *models.WeightTable
	if flush {
		snapshot = s.table.Clone()
		s.dirty = 0
	}
	s.mu.Unlock()

	if snapshot != nil {
		s.persist(snapshot)
	}
}

// RecordSetup folds a resolved setup aggregate into the durable table so the
// weight document round-trips setup stats alongside weights.
func (s *Store) RecordSetup(stats models.SetupStats) {
	s.mu.Lock()
	cp := stats
	s.table.Setups[stats.Tag] = &cp
	s.mu.Unlock()
}

func (s *Store) applyLocked(key string, success bool) {
	r := s.table.Records[key]
	if r == nil {
		r = &models.WeightRecord{Weight: models.WeightDefault}
		s.table.Records[key] = r
	}
	r.TotalUses++
	if success {
		r.SuccessCount++
	} else {
		r.FailureCount++
	}
	r.SuccessRate = float64(r.SuccessCount) / float64(r.TotalUses)

	if r.TotalUses < s.cfg.MinSample {
		return
	}
	if success {
		r.Weight += s.cfg.SuccessBonus * s.cfg.LearningRate
	} else {
		r.Weight -= s.cfg.FailurePenalty * s.cfg.LearningRate
	}
	// Decay pulls the weight back toward neutral in proportion to its
	// deviation, so sparse hot streaks cannot run away.
	r.Weight -= s.cfg.Decay * (r.Weight - models.WeightDefault)
	if r.Weight < models.WeightMin {
		r.Weight = models.WeightMin
	}
	if r.Weight > models.WeightMax {
		r.Weight = models.WeightMax
	}
}

// Flush persists the current table immediately. Called at shutdown.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	snapshot := s.table.Clone()
	s.dirty = 0
	s.mu.Unlock()

	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.log.Error("weight table flush failed", logger.Error(err))
		return err
	}
	return nil
}

func (s *Store) persist(snapshot *models.WeightTable) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(context.Background(), snapshot); err != nil {
		// Persistence faults never block signal generation; the in-memory
		// table remains authoritative and the next flush retries.
		s.log.Warn("weight table save failed, will retry on next flush", logger.Error(err))
	}
}

var _ domsvc.WeightProvider = (*Store)(nil)
