package outcomes

import (
	"context"
	"sort"
	"sync"
	"time"

	"Conflux/internal/domain/models"
	domrepo "Conflux/internal/domain/repository"
	"Conflux/pkg/logger"
)

// DefaultRetention caps the in-memory ledger size.
const DefaultRetention = 1000

type entry struct {
	signal  *models.Signal
	outcome *models.TradeOutcome
}

// Ledger is the append-only log of signals and realized outcomes: the source
// of truth for weight adaptation and setup statistics. Oldest entries are
// evicted once retention is exceeded. An optional repository mirrors appends
// to durable storage; mirror failures are logged and never block.
type Ledger struct {
	retention int
	mirror    domrepo.OutcomeLedgerRepository
	log       *logger.Logger

	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	stats   map[string]*models.SetupStats
	unknown int
}

func NewLedger(retention int, mirror domrepo.OutcomeLedgerRepository, log *logger.Logger) *Ledger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Ledger{
		retention: retention,
		mirror:    mirror,
		log:       log,
		entries:   make(map[string]*entry),
		stats:     make(map[string]*models.SetupStats),
	}
}

// Append records an emitted signal, evicting the oldest entry when the
// retention cap is reached.
func (l *Ledger) Append(ctx context.Context, s *models.Signal) {
	l.mu.Lock()
	if len(l.order) >= l.retention {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.entries, oldest)
	}
	l.entries[s.ID] = &entry{signal: s}
	l.order = append(l.order, s.ID)
	l.mu.Unlock()

	if l.mirror != nil {
		if err := l.mirror.AppendSignal(ctx, s); err != nil {
			l.log.Warn("ledger mirror append failed", logger.Error(err), logger.String("signal", s.ID))
		}
	}
}

// Resolve attaches an outcome to its signal and updates the per-tag setup
// aggregate. Unknown or expired signal ids return false and are only counted.
func (l *Ledger) Resolve(ctx context.Context, o models.TradeOutcome) (*models.Signal, bool) {
	l.mu.Lock()
	e, ok := l.entries[o.SignalID]
	if !ok {
		l.unknown++
		l.mu.Unlock()
		return nil, false
	}
	cp := o
	e.outcome = &cp
	stats := l.applyLocked(e.signal.SetupTag, o)
	l.mu.Unlock()
	_ = stats

	if l.mirror != nil {
		if err := l.mirror.AppendOutcome(ctx, o); err != nil {
			l.log.Warn("ledger mirror outcome failed", logger.Error(err), logger.String("signal", o.SignalID))
		}
	}
	return e.signal, true
}

func (l *Ledger) applyLocked(tag string, o models.TradeOutcome) *models.SetupStats {
	s := l.stats[tag]
	if s == nil {
		s = &models.SetupStats{Tag: tag}
		l.stats[tag] = s
	}
	s.TotalTrades++
	if o.Success {
		s.WinCount++
	} else {
		s.LossCount++
	}
	s.WinRate = float64(s.WinCount) / float64(s.TotalTrades)
	s.TotalPnL += o.PnL
	s.AvgPnL = s.TotalPnL / float64(s.TotalTrades)
	s.LastUpdated = time.Now()
	return s
}

// SetupStats returns a copy of the aggregate for one tag.
func (l *Ledger) SetupStats(tag string) (models.SetupStats, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.stats[tag]
	if !ok {
		return models.SetupStats{}, false
	}
	return *s, true
}

// AllSetupStats returns copies of every aggregate, sorted by tag.
func (l *Ledger) AllSetupStats() []models.SetupStats {
	l.mu.Lock()
	out := make([]models.SetupStats, 0, len(l.stats))
	for _, s := range l.stats {
		out = append(out, *s)
	}
	l.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Signal returns the ledger entry for an id, if still retained.
func (l *Ledger) Signal(id string) (*models.Signal, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		return nil, false
	}
	return e.signal, true
}

// UnknownOutcomes reports how many outcomes arrived for unknown ids.
func (l *Ledger) UnknownOutcomes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unknown
}

// Len reports the number of retained signals.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}
