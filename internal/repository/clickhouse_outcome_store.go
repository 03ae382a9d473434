package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"Conflux/internal/domain/models"
	domrepo "Conflux/internal/domain/repository"
	pkgch "Conflux/pkg/clickhouse"
)

// ClickHouseOutcomeStore mirrors the append-only signal/outcome ledger to
// ClickHouse for offline analysis. The in-memory ledger stays authoritative;
// insert failures surface to the caller to log, never to block.
type ClickHouseOutcomeStore struct {
	client   *pkgch.Client
	database string
}

func NewClickHouseOutcomeStore(client *pkgch.Client, database string) *ClickHouseOutcomeStore {
	return &ClickHouseOutcomeStore{client: client, database: database}
}

func (s *ClickHouseOutcomeStore) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.signals (
			id String, ts DateTime, symbol String, direction String,
			confidence Float64, regime String, setup_tag String,
			passed UInt16, contradictions UInt16, execute UInt8,
			reasoning String, filters String
		) ENGINE=MergeTree ORDER BY (symbol, ts)`, s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.outcomes (
			signal_id String, success UInt8, pnl Float64,
			entry_time DateTime, exit_time DateTime
		) ENGINE=MergeTree ORDER BY (signal_id)`, s.database),
	}
	return s.client.InitSchema(ctx, stmts)
}

func (s *ClickHouseOutcomeStore) AppendSignal(ctx context.Context, sig *models.Signal) error {
	votes, err := json.Marshal(sig.Filters)
	if err != nil {
		return fmt.Errorf("encode votes: %w", err)
	}
	execute := uint8(0)
	if sig.Execute {
		execute = 1
	}
	q := fmt.Sprintf(`INSERT INTO %s.signals
		(id, ts, symbol, direction, confidence, regime, setup_tag, passed, contradictions, execute, reasoning, filters)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.database)
	_, err = s.client.DB().ExecContext(ctx, q,
		sig.ID, sig.Timestamp, sig.Symbol, string(sig.Direction),
		sig.Confidence, string(sig.Regime.Type), sig.SetupTag,
		uint16(sig.PassedCount), uint16(sig.ContradictionCount), execute,
		sig.Reasoning, string(votes),
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

func (s *ClickHouseOutcomeStore) AppendOutcome(ctx context.Context, o models.TradeOutcome) error {
	success := uint8(0)
	if o.Success {
		success = 1
	}
	q := fmt.Sprintf(`INSERT INTO %s.outcomes
		(signal_id, success, pnl, entry_time, exit_time) VALUES (?, ?, ?, ?, ?)`, s.database)
	_, err := s.client.DB().ExecContext(ctx, q, o.SignalID, success, o.PnL, o.EntryTime, o.ExitTime)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

func (s *ClickHouseOutcomeStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *ClickHouseOutcomeStore) Close() error { return s.client.Close() }

var _ domrepo.OutcomeLedgerRepository = (*ClickHouseOutcomeStore)(nil)
