// Package persistence stores the append-only audit trail in Postgres:
// execution log entries, optimization events, and config snapshots.
// Rows are never updated or deleted.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/pipeline"
	"github.com/MohammedBenaboud/Alphaseeker/src/application/tune"
)

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id           TEXT PRIMARY KEY,
	ts           TIMESTAMPTZ NOT NULL,
	symbol       TEXT NOT NULL,
	kind         TEXT NOT NULL,
	size_usd     DOUBLE PRECISION NOT NULL,
	reason       TEXT NOT NULL,
	risk_note    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS executions_ts_idx ON executions (ts);

CREATE TABLE IF NOT EXISTS optimization_events (
	id            TEXT PRIMARY KEY,
	ts            TIMESTAMPTZ NOT NULL,
	target_module TEXT NOT NULL,
	parameter     TEXT NOT NULL,
	old_value     DOUBLE PRECISION NOT NULL,
	new_value     DOUBLE PRECISION NOT NULL,
	reason        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS config_snapshots (
	id      BIGSERIAL PRIMARY KEY,
	ts      TIMESTAMPTZ NOT NULL,
	config  JSONB NOT NULL
);
`

// Ledger is the Postgres-backed audit store. A nil *Ledger is a valid
// no-op sink so callers need no branching when persistence is off.
type Ledger struct {
	db *sqlx.DB
}

// Open connects to Postgres and ensures the schema exists. An empty
// DSN returns a nil ledger, which disables persistence.
func Open(ctx context.Context, dsn string) (*Ledger, error) {
	if dsn == "" {
		return nil, nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	log.Info().Msg("Execution ledger connected")
	return &Ledger{db: db}, nil
}

// RecordExecutions appends a batch of execution log entries.
func (l *Ledger) RecordExecutions(ctx context.Context, entries []pipeline.ExecutionLogEntry) error {
	if l == nil || len(entries) == 0 {
		return nil
	}

	const q = `INSERT INTO executions (id, ts, symbol, kind, size_usd, reason, risk_note)
		VALUES (:id, :ts, :symbol, :kind, :size_usd, :reason, :risk_note)
		ON CONFLICT (id) DO NOTHING`

	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]interface{}{
			"id":        e.ID,
			"ts":        e.Timestamp,
			"symbol":    e.Symbol,
			"kind":      string(e.Kind),
			"size_usd":  e.SizeUSD,
			"reason":    e.Reason,
			"risk_note": e.RiskCheckNote,
		})
	}
	if _, err := l.db.NamedExecContext(ctx, q, rows); err != nil {
		return fmt.Errorf("record executions: %w", err)
	}
	return nil
}

// RecordOptimization appends one tuner adjustment.
func (l *Ledger) RecordOptimization(ctx context.Context, event tune.OptimizationEvent) error {
	if l == nil {
		return nil
	}

	const q = `INSERT INTO optimization_events (id, ts, target_module, parameter, old_value, new_value, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	_, err := l.db.ExecContext(ctx, q, event.ID, event.Timestamp, string(event.TargetModule),
		event.Parameter, event.OldValue, event.NewValue, event.Reason)
	if err != nil {
		return fmt.Errorf("record optimization event: %w", err)
	}
	return nil
}

// RecordConfigSnapshot appends the full trading config, typically
// right after the tuner changes it.
func (l *Ledger) RecordConfigSnapshot(ctx context.Context, cfg tune.TradingConfig, now time.Time) error {
	if l == nil {
		return nil
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config snapshot: %w", err)
	}
	if _, err := l.db.ExecContext(ctx,
		`INSERT INTO config_snapshots (ts, config) VALUES ($1, $2)`, now, payload); err != nil {
		return fmt.Errorf("record config snapshot: %w", err)
	}
	return nil
}

// RecentExecutions returns up to limit entries, newest first.
func (l *Ledger) RecentExecutions(ctx context.Context, limit int) ([]pipeline.ExecutionLogEntry, error) {
	if l == nil {
		return nil, nil
	}

	var rows []struct {
		ID       string    `db:"id"`
		TS       time.Time `db:"ts"`
		Symbol   string    `db:"symbol"`
		Kind     string    `db:"kind"`
		SizeUSD  float64   `db:"size_usd"`
		Reason   string    `db:"reason"`
		RiskNote string    `db:"risk_note"`
	}
	const q = `SELECT id, ts, symbol, kind, size_usd, reason, risk_note
		FROM executions ORDER BY ts DESC LIMIT $1`
	if err := l.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, fmt.Errorf("load executions: %w", err)
	}

	entries := make([]pipeline.ExecutionLogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, pipeline.ExecutionLogEntry{
			ID:            r.ID,
			Timestamp:     r.TS,
			Symbol:        r.Symbol,
			Kind:          pipeline.ExecutionType(r.Kind),
			SizeUSD:       r.SizeUSD,
			Reason:        r.Reason,
			RiskCheckNote: r.RiskNote,
		})
	}
	return entries, nil
}

// Close releases the connection pool.
func (l *Ledger) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}
