// Package store records a per-cycle summary row to Postgres. History
// is a consumer of published bundles, never part of the core: the
// engine keeps no history itself.
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sawpanic/gridpulse/internal/market"
)

const schema = `
CREATE TABLE IF NOT EXISTS cycle_history (
	sequence        BIGINT PRIMARY KEY,
	generated_at    TIMESTAMPTZ NOT NULL,
	total_load      DOUBLE PRECISION NOT NULL,
	avg_price       DOUBLE PRECISION NOT NULL,
	reserve_margin  DOUBLE PRECISION NOT NULL,
	renewable_share DOUBLE PRECISION NOT NULL,
	signal_count    INTEGER NOT NULL,
	alert_count     INTEGER NOT NULL
)`

const insertCycle = `
INSERT INTO cycle_history
	(sequence, generated_at, total_load, avg_price, reserve_margin, renewable_share, signal_count, alert_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// History records bundle summaries.
type History struct {
	db *sqlx.DB
}

// Open connects to Postgres and ensures the schema exists.
func Open(dsn string) (*History, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	h := &History{db: db}
	if err := h.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// NewHistory wraps an existing connection; used by tests.
func NewHistory(db *sqlx.DB) *History {
	return &History{db: db}
}

func (h *History) ensureSchema(ctx context.Context) error {
	if _, err := h.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (h *History) Name() string { return "postgres" }

// Publish inserts one summary row for the bundle.
func (h *History) Publish(ctx context.Context, b *market.Bundle) error {
	_, err := h.db.ExecContext(ctx, insertCycle,
		b.Sequence,
		b.GeneratedAt,
		b.Snapshot.System.TotalLoad,
		b.Snapshot.System.AvgPrice,
		b.Snapshot.System.ReserveMargin,
		b.Snapshot.System.RenewableShare,
		len(b.Signals),
		len(b.Alerts),
	)
	if err != nil {
		return fmt.Errorf("record cycle %d: %w", b.Sequence, err)
	}
	return nil
}

// Close releases the connection pool.
func (h *History) Close() error {
	return h.db.Close()
}
