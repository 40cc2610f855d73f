// Package postgres persists opportunity samples for offline analytics.
// The engine treats this as a fire-and-forget sink; a failing database never
// surfaces as a core error.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sawpanic/arbscan/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS opportunity_samples (
	id             BIGSERIAL PRIMARY KEY,
	symbol         TEXT             NOT NULL,
	exchange_low   TEXT             NOT NULL,
	exchange_high  TEXT             NOT NULL,
	price_low      DOUBLE PRECISION NOT NULL,
	price_high     DOUBLE PRECISION NOT NULL,
	profit_percent DOUBLE PRECISION NOT NULL,
	volume_24h     DOUBLE PRECISION NOT NULL,
	ts             TIMESTAMPTZ      NOT NULL,
	created_at     TIMESTAMPTZ      NOT NULL DEFAULT now()
)`

// OpportunityRepo stores opportunity samples in PostgreSQL.
type OpportunityRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Open connects, verifies the connection and ensures the samples table.
func Open(dsn string, timeout time.Duration) (*OpportunityRepo, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure opportunity_samples table: %w", err)
	}

	return &OpportunityRepo{db: db, timeout: timeout}, nil
}

// InsertBatch stores the samples in one transaction.
func (r *OpportunityRepo) InsertBatch(ctx context.Context, samples []model.OpportunitySample) error {
	if len(samples) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO opportunity_samples
			(symbol, exchange_low, exchange_high, price_low, price_high, profit_percent, volume_24h, ts)
		VALUES (:symbol, :exchange_low, :exchange_high, :price_low, :price_high, :profit_percent, :volume_24h, :ts)`

	for _, s := range samples {
		if _, err := tx.NamedExecContext(ctx, query, s); err != nil {
			return fmt.Errorf("insert sample %s: %w", s.Symbol, err)
		}
	}
	return tx.Commit()
}

// Close releases the connection pool.
func (r *OpportunityRepo) Close() error {
	return r.db.Close()
}
