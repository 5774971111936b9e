// Package postgres implements the relational side: the change feed the sync
// engine drains, the persisted sync checkpoint, the relational query path and
// the seed reader for full reindexing.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the consumer interface over a pgx pool (ISP).
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repo bundles the relational repositories over one pool.
type Repo struct {
	q         Querier
	scanLimit int
}

// New creates a relational repository over the given querier.
func New(q Querier) *Repo {
	return &Repo{q: q, scanLimit: maxScanRows}
}

// WithScanLimit overrides the candidate cap for orderings resolved in Go.
// Totals and deep pages on those paths are only exact up to this many
// matching rows.
func (r *Repo) WithScanLimit(n int) *Repo {
	if n > 0 {
		r.scanLimit = n
	}
	return r
}

// NewPool connects a pgx pool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
