package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const loadCheckpointSQL = `SELECT seq FROM sync_checkpoint WHERE id = 1`

// GREATEST keeps the watermark monotonic even under a racing writer.
const advanceCheckpointSQL = `
INSERT INTO sync_checkpoint (id, seq) VALUES (1, $1)
ON CONFLICT (id) DO UPDATE SET seq = GREATEST(sync_checkpoint.seq, EXCLUDED.seq)`

// Checkpoint returns the persisted sync watermark; a fresh database starts
// at zero.
func (r *Repo) Checkpoint(ctx context.Context) (uint64, error) {
	var seq uint64
	err := r.q.QueryRow(ctx, loadCheckpointSQL).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load checkpoint: %w", err)
	}
	return seq, nil
}

// Advance persists a new watermark. The stored value never regresses.
func (r *Repo) Advance(ctx context.Context, seq uint64) error {
	if _, err := r.q.Exec(ctx, advanceCheckpointSQL, seq); err != nil {
		return fmt.Errorf("advance checkpoint to %d: %w", seq, err)
	}
	return nil
}
