package sync

import (
	"context"

	"github.com/listdex/listdex/internal/domain/batch"
	"github.com/listdex/listdex/internal/domain/document"
	"github.com/listdex/listdex/internal/domain/listing"
)

// ChangeSource feeds changed listings in change order.
type ChangeSource interface {
	// FetchSince returns up to limit listings whose change seq is strictly
	// above the checkpoint, oldest change first.
	FetchSince(ctx context.Context, checkpoint uint64, limit int) ([]listing.Listing, error)
}

// IndexWriter applies document operations to the index backend.
type IndexWriter interface {
	EnsureIndex(ctx context.Context) error
	// BulkApply reports one outcome per operation in input order. A non-nil
	// error means the backend was unreachable and nothing was confirmed.
	BulkApply(ctx context.Context, ops []document.Operation) ([]batch.Result, error)
}

// CheckpointStore persists the sync watermark.
type CheckpointStore interface {
	Checkpoint(ctx context.Context) (uint64, error)
	// Advance moves the watermark forward; it must never regress.
	Advance(ctx context.Context, seq uint64) error
}

// healthGate is the consumer view of the index breaker.
type healthGate interface {
	IsHealthy() bool
	ReportFailure()
}
