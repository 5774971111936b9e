package reindex

import (
	"context"

	"github.com/google/uuid"

	"github.com/listdex/listdex/internal/domain/batch"
	"github.com/listdex/listdex/internal/domain/document"
	"github.com/listdex/listdex/internal/domain/listing"
)

// Source pages through every indexable listing in id order.
type Source interface {
	FetchPage(ctx context.Context, after uuid.UUID, limit int) ([]listing.Listing, error)
}

// IndexWriter applies document operations to the index backend.
type IndexWriter interface {
	EnsureIndex(ctx context.Context) error
	BulkApply(ctx context.Context, ops []document.Operation) ([]batch.Result, error)
}
