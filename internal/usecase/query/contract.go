package query

import (
	"context"

	"github.com/listdex/listdex/internal/domain/listing"
	domquery "github.com/listdex/listdex/internal/domain/query"
)

// IndexSearcher serves queries from the denormalized index.
type IndexSearcher interface {
	Search(ctx context.Context, q *domquery.IndexQuery) (*listing.SearchResult, error)
}

// RelationalSearcher serves queries from the relational source of truth.
type RelationalSearcher interface {
	Search(ctx context.Context, p *domquery.Predicate) (*listing.SearchResult, error)
}

// healthGate is the consumer view of the index breaker.
type healthGate interface {
	IsHealthy() bool
	ReportFailure()
}
