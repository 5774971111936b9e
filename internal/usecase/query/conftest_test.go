package query

import (
	"context"

	"github.com/listdex/listdex/internal/domain/listing"
	domquery "github.com/listdex/listdex/internal/domain/query"
)

type mockIndexSearcher struct {
	searchFn func(ctx context.Context, q *domquery.IndexQuery) (*listing.SearchResult, error)
}

func (m *mockIndexSearcher) Search(ctx context.Context, q *domquery.IndexQuery) (*listing.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &listing.SearchResult{}, nil
}

type mockRelationalSearcher struct {
	searchFn func(ctx context.Context, p *domquery.Predicate) (*listing.SearchResult, error)
}

func (m *mockRelationalSearcher) Search(ctx context.Context, p *domquery.Predicate) (*listing.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, p)
	}
	return &listing.SearchResult{}, nil
}

type stubGate struct {
	unhealthy bool
	failures  int
}

func (g *stubGate) IsHealthy() bool { return !g.unhealthy }
func (g *stubGate) ReportFailure()  { g.failures++ }
