// Package query selects the serving path for listing searches: the
// denormalized index when it is healthy, the relational source otherwise.
package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/listdex/listdex/internal/domain"
	"github.com/listdex/listdex/internal/domain/filter"
	"github.com/listdex/listdex/internal/domain/listing"
	domquery "github.com/listdex/listdex/internal/domain/query"
	"github.com/listdex/listdex/internal/logger"
	"github.com/listdex/listdex/internal/metrics"
)

// Selector is the single search entry point for surrounding transports. Both
// paths produce the same SearchResult shape and the same semantic filtering
// outcome, so callers never know which one served them.
type Selector struct {
	index      IndexSearcher
	relational RelationalSearcher
	gate       healthGate
}

// New creates a query strategy selector.
func New(index IndexSearcher, relational RelationalSearcher, gate healthGate) *Selector {
	return &Selector{index: index, relational: relational, gate: gate}
}

// Search validates the filter and serves it from the appropriate path.
// Nearest ordering always takes the relational path: distance is computed
// directly against stored coordinates there. Everything else prefers the
// index when the gate is healthy, falling back to the relational path once
// if the index call fails.
func (s *Selector) Search(ctx context.Context, f *filter.Filter) (*listing.SearchResult, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
	}

	if f.OrderBy == filter.OrderByNearest || !s.gate.IsHealthy() {
		return s.searchRelational(ctx, f)
	}

	q := domquery.ToIndexQuery(f)
	res, err := s.index.Search(ctx, &q)
	if err == nil {
		metrics.SearchRequestsTotal.WithLabelValues("index", "ok").Inc()
		return res, nil
	}

	// One-shot fallback: the relational path answers this request while the
	// gate keeps sync and later queries off the struggling backend.
	s.gate.ReportFailure()
	metrics.SearchRequestsTotal.WithLabelValues("index", "error").Inc()
	metrics.SearchFallbacksTotal.Inc()
	logger.FromContext(ctx).Warn("index search failed, serving from relational path", zap.Error(err))

	return s.searchRelational(ctx, f)
}

func (s *Selector) searchRelational(ctx context.Context, f *filter.Filter) (*listing.SearchResult, error) {
	p := domquery.ToRelationalPredicate(f)
	res, err := s.relational.Search(ctx, &p)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("relational", "error").Inc()
		return nil, fmt.Errorf("relational search: %w", err)
	}
	metrics.SearchRequestsTotal.WithLabelValues("relational", "ok").Inc()
	return res, nil
}
