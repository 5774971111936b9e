package chi

import (
	"context"

	"github.com/listdex/listdex/internal/domain/filter"
	"github.com/listdex/listdex/internal/domain/listing"
	healthuc "github.com/listdex/listdex/internal/usecase/health"
	reindexuc "github.com/listdex/listdex/internal/usecase/reindex"
	syncuc "github.com/listdex/listdex/internal/usecase/sync"
)

type mockSearcher struct {
	searchFn func(ctx context.Context, f *filter.Filter) (*listing.SearchResult, error)
}

func (m *mockSearcher) Search(ctx context.Context, f *filter.Filter) (*listing.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, f)
	}
	return &listing.SearchResult{}, nil
}

type mockSyncTrigger struct {
	tryFn func(ctx context.Context) (syncuc.CycleResult, bool, error)
}

func (m *mockSyncTrigger) TryRunCycle(ctx context.Context) (syncuc.CycleResult, bool, error) {
	if m.tryFn != nil {
		return m.tryFn(ctx)
	}
	return syncuc.CycleResult{}, true, nil
}

type mockReindexer struct {
	runFn func(ctx context.Context) (reindexuc.Result, error)
}

func (m *mockReindexer) Run(ctx context.Context) (reindexuc.Result, error) {
	if m.runFn != nil {
		return m.runFn(ctx)
	}
	return reindexuc.Result{}, nil
}

type mockHealth struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealth) Check(ctx context.Context) healthuc.Report {
	if m.checkFn != nil {
		return m.checkFn(ctx)
	}
	return healthuc.Report{Status: healthuc.Healthy}
}
