package query

import (
	"context"
	"errors"
	"testing"

	"github.com/listdex/listdex/internal/domain"
	"github.com/listdex/listdex/internal/domain/filter"
	"github.com/listdex/listdex/internal/domain/listing"
	domquery "github.com/listdex/listdex/internal/domain/query"
)

func TestSearch_RejectsMalformedFilter(t *testing.T) {
	idx := &mockIndexSearcher{searchFn: func(context.Context, *domquery.IndexQuery) (*listing.SearchResult, error) {
		t.Fatal("malformed filter must not reach the index")
		return nil, nil
	}}
	rel := &mockRelationalSearcher{searchFn: func(context.Context, *domquery.Predicate) (*listing.SearchResult, error) {
		t.Fatal("malformed filter must not reach the database")
		return nil, nil
	}}
	s := New(idx, rel, &stubGate{})

	f := filter.New()
	f.AgeRanges = []filter.AgeRange{{Min: 10, Max: 5}}

	_, err := s.Search(context.Background(), &f)
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Errorf("err = %v, want ErrInvalidFilter", err)
	}
}

func TestSearch_HealthyGateUsesIndex(t *testing.T) {
	want := &listing.SearchResult{TotalCount: 7}
	idx := &mockIndexSearcher{searchFn: func(context.Context, *domquery.IndexQuery) (*listing.SearchResult, error) {
		return want, nil
	}}
	rel := &mockRelationalSearcher{searchFn: func(context.Context, *domquery.Predicate) (*listing.SearchResult, error) {
		t.Fatal("healthy index must serve the query")
		return nil, nil
	}}
	s := New(idx, rel, &stubGate{})

	f := filter.New()
	got, err := s.Search(context.Background(), &f)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != want {
		t.Errorf("got %+v", got)
	}
}

func TestSearch_OpenGateUsesRelational(t *testing.T) {
	idx := &mockIndexSearcher{searchFn: func(context.Context, *domquery.IndexQuery) (*listing.SearchResult, error) {
		t.Fatal("open gate must keep queries off the index")
		return nil, nil
	}}
	want := &listing.SearchResult{TotalCount: 3}
	rel := &mockRelationalSearcher{searchFn: func(context.Context, *domquery.Predicate) (*listing.SearchResult, error) {
		return want, nil
	}}
	s := New(idx, rel, &stubGate{unhealthy: true})

	f := filter.New()
	got, err := s.Search(context.Background(), &f)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != want {
		t.Errorf("got %+v", got)
	}
}

func TestSearch_NearestAlwaysRelational(t *testing.T) {
	idx := &mockIndexSearcher{searchFn: func(context.Context, *domquery.IndexQuery) (*listing.SearchResult, error) {
		t.Fatal("nearest ordering must not reach the index")
		return nil, nil
	}}
	var gotPredicate *domquery.Predicate
	rel := &mockRelationalSearcher{searchFn: func(_ context.Context, p *domquery.Predicate) (*listing.SearchResult, error) {
		gotPredicate = p
		return &listing.SearchResult{}, nil
	}}
	s := New(idx, rel, &stubGate{})

	f := filter.New()
	f.OrderBy = filter.OrderByNearest
	f.Radius = &filter.Radius{Lat: 50.45, Lon: 30.52}

	if _, err := s.Search(context.Background(), &f); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPredicate == nil || gotPredicate.OrderBy != filter.OrderByNearest {
		t.Errorf("predicate = %+v", gotPredicate)
	}
	if gotPredicate.Geo == nil {
		t.Error("nearest predicate must carry the geo center")
	}
}

func TestSearch_IndexFailureFallsBackOnce(t *testing.T) {
	idx := &mockIndexSearcher{searchFn: func(context.Context, *domquery.IndexQuery) (*listing.SearchResult, error) {
		return nil, errors.New("index down")
	}}
	want := &listing.SearchResult{TotalCount: 1}
	relCalls := 0
	rel := &mockRelationalSearcher{searchFn: func(context.Context, *domquery.Predicate) (*listing.SearchResult, error) {
		relCalls++
		return want, nil
	}}
	g := &stubGate{}
	s := New(idx, rel, g)

	f := filter.New()
	got, err := s.Search(context.Background(), &f)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != want || relCalls != 1 {
		t.Errorf("got %+v after %d relational calls", got, relCalls)
	}
	if g.failures != 1 {
		t.Errorf("gate failures = %d, want 1", g.failures)
	}
}

func TestSearch_BothPathsDownReturnsError(t *testing.T) {
	idx := &mockIndexSearcher{searchFn: func(context.Context, *domquery.IndexQuery) (*listing.SearchResult, error) {
		return nil, errors.New("index down")
	}}
	rel := &mockRelationalSearcher{searchFn: func(context.Context, *domquery.Predicate) (*listing.SearchResult, error) {
		return nil, errors.New("database down")
	}}
	s := New(idx, rel, &stubGate{})

	f := filter.New()
	if _, err := s.Search(context.Background(), &f); err == nil {
		t.Error("expected an error when both paths fail")
	}
}
