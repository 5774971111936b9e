package search

import (
	"context"
	"testing"

	"github.com/listdex/listdex/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

func (m *mockStore) Search(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func entryFields(id, lat, lon string) map[string]string {
	return map[string]string{
		"id":             id,
		"title":          "Гурток",
		"provider_title": "Центр",
		"city":           "Київ",
		"rating":         "4.5",
		"price":          "200",
		"min_age":        "6",
		"max_age":        "12",
		"directions":     "2,5",
		"geo":            lon + "," + lat,
	}
}
