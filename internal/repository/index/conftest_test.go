package index

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/listdex/listdex/internal/db"
	domdoc "github.com/listdex/listdex/internal/domain/document"
	"github.com/listdex/listdex/internal/domain/listing"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetBulkFn    func(ctx context.Context, items []db.HashSetItem) ([]db.BulkOutcome, error)
	delBulkFn     func(ctx context.Context, keys []string) ([]db.BulkOutcome, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) HSetBulk(ctx context.Context, items []db.HashSetItem) ([]db.BulkOutcome, error) {
	if m.hsetBulkFn != nil {
		return m.hsetBulkFn(ctx, items)
	}
	out := make([]db.BulkOutcome, len(items))
	for i, it := range items {
		out[i] = db.BulkOutcome{Key: it.Key}
	}
	return out, nil
}

func (m *mockStore) DelBulk(ctx context.Context, keys []string) ([]db.BulkOutcome, error) {
	if m.delBulkFn != nil {
		return m.delBulkFn(ctx, keys)
	}
	out := make([]db.BulkOutcome, len(keys))
	for i, k := range keys {
		out[i] = db.BulkOutcome{Key: k}
	}
	return out, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testListing(t *testing.T, seq uint64) listing.Listing {
	t.Helper()
	return listing.Listing{
		ID:           uuid.MustParse("8c5b0000-0000-4000-8000-000000000001"),
		Title:        "Шаховий клуб",
		Status:       listing.StatusOpen,
		Address:      listing.Address{City: "Львів", SettlementID: 7, Latitude: 49.84, Longitude: 24.03},
		MinAge:       6,
		MaxAge:       16,
		DirectionIDs: []int64{3},
		Seq:          seq,
	}
}

func testUpsert(t *testing.T, seq uint64) domdoc.Operation {
	t.Helper()
	l := testListing(t, seq)
	op, err := domdoc.OperationFor(&l)
	if err != nil {
		t.Fatalf("OperationFor: %v", err)
	}
	return op
}
