package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/listdex/listdex/internal/domain/batch"
	"github.com/listdex/listdex/internal/domain/document"
	"github.com/listdex/listdex/internal/domain/listing"
)

type mockSource struct {
	fetchFn func(ctx context.Context, checkpoint uint64, limit int) ([]listing.Listing, error)
}

func (m *mockSource) FetchSince(ctx context.Context, checkpoint uint64, limit int) ([]listing.Listing, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, checkpoint, limit)
	}
	return nil, nil
}

type mockWriter struct {
	ensureFn func(ctx context.Context) error
	bulkFn   func(ctx context.Context, ops []document.Operation) ([]batch.Result, error)
}

func (m *mockWriter) EnsureIndex(ctx context.Context) error {
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return nil
}

func (m *mockWriter) BulkApply(ctx context.Context, ops []document.Operation) ([]batch.Result, error) {
	if m.bulkFn != nil {
		return m.bulkFn(ctx, ops)
	}
	out := make([]batch.Result, len(ops))
	for i, op := range ops {
		out[i] = batch.NewOK(op.ID)
	}
	return out, nil
}

// fakeCheckpoints is an in-memory CheckpointStore with the same
// never-regress semantics as the relational one.
type fakeCheckpoints struct {
	seq      uint64
	advanced []uint64
}

func (f *fakeCheckpoints) Checkpoint(context.Context) (uint64, error) { return f.seq, nil }

func (f *fakeCheckpoints) Advance(_ context.Context, seq uint64) error {
	f.advanced = append(f.advanced, seq)
	if seq > f.seq {
		f.seq = seq
	}
	return nil
}

type stubGate struct {
	unhealthy bool
	failures  int
}

func (g *stubGate) IsHealthy() bool { return !g.unhealthy }
func (g *stubGate) ReportFailure()  { g.failures++ }

// listingID returns a stable uuid for test listing n.
func listingID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

// makeListings builds n valid open listings with seqs 1..n.
func makeListings(n int) []listing.Listing {
	out := make([]listing.Listing, n)
	for i := range out {
		out[i] = listing.Listing{
			ID:     listingID(i + 1),
			Title:  fmt.Sprintf("Гурток %d", i+1),
			Status: listing.StatusOpen,
			Address: listing.Address{
				City:      "Київ",
				Latitude:  50.45,
				Longitude: 30.52,
			},
			MinAge: 6,
			MaxAge: 12,
			Seq:    uint64(i + 1),
		}
	}
	return out
}

// feedSource serves a fixed ordered change feed honoring checkpoint and limit.
func feedSource(records []listing.Listing) *mockSource {
	return &mockSource{
		fetchFn: func(_ context.Context, checkpoint uint64, limit int) ([]listing.Listing, error) {
			var out []listing.Listing
			for _, r := range records {
				if r.Seq <= checkpoint {
					continue
				}
				out = append(out, r)
				if len(out) == limit {
					break
				}
			}
			return out, nil
		},
	}
}
