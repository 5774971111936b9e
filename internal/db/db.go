package db

import (
	"context"
	"time"
)

// Store is the index-backend facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// BulkOutcome reports the result of one key within a pipelined write.
type BulkOutcome struct {
	Key string
	Err error
}

// HashStore provides hash-based document operations.
//
// The bulk variants return per-key outcomes: a server-side rejection of one
// key must not mask the fate of the others. A non-nil error return means the
// whole pipeline failed in transport and no outcomes are available.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetBulk(ctx context.Context, items []HashSetItem) ([]BulkOutcome, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	DelBulk(ctx context.Context, keys []string) ([]BulkOutcome, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// ListQuery is the input for a paginated, optionally sorted FT.SEARCH.
type ListQuery struct {
	Index        string
	Query        string
	SortBy       string // empty = backend default order
	SortDesc     bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	Search(ctx context.Context, q *ListQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}
