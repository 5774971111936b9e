// Package listdex exposes an embeddable client for the listing search
// service: a RediSearch-backed query index kept in sync with a PostgreSQL
// source of truth, with automatic fallback to relational queries when the
// index is unavailable.
package listdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	dbRedis "github.com/listdex/listdex/internal/db/redis"
	logpkg "github.com/listdex/listdex/internal/logger"
	indexrepo "github.com/listdex/listdex/internal/repository/index"
	"github.com/listdex/listdex/internal/repository/postgres"
	searchrepo "github.com/listdex/listdex/internal/repository/search"
	healthuc "github.com/listdex/listdex/internal/usecase/health"
	queryuc "github.com/listdex/listdex/internal/usecase/query"
	reindexuc "github.com/listdex/listdex/internal/usecase/reindex"
	syncuc "github.com/listdex/listdex/internal/usecase/sync"
	"go.uber.org/zap"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCooldown         = 30 * time.Second
)

// Client is the listdex SDK entry point.
type Client struct {
	store     *dbRedis.Store
	pool      *pgxpool.Pool
	writer    *indexrepo.Repo
	gate      *healthuc.Gate
	selector  *queryuc.Selector
	engine    *syncuc.Engine
	reindexer *reindexuc.Service
	logger    *zap.Logger
}

// New creates a Client, connects to both backends and ensures the search
// index exists.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		readinessTimeout: defaultReadinessTimeout,
		cooldown:         defaultCooldown,
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("listdex: index address required (use WithRedis)")
	}
	if cfg.dsn == "" {
		return nil, errors.New("listdex: database dsn required (use WithPostgres)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("listdex: create index store: %w", err)
	}
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("listdex: index backend not ready: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.dsn)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("listdex: connect database: %w", err)
	}

	c := wireClient(store, pool, cfg)

	if err := c.EnsureIndex(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store *dbRedis.Store, pool *pgxpool.Pool, cfg *clientConfig) *Client {
	repo := postgres.New(pool)
	if cfg.scanLimit > 0 {
		repo = repo.WithScanLimit(cfg.scanLimit)
	}
	writer := indexrepo.New(store)
	searcher := searchrepo.New(store)

	gate := healthuc.NewGate(cfg.cooldown)

	engine := syncuc.New(repo, writer, repo, gate)
	if cfg.opsPerTask > 0 {
		engine = engine.WithOperationsPerTask(cfg.opsPerTask)
	}
	if cfg.syncDelay > 0 {
		engine = engine.WithDelay(cfg.syncDelay)
	}
	if cfg.schedule != "" {
		engine = engine.WithSchedule(cfg.schedule)
	}
	if cfg.maxAttempts > 0 {
		engine = engine.WithMaxAttempts(cfg.maxAttempts)
	}

	return &Client{
		store:     store,
		pool:      pool,
		writer:    writer,
		gate:      gate,
		selector:  queryuc.New(searcher, repo, gate),
		engine:    engine,
		reindexer: reindexuc.New(repo, writer),
		logger:    cfg.logger,
	}
}

// Close releases both backend connections.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks index backend connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndex creates the search index if it does not exist yet.
func (c *Client) EnsureIndex(ctx context.Context) error {
	if err := c.writer.EnsureIndex(c.withLogger(ctx)); err != nil {
		return fmt.Errorf("listdex: ensure index: %w", err)
	}
	return nil
}

// Search runs a query through the path selector: the index when it is
// healthy, the relational backend otherwise or for nearest ordering.
func (c *Client) Search(ctx context.Context, q *Query) (*Result, error) {
	f := q.filter
	res, err := c.selector.Search(c.withLogger(ctx), &f)
	if err != nil {
		return nil, err
	}

	out := &Result{TotalCount: res.TotalCount, Items: make([]Item, 0, len(res.Items))}
	for _, card := range res.Items {
		out.Items = append(out.Items, Item{
			ID:            card.ID,
			Title:         card.Title,
			ProviderTitle: card.ProviderTitle,
			Rating:        card.Rating,
			Price:         card.Price,
			MinAge:        card.MinAge,
			MaxAge:        card.MaxAge,
			DirectionIDs:  card.DirectionIDs,
			City:          card.City,
			Latitude:      card.Latitude,
			Longitude:     card.Longitude,
		})
	}
	return out, nil
}

// SyncOnce replays one batch of the change feed into the index. It returns
// ran=false when another cycle is already in flight.
func (c *Client) SyncOnce(ctx context.Context) (SyncResult, bool, error) {
	res, ran, err := c.engine.TryRunCycle(c.withLogger(ctx))
	return SyncResult{
		Applied:        res.Applied,
		Skipped:        res.Skipped,
		Failed:         res.Failed,
		NextCheckpoint: res.NextCheckpoint,
	}, ran, err
}

// Sync runs the periodic sync loop until ctx is cancelled.
func (c *Client) Sync(ctx context.Context) error {
	return c.engine.Run(c.withLogger(ctx))
}

// Reindex rebuilds the whole index from the relational catalog.
func (c *Client) Reindex(ctx context.Context) (ReindexResult, error) {
	res, err := c.reindexer.Run(c.withLogger(ctx))
	return ReindexResult{Indexed: res.Indexed, Failed: res.Failed, Pages: res.Pages}, err
}

func (c *Client) withLogger(ctx context.Context) context.Context {
	if c.logger == nil {
		return ctx
	}
	return logpkg.ContextWithLogger(ctx, c.logger)
}
