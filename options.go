package listdex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	password string
	dsn      string

	opsPerTask  int
	syncDelay   time.Duration
	schedule    string
	maxAttempts int
	scanLimit   int

	cooldown         time.Duration
	readinessTimeout time.Duration

	logger *zap.Logger
}

// WithRedis configures the index backend connection. Works with any
// RediSearch-capable server (Redis Stack, Valkey with the search module).
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithRedisCluster configures the index backend with multiple seed addresses.
func WithRedisCluster(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
		c.password = password
	}
}

// WithPostgres sets the relational source-of-truth connection string.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dsn = dsn
	}
}

// WithOperationsPerTask caps how many change-feed records one sync cycle
// replays. Default: 100.
func WithOperationsPerTask(n int) Option {
	return func(c *clientConfig) {
		c.opsPerTask = n
	}
}

// WithSyncDelay sets the pause between consecutive cycles when draining a
// backlog. Default: 500ms.
func WithSyncDelay(d time.Duration) Option {
	return func(c *clientConfig) {
		c.syncDelay = d
	}
}

// WithSyncSchedule sets the cron expression for the periodic sync loop
// started by Sync. Accepts standard cron syntax or "@every <duration>".
// Default: "@every 30s".
func WithSyncSchedule(spec string) Option {
	return func(c *clientConfig) {
		c.schedule = spec
	}
}

// WithMaxAttempts sets how many cycles a rejected document blocks the
// checkpoint before it is parked and skipped. Default: 3.
func WithMaxAttempts(n int) Option {
	return func(c *clientConfig) {
		c.maxAttempts = n
	}
}

// WithCooldown sets how long the index path stays disabled after a backend
// failure before queries retry it. Default: 30s.
func WithCooldown(d time.Duration) Option {
	return func(c *clientConfig) {
		c.cooldown = d
	}
}

// WithScanLimit caps candidate fetches for relational query paths finished
// in Go (nearest/alphabet ordering, exact radius filtering). Default: 2000.
func WithScanLimit(n int) Option {
	return func(c *clientConfig) {
		c.scanLimit = n
	}
}

// WithReadinessTimeout bounds how long New waits for the index backend.
// Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.readinessTimeout = d
	}
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
