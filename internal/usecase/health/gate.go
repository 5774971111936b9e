package health

import (
	"sync"
	"time"
)

// DefaultCooldown keeps the gate closed after a failure before writes may
// try again.
const DefaultCooldown = 30 * time.Second

// Gate is a time-boxed circuit breaker over the index backend. A single
// reported failure opens the breaker until now + cooldown; any caller after
// the deadline is allowed to try again. Counters and half-open probe limits
// are deliberately absent: sync cycles are infrequent and idempotent, so a
// strict cooldown is sufficient.
type Gate struct {
	mu               sync.Mutex
	cooldown         time.Duration
	unavailableUntil time.Time
	now              func() time.Time
}

// NewGate creates a Gate with the given cooldown. A non-positive cooldown
// falls back to the default.
func NewGate(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{cooldown: cooldown, now: time.Now}
}

// WithClock overrides the gate's clock (tests).
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// IsHealthy reports whether the index backend may be used right now.
func (g *Gate) IsHealthy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.now().Before(g.unavailableUntil)
}

// ReportFailure opens the breaker for the cooldown window.
func (g *Gate) ReportFailure() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unavailableUntil = g.now().Add(g.cooldown)
}

// ReportSuccess closes the breaker immediately.
func (g *Gate) ReportSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unavailableUntil = time.Time{}
}

// UnavailableUntil returns the current open-until deadline; zero when closed.
func (g *Gate) UnavailableUntil() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unavailableUntil
}
