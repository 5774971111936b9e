package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/listdex/listdex/internal/logger"
)

// DefaultPingInterval is how often the background pinger probes the index
// backend.
const DefaultPingInterval = 15 * time.Second

// pingTimeout bounds a single probe.
const pingTimeout = 5 * time.Second

// Pinger probes the index backend on an interval and reports outcomes into
// the gate, so the breaker recovers without waiting for the next sync cycle
// to fail.
type Pinger struct {
	index    IndexPinger
	gate     *Gate
	interval time.Duration
}

// NewPinger creates a background pinger. A non-positive interval falls back
// to the default.
func NewPinger(index IndexPinger, gate *Gate, interval time.Duration) *Pinger {
	if interval <= 0 {
		interval = DefaultPingInterval
	}
	return &Pinger{index: index, gate: gate, interval: interval}
}

// Run probes until the context is cancelled.
func (p *Pinger) Run(ctx context.Context) {
	log := logger.FromContext(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := p.index.Ping(probeCtx)
			cancel()

			if err != nil {
				p.gate.ReportFailure()
				log.Warn("index backend probe failed", zap.Error(err))
				continue
			}
			p.gate.ReportSuccess()
		}
	}
}
