// Package sync keeps the index backend converged with the relational source
// of truth by replaying the change feed in checkpointed batches.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/listdex/listdex/internal/domain/document"
	"github.com/listdex/listdex/internal/logger"
	"github.com/listdex/listdex/internal/metrics"
)

// Defaults for the cycle scheduler.
const (
	DefaultOperationsPerTask = 100
	DefaultDelayBetweenTasks = 500 * time.Millisecond
	DefaultSchedule          = "@every 30s"
)

// CycleResult summarizes one sync cycle.
type CycleResult struct {
	Applied        int    `json:"applied"`
	Skipped        int    `json:"skipped"`
	Failed         int    `json:"failed"`
	NextCheckpoint uint64 `json:"next_checkpoint"`
}

// record resolution within one cycle.
type recState int

const (
	statePending recState = iota
	stateApplied          // confirmed by the backend
	stateParked           // dead-lettered out, watermark may pass
	stateFailed           // unresolved, blocks the watermark
)

// Engine replays the relational change feed into the index. Only one cycle
// runs at a time: overlapping triggers coalesce on the lease instead of
// interleaving bulk writes.
type Engine struct {
	source      ChangeSource
	writer      IndexWriter
	checkpoints CheckpointStore
	gate        healthGate
	dead        *deadLetter

	opsPerTask int
	delay      time.Duration
	schedule   string

	lease chan struct{}
}

// New creates a sync engine with default pacing.
func New(source ChangeSource, writer IndexWriter, checkpoints CheckpointStore, gate healthGate) *Engine {
	return &Engine{
		source:      source,
		writer:      writer,
		checkpoints: checkpoints,
		gate:        gate,
		dead:        newDeadLetter(DefaultMaxAttempts),
		opsPerTask:  DefaultOperationsPerTask,
		delay:       DefaultDelayBetweenTasks,
		schedule:    DefaultSchedule,
		lease:       make(chan struct{}, 1),
	}
}

// WithOperationsPerTask caps records fetched per cycle.
func (e *Engine) WithOperationsPerTask(n int) *Engine {
	if n > 0 {
		e.opsPerTask = n
	}
	return e
}

// WithDelay sets the pause between consecutive cycles of one drain.
func (e *Engine) WithDelay(d time.Duration) *Engine {
	if d >= 0 {
		e.delay = d
	}
	return e
}

// WithSchedule sets the cron expression driving Run.
func (e *Engine) WithSchedule(expr string) *Engine {
	if expr != "" {
		e.schedule = expr
	}
	return e
}

// WithMaxAttempts bounds retries of a failing document before it is parked.
func (e *Engine) WithMaxAttempts(n int) *Engine {
	e.dead = newDeadLetter(n)
	return e
}

// RunCycle executes one cycle, waiting for the lease if another is in flight.
func (e *Engine) RunCycle(ctx context.Context) (CycleResult, error) {
	select {
	case e.lease <- struct{}{}:
	case <-ctx.Done():
		return CycleResult{}, ctx.Err()
	}
	defer func() { <-e.lease }()
	return e.runCycle(ctx)
}

// TryRunCycle executes one cycle unless another is already in flight, in
// which case it reports ran=false without blocking.
func (e *Engine) TryRunCycle(ctx context.Context) (res CycleResult, ran bool, err error) {
	select {
	case e.lease <- struct{}{}:
	default:
		return CycleResult{}, false, nil
	}
	defer func() { <-e.lease }()
	res, err = e.runCycle(ctx)
	return res, true, err
}

// Run ensures the index exists, then drains the change feed on the cron
// schedule until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := e.writer.EnsureIndex(ctx); err != nil {
		// The first healthy cycle will retry through the gate.
		log.Warn("ensure index failed", zap.Error(err))
		e.gate.ReportFailure()
	}

	c := cron.New()
	if _, err := c.AddFunc(e.schedule, func() { e.Drain(ctx) }); err != nil {
		return fmt.Errorf("parse sync schedule %q: %w", e.schedule, err)
	}
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// Drain runs cycles back to back, pacing with the configured delay, until the
// feed is exhausted, a cycle fails, or the context is cancelled. Overlapping
// drains coalesce: if a cycle is already in flight the call returns at once.
func (e *Engine) Drain(ctx context.Context) {
	log := logger.FromContext(ctx)

	for {
		res, ran, err := e.TryRunCycle(ctx)
		if !ran {
			return
		}
		if err != nil {
			log.Warn("sync cycle failed", zap.Error(err))
			return
		}
		if res.Applied+res.Skipped+res.Failed < e.opsPerTask {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(e.delay):
		}
	}
}

// runCycle is the single-cycle body. The caller holds the lease.
func (e *Engine) runCycle(ctx context.Context) (CycleResult, error) {
	log := logger.FromContext(ctx)

	if err := ctx.Err(); err != nil {
		return CycleResult{}, err
	}

	if !e.gate.IsHealthy() {
		metrics.SyncCyclesTotal.WithLabelValues("skipped").Inc()
		log.Debug("sync cycle skipped, index gate open")
		return CycleResult{}, nil
	}

	checkpoint, err := e.checkpoints.Checkpoint(ctx)
	if err != nil {
		metrics.SyncCyclesTotal.WithLabelValues("error").Inc()
		return CycleResult{}, fmt.Errorf("load checkpoint: %w", err)
	}
	res := CycleResult{NextCheckpoint: checkpoint}

	records, err := e.source.FetchSince(ctx, checkpoint, e.opsPerTask)
	if err != nil {
		metrics.SyncCyclesTotal.WithLabelValues("error").Inc()
		return res, fmt.Errorf("fetch changes: %w", err)
	}
	if len(records) == 0 {
		metrics.SyncCyclesTotal.WithLabelValues("ok").Inc()
		return res, nil
	}

	states := make([]recState, len(records))
	var (
		ops      []document.Operation
		opRecIdx []int
	)

	for i := range records {
		rec := &records[i]
		id := rec.ID.String()

		if e.dead.Exhausted(id, rec.Seq) {
			states[i] = stateParked
			res.Skipped++
			continue
		}

		op, err := document.OperationFor(rec)
		if err != nil {
			states[i] = stateFailed
			res.Failed++
			attempts := e.dead.RecordFailure(id, rec.Seq)
			metrics.SyncDocumentsTotal.WithLabelValues(op.Kind.String(), "error").Inc()
			log.Warn("listing rejected by document mapper",
				zap.String("listing_id", id),
				zap.Uint64("seq", rec.Seq),
				zap.Int("attempts", attempts),
				zap.Error(err))
			continue
		}
		ops = append(ops, op)
		opRecIdx = append(opRecIdx, i)
	}

	if len(ops) > 0 {
		outcomes, err := e.writer.BulkApply(ctx, ops)
		if err != nil {
			// Backend unreachable: nothing was confirmed, so the
			// watermark stays put and the next cycle refetches.
			e.gate.ReportFailure()
			res.Failed += len(ops)
			metrics.SyncCyclesTotal.WithLabelValues("error").Inc()
			return res, fmt.Errorf("bulk apply: %w", err)
		}
		for j, out := range outcomes {
			i := opRecIdx[j]
			rec := &records[i]
			if out.OK() {
				states[i] = stateApplied
				res.Applied++
				e.dead.Resolve(out.ID())
				metrics.SyncDocumentsTotal.WithLabelValues(ops[j].Kind.String(), "ok").Inc()
				continue
			}
			states[i] = stateFailed
			res.Failed++
			attempts := e.dead.RecordFailure(out.ID(), rec.Seq)
			metrics.SyncDocumentsTotal.WithLabelValues(ops[j].Kind.String(), "error").Inc()
			log.Warn("document rejected by index backend",
				zap.String("listing_id", out.ID()),
				zap.Uint64("seq", rec.Seq),
				zap.Int("attempts", attempts),
				zap.Error(out.Err()))
		}
	}

	// Advance past the contiguous prefix of resolved records only. Applied
	// records above the first failure are refetched next cycle; re-upserts
	// are idempotent, final write wins.
	next := checkpoint
	for i := range records {
		if states[i] == stateFailed {
			break
		}
		next = records[i].Seq
	}

	if next > checkpoint {
		if err := e.checkpoints.Advance(ctx, next); err != nil {
			metrics.SyncCyclesTotal.WithLabelValues("error").Inc()
			return res, fmt.Errorf("advance checkpoint to %d: %w", next, err)
		}
		res.NextCheckpoint = next
		metrics.SyncCheckpointSeq.Set(float64(next))
	}
	metrics.SyncDeadLetterSize.Set(float64(e.dead.Len()))
	metrics.SyncCyclesTotal.WithLabelValues("ok").Inc()

	log.Info("sync cycle complete",
		zap.Int("applied", res.Applied),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Uint64("checkpoint", res.NextCheckpoint))
	return res, nil
}
