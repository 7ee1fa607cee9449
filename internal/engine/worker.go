package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gridpulse/csgstat/internal/model"
)

// CycleStats is the worker's view of recent cycle history, consumed by the
// health surface.
type CycleStats struct {
	CyclesTotal         int         `json:"cycles_total"`
	CyclesFailed        int         `json:"cycles_failed"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	LastSuccess         time.Time   `json:"last_success"`
	LastFailure         time.Time   `json:"last_failure"`
	LastFailureKind     FailureKind `json:"last_failure_kind,omitempty"`
	LastFailureReason   string      `json:"last_failure_reason,omitempty"`
}

// Worker owns all cycle execution for one engine. Cycles run on a periodic
// tick or an on-demand trigger, strictly one at a time: both tick and
// trigger land in the same select loop, and a trigger arriving mid-cycle
// coalesces into at most one pending run. The last successful snapshot map
// is retained across failed cycles and published atomically.
type Worker struct {
	engine   *Engine
	log      *zap.Logger
	trigger  chan struct{}
	interval chan time.Duration

	mu       sync.RWMutex
	latest   model.Snapshots
	latestAt time.Time
	hasData  bool
	stats    CycleStats
}

// NewWorker creates a worker for the engine.
func NewWorker(e *Engine, opts ...WorkerOption) *Worker {
	w := &Worker{
		engine:   e,
		log:      zap.L(),
		trigger:  make(chan struct{}, 1),
		interval: make(chan time.Duration, 1),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// WorkerOption configures the worker.
type WorkerOption func(*Worker)

// WithWorkerLogger overrides the global zap logger.
func WithWorkerLogger(log *zap.Logger) WorkerOption {
	return func(w *Worker) { w.log = log }
}

// Run executes cycles until ctx is cancelled: one immediately, then one
// per interval tick or trigger. It never returns a cycle failure; failed
// cycles are recorded in the stats and retried on the next tick.
func (w *Worker) Run(ctx context.Context, interval time.Duration) error {
	w.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-w.interval:
			w.log.Info("refresh interval changed", zap.Duration("interval", d))
			ticker.Reset(d)
		case <-ticker.C:
			w.runOnce(ctx)
		case <-w.trigger:
			w.runOnce(ctx)
		}
	}
}

// Trigger requests an on-demand cycle. Safe from any goroutine; a trigger
// arriving while a run is already pending or in flight is coalesced.
func (w *Worker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// SetInterval reconfigures the tick interval between cycles.
func (w *Worker) SetInterval(d time.Duration) {
	select {
	case w.interval <- d:
	default:
	}
}

// RunOnce executes a single cycle synchronously and returns its result.
// Used by the one-shot collect path; the periodic loop uses the same
// underlying publication.
func (w *Worker) RunOnce(ctx context.Context) (model.Snapshots, error) {
	return w.runOnce(ctx)
}

func (w *Worker) runOnce(ctx context.Context) (model.Snapshots, error) {
	snaps, err := w.engine.RunCycle(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.CyclesTotal++
	if err != nil {
		w.stats.CyclesFailed++
		w.stats.ConsecutiveFailures++
		w.stats.LastFailure = time.Now()
		if ce := classifyCycleErr(err); ce != nil {
			w.stats.LastFailureKind = ce.Kind
			w.stats.LastFailureReason = ce.Reason
		}
		return nil, err
	}
	w.stats.ConsecutiveFailures = 0
	w.stats.LastSuccess = time.Now()
	w.latest = snaps
	w.latestAt = time.Now()
	w.hasData = true
	return snaps, nil
}

// Latest returns the last successfully published snapshot map, its
// publication time, and whether any cycle has succeeded yet.
func (w *Worker) Latest() (model.Snapshots, time.Time, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest, w.latestAt, w.hasData
}

// Stats returns the worker's cycle history.
func (w *Worker) Stats() CycleStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}
