package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// decayRunTimeout bounds one decay pass so a stuck pass cannot block the loop.
const decayRunTimeout = 5 * time.Minute

// Worker periodically decays risk scores of sponsors with no recent signal
// activity. It only touches signal-quiet sponsors, so it is safe to run
// alongside live scoring.
type Worker struct {
	decay        DecayService
	logger       *zap.Logger
	interval     time.Duration
	lookbackDays int
	decayPercent int
	done         chan struct{}
}

// NewWorker creates a new decay worker
func NewWorker(decay DecayService, logger *zap.Logger, interval time.Duration, lookbackDays, decayPercent int) *Worker {
	return &Worker{
		decay:        decay,
		logger:       logger,
		interval:     interval,
		lookbackDays: lookbackDays,
		decayPercent: decayPercent,
		done:         make(chan struct{}),
	}
}

// Start runs the decay loop until the context is cancelled or Stop is called.
// The first pass runs immediately.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("decay worker started",
		zap.Duration("interval", w.interval),
		zap.Int("lookback_days", w.lookbackDays),
		zap.Int("decay_percent", w.decayPercent))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("decay worker stopping: context cancelled")
			return
		case <-w.done:
			w.logger.Info("decay worker stopping")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// Stop signals the worker to exit. Call at most once.
func (w *Worker) Stop() {
	close(w.done)
}

// runOnce executes a single decay pass. Failures are logged and the loop
// continues; one bad pass must not stop future ones.
func (w *Worker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, decayRunTimeout)
	defer cancel()

	decayed, err := w.decay.ApplyDecay(runCtx, w.lookbackDays, w.decayPercent)
	if err != nil {
		w.logger.Error("decay pass failed", zap.Error(err))
		return
	}

	if decayed > 0 {
		w.logger.Info("decay pass complete", zap.Int("sponsors_decayed", decayed))
	}
}
