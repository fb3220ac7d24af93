package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Outcome classifies one cycle of a periodic job.
type Outcome string

const (
	// OutcomeOK means the cycle completed and produced its effect.
	OutcomeOK Outcome = "ok"
	// OutcomeSkipped means the cycle ran but had nothing to do.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the cycle aborted; prior state stands.
	OutcomeFailed Outcome = "failed"
)

// CycleResult is what a job cycle reports back to its runner.
type CycleResult struct {
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Job is one periodically-executed unit of work.
type Job interface {
	Name() string
	Run(ctx context.Context) CycleResult
}

// RunnerStats counts cycle outcomes since start.
type RunnerStats struct {
	Cycles  int64
	OK      int64
	Skipped int64
	Failed  int64
}

// Runner executes a Job immediately on start and then on a fixed
// interval until stopped. Cycle failures are logged and counted, never
// fatal.
type Runner struct {
	job      Job
	interval time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	stats RunnerStats
}

// NewRunner creates a runner for job at the given cadence.
func NewRunner(job Job, interval time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		job:      job,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the periodic loop. The first cycle runs before the
// first tick so a fresh process seeds its state immediately.
func (r *Runner) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.run()

	r.logger.Info("runner started",
		"job", r.job.Name(),
		"interval", r.interval,
	)
	return nil
}

// Stop cancels the loop and waits for the in-flight cycle.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("runner stopped", "job", r.job.Name())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the outcome counters.
func (r *Runner) Stats() RunnerStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *Runner) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.cycle()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.cycle()
		}
	}
}

func (r *Runner) cycle() {
	start := time.Now()
	res := r.job.Run(r.ctx)
	if res.Duration == 0 {
		res.Duration = time.Since(start)
	}

	r.mu.Lock()
	r.stats.Cycles++
	switch res.Outcome {
	case OutcomeOK:
		r.stats.OK++
	case OutcomeSkipped:
		r.stats.Skipped++
	case OutcomeFailed:
		r.stats.Failed++
	}
	r.mu.Unlock()

	switch res.Outcome {
	case OutcomeFailed:
		r.logger.Error("cycle failed",
			"job", r.job.Name(),
			"duration", res.Duration,
			"error", res.Err,
		)
	case OutcomeSkipped:
		r.logger.Debug("cycle skipped",
			"job", r.job.Name(),
			"duration", res.Duration,
		)
	default:
		r.logger.Debug("cycle complete",
			"job", r.job.Name(),
			"duration", res.Duration,
		)
	}
}
