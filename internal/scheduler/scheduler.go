// Package scheduler provides periodic execution of ingestion cycles.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/pipeline"
)

// Scheduler triggers an ingestion cycle at a fixed interval. A trigger that
// lands while a cycle is still running is skipped, not queued.
type Scheduler struct {
	runner     *pipeline.Runner
	interval   time.Duration
	runOnStart bool
	logger     *logging.Logger
	stop       chan struct{}
	stopped    chan struct{}
}

// NewScheduler creates an ingestion scheduler.
func NewScheduler(runner *pipeline.Runner, interval time.Duration, runOnStart bool, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger,
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Start begins the scheduler loop. This should be called in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	defer close(s.stopped)

	s.logger.Info("ingestion scheduler started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.runOnStart {
		s.runCycle(ctx)
	}

	for {
		select {
		case <-ticker.C:
			s.runCycle(ctx)
		case <-s.stop:
			s.logger.Info("ingestion scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("ingestion scheduler context cancelled")
			return
		}
	}
}

// Stop signals the scheduler to stop and waits for the loop to finish.
// In-flight cycles are not interrupted.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.stopped
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if _, err := s.runner.RunCycle(ctx); err != nil {
		if errors.Is(err, pipeline.ErrCycleInProgress) {
			s.logger.InfoContext(ctx, "skipping scheduled cycle, previous cycle still running")
			return
		}
		s.logger.ErrorContext(ctx, "scheduled ingestion cycle failed", "error", err)
	}
}
