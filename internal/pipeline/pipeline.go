// Package pipeline runs the ingestion cycle: fetch raw events from every
// registered source, normalize and deduplicate them, persist the new ones,
// refresh the cached feed, and announce the delta to live subscribers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gatherhub-io/gatherhub/internal/cache"
	"github.com/gatherhub-io/gatherhub/internal/dedup"
	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/metrics"
	"github.com/gatherhub-io/gatherhub/internal/models"
	"github.com/gatherhub-io/gatherhub/internal/normalizer"
	"github.com/gatherhub-io/gatherhub/internal/repository"
	"github.com/gatherhub-io/gatherhub/internal/source"
)

// ErrCycleInProgress is returned when a cycle is requested while another
// one is still running. Callers treat it as a benign skip.
var ErrCycleInProgress = errors.New("ingestion cycle already in progress")

// Distributor receives the batch of events stored for the first time in a
// cycle. Implementations must not block.
type Distributor interface {
	EmitNewEvents(events []models.Event)
}

// CycleResult summarizes one ingestion cycle.
type CycleResult struct {
	Fetched    int           `json:"fetched"`
	Failures   int           `json:"failures"`
	Normalized int           `json:"normalized"`
	Rejected   int           `json:"rejected"`
	Deduped    int           `json:"deduped"`
	Saved      int           `json:"saved"`
	Skipped    int           `json:"skipped"`
	New        int           `json:"new"`
	Duration   time.Duration `json:"-"`
}

// Runner owns the ingestion cycle. At most one cycle runs at a time; the
// running flag is claimed with a compare-and-swap so concurrent triggers
// from the scheduler and the manual endpoint cannot overlap.
type Runner struct {
	sources     *source.Runner
	repo        repository.EventRepository
	feedCache   *cache.FeedCache
	distributor Distributor
	logger      *logging.Logger
	running     atomic.Bool
}

// NewRunner wires the cycle stages together. distributor may be nil when no
// live push surface is configured.
func NewRunner(sources *source.Runner, repo repository.EventRepository, feedCache *cache.FeedCache, distributor Distributor, logger *logging.Logger) *Runner {
	return &Runner{
		sources:     sources,
		repo:        repo,
		feedCache:   feedCache,
		distributor: distributor,
		logger:      logger,
	}
}

// Running reports whether a cycle is currently executing.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// RunCycle executes one full ingestion cycle. It returns ErrCycleInProgress
// without doing any work when another cycle holds the flag.
func (r *Runner) RunCycle(ctx context.Context) (result *CycleResult, err error) {
	if !r.running.CompareAndSwap(false, true) {
		metrics.CyclesTotal.WithLabelValues("skipped").Inc()
		return nil, ErrCycleInProgress
	}
	defer r.running.Store(false)

	start := time.Now()
	defer func() {
		// A panicking adapter or stage must not leave the flag stuck or
		// take the process down with it.
		if rec := recover(); rec != nil {
			metrics.CyclesTotal.WithLabelValues("error").Inc()
			r.logger.ErrorContext(ctx, "ingestion cycle panicked", "panic", rec)
			result, err = nil, fmt.Errorf("ingestion cycle panicked: %v", rec)
		}
	}()

	r.logger.InfoContext(ctx, "ingestion cycle started")

	res := &CycleResult{}

	raw, failures := source.Collect(r.sources.FetchAll(ctx))
	res.Fetched = len(raw)
	res.Failures = failures

	events, rejected := normalizer.NormalizeBatch(raw)
	res.Normalized = len(events)
	res.Rejected = rejected
	metrics.EventsNormalizedTotal.Add(float64(len(events)))
	metrics.EventsRejectedTotal.Add(float64(rejected))

	batch := dedup.Batch(events)
	res.Deduped = len(events) - len(batch)

	existing, err := r.repo.ExistingIdentityKeys(ctx, dedup.Keys(batch))
	if err != nil {
		metrics.CyclesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("checking existing events: %w", err)
	}
	fresh := dedup.NewSince(batch, existing)

	saved, skipped, err := r.repo.UpsertEvents(ctx, batch)
	if err != nil {
		metrics.CyclesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("storing events: %w", err)
	}
	res.Saved = saved
	res.Skipped = skipped
	res.New = len(fresh)
	metrics.EventsSavedTotal.Add(float64(saved))
	metrics.EventsSkippedTotal.Add(float64(skipped))

	r.refreshCache(ctx)

	if r.distributor != nil && len(fresh) > 0 {
		r.distributor.EmitNewEvents(fresh)
	}

	res.Duration = time.Since(start)
	metrics.CyclesTotal.WithLabelValues("success").Inc()
	metrics.CycleDuration.Observe(res.Duration.Seconds())
	r.logger.InfoContext(ctx, "ingestion cycle completed",
		"fetched", res.Fetched,
		"failures", res.Failures,
		"normalized", res.Normalized,
		"rejected", res.Rejected,
		"saved", res.Saved,
		"skipped", res.Skipped,
		"new", res.New,
		"duration", res.Duration.String(),
	)
	return res, nil
}

// refreshCache rebuilds the feed snapshot from the store. The cycle has
// already persisted its events, so a cache failure only costs freshness.
func (r *Runner) refreshCache(ctx context.Context) {
	if r.feedCache == nil {
		return
	}
	events, err := r.repo.ListEvents(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "feed reload for cache refresh failed", "error", err)
		return
	}
	if err := r.feedCache.Set(ctx, events); err != nil {
		r.logger.WarnContext(ctx, "feed cache refresh failed", "error", err)
	}
}
