package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/metrics"
	"github.com/gatherhub-io/gatherhub/internal/models"
)

// Result is the outcome of one adapter invocation within a cycle.
type Result struct {
	Adapter string
	Events  []models.RawEvent
	Err     error
}

// Runner invokes every registered adapter concurrently with a per-adapter
// timeout. One adapter failing or timing out never affects the others.
type Runner struct {
	registry *Registry
	timeout  time.Duration
	logger   *logging.Logger
}

// NewRunner constructs a runner. timeout applies to each adapter
// individually, not to the fan-out as a whole.
func NewRunner(registry *Registry, timeout time.Duration, logger *logging.Logger) *Runner {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Runner{registry: registry, timeout: timeout, logger: logger}
}

// FetchAll runs all adapters and returns their settled results in
// registration order. It returns only when every adapter has either finished,
// failed, or been abandoned at its deadline.
func (r *Runner) FetchAll(ctx context.Context) []Result {
	adapters := r.registry.Adapters()
	results := make([]Result, len(adapters))

	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter Adapter) {
			defer wg.Done()
			results[i] = r.fetchOne(ctx, adapter)
		}(i, adapter)
	}
	wg.Wait()

	return results
}

// fetchOne invokes a single adapter under its own deadline. The adapter runs
// in a separate goroutine so that an implementation ignoring its context
// cannot stall the cycle past the deadline.
func (r *Runner) fetchOne(ctx context.Context, adapter Adapter) Result {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type outcome struct {
		events []models.RawEvent
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			// A panicking adapter must not take the whole cycle down.
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("adapter panicked: %v", rec)}
			}
		}()
		events, err := adapter.Fetch(fetchCtx)
		done <- outcome{events: events, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			metrics.AdapterFetchesTotal.WithLabelValues(adapter.Name(), "error").Inc()
			r.logger.Warn("source adapter failed",
				"adapter", adapter.Name(), "error", out.err)
			return Result{Adapter: adapter.Name(), Err: out.err}
		}
		metrics.AdapterFetchesTotal.WithLabelValues(adapter.Name(), "ok").Inc()
		metrics.RawEventsTotal.Add(float64(len(out.events)))
		return Result{Adapter: adapter.Name(), Events: out.events}
	case <-fetchCtx.Done():
		metrics.AdapterFetchesTotal.WithLabelValues(adapter.Name(), "timeout").Inc()
		r.logger.Warn("source adapter abandoned at deadline",
			"adapter", adapter.Name(), "timeout", r.timeout)
		return Result{Adapter: adapter.Name(), Err: fetchCtx.Err()}
	}
}

// Collect concatenates the raw events of all successful results, preserving
// adapter registration order, and returns the number of failed adapters.
func Collect(results []Result) ([]models.RawEvent, int) {
	var all []models.RawEvent
	failures := 0
	for _, res := range results {
		if res.Err != nil {
			failures++
			continue
		}
		all = append(all, res.Events...)
	}
	return all, failures
}
