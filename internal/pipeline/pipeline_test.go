package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhub-io/gatherhub/internal/cache"
	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/models"
	"github.com/gatherhub-io/gatherhub/internal/pipeline"
	"github.com/gatherhub-io/gatherhub/internal/repository"
	"github.com/gatherhub-io/gatherhub/internal/source"
)

type funcAdapter struct {
	name  string
	fetch func(ctx context.Context) ([]models.RawEvent, error)
}

func (a *funcAdapter) Name() string { return a.name }

func (a *funcAdapter) Fetch(ctx context.Context) ([]models.RawEvent, error) {
	return a.fetch(ctx)
}

type captureDistributor struct {
	mu      sync.Mutex
	batches [][]models.Event
}

func (d *captureDistributor) EmitNewEvents(events []models.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, events)
}

func (d *captureDistributor) emitted() [][]models.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]models.Event(nil), d.batches...)
}

func newTestCache(t *testing.T) *cache.FeedCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewFeedCache(client, time.Hour)
}

func mixedRegistry() *source.Registry {
	return source.NewRegistry(
		source.NewStaticAdapter("good", []models.RawEvent{
			{Title: "Jazz Evening", DateRaw: "2026-09-10", Link: "https://g.example.com/1", Source: "good"},
			{Title: "Tech Expo", DateRaw: "2026-10-05", Link: "https://g.example.com/2", Source: "good"},
			{Title: "Street Market", Link: "https://g.example.com/3", Source: "good"},
		}),
		&funcAdapter{name: "broken", fetch: func(ctx context.Context) ([]models.RawEvent, error) {
			return nil, errors.New("scrape failed")
		}},
		source.NewStaticAdapter("untitled", []models.RawEvent{
			{Title: "   ", Link: "https://u.example.com/1", Source: "untitled"},
		}),
	)
}

func TestRunCycle_MixedSources(t *testing.T) {
	repo := repository.NewMemoryRepository()
	feedCache := newTestCache(t)
	dist := &captureDistributor{}
	logger := logging.Default()

	sources := source.NewRunner(mixedRegistry(), time.Second, logger)
	runner := pipeline.NewRunner(sources, repo, feedCache, dist, logger)

	result, err := runner.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Fetched)
	assert.Equal(t, 1, result.Failures)
	assert.Equal(t, 3, result.Normalized)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, 3, result.Saved)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 3, result.New)

	stored, err := repo.ListEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	cached, err := feedCache.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 3)

	batches := dist.emitted()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 3)
}

func TestRunCycle_RerunEmitsNothingNew(t *testing.T) {
	repo := repository.NewMemoryRepository()
	feedCache := newTestCache(t)
	dist := &captureDistributor{}
	logger := logging.Default()

	sources := source.NewRunner(mixedRegistry(), time.Second, logger)
	runner := pipeline.NewRunner(sources, repo, feedCache, dist, logger)

	_, err := runner.RunCycle(context.Background())
	require.NoError(t, err)

	result, err := runner.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Saved)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 0, result.New)
	assert.Len(t, dist.emitted(), 1, "no broadcast when nothing is new")

	// The cache is still refreshed even on an all-duplicate cycle.
	cached, err := feedCache.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 3)
}

func TestRunCycle_BatchDuplicatesCollapse(t *testing.T) {
	repo := repository.NewMemoryRepository()
	logger := logging.Default()

	registry := source.NewRegistry(
		source.NewStaticAdapter("a", []models.RawEvent{
			{Title: "Same Event", Link: "https://shared.example.com/1", Source: "a"},
		}),
		source.NewStaticAdapter("b", []models.RawEvent{
			{Title: "Same Event mirrored", Link: "https://shared.example.com/1", Source: "b"},
		}),
	)
	sources := source.NewRunner(registry, time.Second, logger)
	runner := pipeline.NewRunner(sources, repo, nil, nil, logger)

	result, err := runner.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deduped)
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, 1, result.New)
}

func TestRunCycle_SingleFlight(t *testing.T) {
	repo := repository.NewMemoryRepository()
	logger := logging.Default()

	release := make(chan struct{})
	started := make(chan struct{})
	registry := source.NewRegistry(&funcAdapter{name: "slow", fetch: func(ctx context.Context) ([]models.RawEvent, error) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, nil
	}})
	sources := source.NewRunner(registry, 5*time.Second, logger)
	runner := pipeline.NewRunner(sources, repo, nil, nil, logger)

	done := make(chan error, 1)
	go func() {
		_, err := runner.RunCycle(context.Background())
		done <- err
	}()

	<-started
	assert.True(t, runner.Running())

	_, err := runner.RunCycle(context.Background())
	assert.ErrorIs(t, err, pipeline.ErrCycleInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, runner.Running())

	// The flag is released, so the next cycle proceeds.
	_, err = runner.RunCycle(context.Background())
	assert.NoError(t, err)
}

func TestRunCycle_PanickingAdapterIsContained(t *testing.T) {
	repo := repository.NewMemoryRepository()
	logger := logging.Default()

	calls := 0
	registry := source.NewRegistry(&funcAdapter{name: "flaky", fetch: func(ctx context.Context) ([]models.RawEvent, error) {
		calls++
		if calls == 1 {
			panic("adapter blew up")
		}
		return []models.RawEvent{{Title: "Recovered", Link: "https://f.example.com/1", Source: "flaky"}}, nil
	}})
	sources := source.NewRunner(registry, time.Second, logger)
	runner := pipeline.NewRunner(sources, repo, nil, nil, logger)

	result, err := runner.RunCycle(context.Background())
	require.NoError(t, err, "panic is contained as an adapter failure")
	assert.Equal(t, 1, result.Failures)
	assert.False(t, runner.Running())

	result, err = runner.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
}

func TestRunCycle_AllSourcesFailing(t *testing.T) {
	repo := repository.NewMemoryRepository()
	dist := &captureDistributor{}
	logger := logging.Default()

	registry := source.NewRegistry(&funcAdapter{name: "dead", fetch: func(ctx context.Context) ([]models.RawEvent, error) {
		return nil, errors.New("unreachable")
	}})
	sources := source.NewRunner(registry, time.Second, logger)
	runner := pipeline.NewRunner(sources, repo, nil, dist, logger)

	result, err := runner.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Fetched)
	assert.Equal(t, 1, result.Failures)
	assert.Equal(t, 0, result.Saved)
	assert.Empty(t, dist.emitted())
}
