package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/models"
	"github.com/gatherhub-io/gatherhub/internal/pipeline"
	"github.com/gatherhub-io/gatherhub/internal/repository"
	"github.com/gatherhub-io/gatherhub/internal/scheduler"
	"github.com/gatherhub-io/gatherhub/internal/source"
)

type countingAdapter struct {
	calls atomic.Int64
}

func (a *countingAdapter) Name() string { return "counting" }

func (a *countingAdapter) Fetch(ctx context.Context) ([]models.RawEvent, error) {
	a.calls.Add(1)
	return []models.RawEvent{{Title: "Tick", Link: "https://t.example.com/1", Source: "counting"}}, nil
}

func newRunner(adapter source.Adapter) *pipeline.Runner {
	logger := logging.Default()
	sources := source.NewRunner(source.NewRegistry(adapter), time.Second, logger)
	return pipeline.NewRunner(sources, repository.NewMemoryRepository(), nil, nil, logger)
}

func TestScheduler_RunsOnStart(t *testing.T) {
	adapter := &countingAdapter{}
	sched := scheduler.NewScheduler(newRunner(adapter), time.Hour, true, logging.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Start(ctx)
	defer sched.Stop()

	require.Eventually(t, func() bool {
		return adapter.calls.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_SkipsImmediateRunWhenDisabled(t *testing.T) {
	adapter := &countingAdapter{}
	sched := scheduler.NewScheduler(newRunner(adapter), time.Hour, false, logging.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Start(ctx)
	defer sched.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, adapter.calls.Load())
}

func TestScheduler_TicksOnInterval(t *testing.T) {
	adapter := &countingAdapter{}
	sched := scheduler.NewScheduler(newRunner(adapter), 30*time.Millisecond, false, logging.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Start(ctx)
	defer sched.Stop()

	require.Eventually(t, func() bool {
		return adapter.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_StopHalts(t *testing.T) {
	adapter := &countingAdapter{}
	sched := scheduler.NewScheduler(newRunner(adapter), 20*time.Millisecond, false, logging.Default())

	go sched.Start(context.Background())

	require.Eventually(t, func() bool {
		return adapter.calls.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	sched.Stop()
	settled := adapter.calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, adapter.calls.Load())
}
