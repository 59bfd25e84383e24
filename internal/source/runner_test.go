package source_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/models"
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

func TestFetchAll_IsolatesFailures(t *testing.T) {
	registry := source.NewRegistry(
		source.NewStaticAdapter("good", []models.RawEvent{
			{Title: "One", Source: "good"},
			{Title: "Two", Source: "good"},
		}),
		&funcAdapter{name: "broken", fetch: func(ctx context.Context) ([]models.RawEvent, error) {
			return nil, errors.New("upstream exploded")
		}},
		source.NewStaticAdapter("empty", nil),
	)

	runner := source.NewRunner(registry, time.Second, logging.Default())
	raw, failures := source.Collect(runner.FetchAll(context.Background()))

	assert.Equal(t, 1, failures)
	assert.Len(t, raw, 2)
}

func TestFetchAll_PreservesRegistrationOrder(t *testing.T) {
	registry := source.NewRegistry(
		source.NewStaticAdapter("a", []models.RawEvent{{Title: "A", Source: "a"}}),
		source.NewStaticAdapter("b", []models.RawEvent{{Title: "B", Source: "b"}}),
	)

	runner := source.NewRunner(registry, time.Second, logging.Default())
	results := runner.FetchAll(context.Background())

	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Adapter)
	assert.Equal(t, "b", results[1].Adapter)
}

func TestFetchAll_AbandonsHungAdapter(t *testing.T) {
	blocked := make(chan struct{})
	t.Cleanup(func() { close(blocked) })

	registry := source.NewRegistry(
		&funcAdapter{name: "hung", fetch: func(ctx context.Context) ([]models.RawEvent, error) {
			// Ignores its context entirely.
			<-blocked
			return nil, nil
		}},
		source.NewStaticAdapter("fast", []models.RawEvent{{Title: "Quick", Source: "fast"}}),
	)

	runner := source.NewRunner(registry, 50*time.Millisecond, logging.Default())

	start := time.Now()
	results := runner.FetchAll(context.Background())
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second, "fan-out must not wait for the hung adapter")
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.NoError(t, results[1].Err)

	raw, failures := source.Collect(results)
	assert.Equal(t, 1, failures)
	assert.Len(t, raw, 1)
}

func TestFetchAll_ContainsAdapterPanic(t *testing.T) {
	registry := source.NewRegistry(
		&funcAdapter{name: "panicky", fetch: func(ctx context.Context) ([]models.RawEvent, error) {
			panic("boom")
		}},
		source.NewStaticAdapter("calm", []models.RawEvent{{Title: "Still Here", Source: "calm"}}),
	)

	runner := source.NewRunner(registry, time.Second, logging.Default())
	results := runner.FetchAll(context.Background())

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
}

func TestJSONFeedAdapter_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"title":"Expo","dateRaw":"2026-07-23","source":"expo-feed"},
			{"title":"Unsourced","dateRaw":"2026-08-01"}
		]`))
	}))
	defer srv.Close()

	adapter := source.NewJSONFeedAdapter("fallback", srv.URL, srv.Client())
	events, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "expo-feed", events[0].Source)
	assert.Equal(t, "fallback", events[1].Source, "missing source falls back to adapter name")
}

func TestJSONFeedAdapter_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	adapter := source.NewJSONFeedAdapter("feed", srv.URL, srv.Client())
	_, err := adapter.Fetch(context.Background())
	assert.Error(t, err)
}

func TestJSONFeedAdapter_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	adapter := source.NewJSONFeedAdapter("feed", srv.URL, srv.Client())
	_, err := adapter.Fetch(context.Background())
	assert.Error(t, err)
}
