package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gatherhub-io/gatherhub/internal/models"
)

const maxFeedBody = 8 << 20 // 8 MB

// JSONFeedAdapter fetches raw events from an HTTP endpoint returning a JSON
// array of raw event records. API-backed sources (as opposed to scraped
// pages) plug in through this adapter via configuration alone.
type JSONFeedAdapter struct {
	name   string
	url    string
	client *http.Client
}

// NewJSONFeedAdapter constructs an adapter for the given endpoint. A nil
// client falls back to http.DefaultClient; the runner's per-adapter deadline
// bounds the request either way.
func NewJSONFeedAdapter(name, url string, client *http.Client) *JSONFeedAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &JSONFeedAdapter{name: name, url: url, client: client}
}

// Name returns the source identifier stamped onto fetched records.
func (a *JSONFeedAdapter) Name() string {
	return a.name
}

// Fetch retrieves and decodes the feed. Records missing a source fall back to
// the adapter name.
func (a *JSONFeedAdapter) Fetch(ctx context.Context) ([]models.RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gatherhub/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", a.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", a.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var events []models.RawEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	for i := range events {
		if events[i].Source == "" {
			events[i].Source = a.name
		}
	}
	return events, nil
}

// StaticAdapter yields a fixed batch of raw events. Used by the seeder and in
// tests.
type StaticAdapter struct {
	name   string
	events []models.RawEvent
}

// NewStaticAdapter constructs an adapter that always returns the given batch.
func NewStaticAdapter(name string, events []models.RawEvent) *StaticAdapter {
	return &StaticAdapter{name: name, events: events}
}

// Name returns the adapter's source identifier.
func (a *StaticAdapter) Name() string { return a.name }

// Fetch returns the fixed batch.
func (a *StaticAdapter) Fetch(ctx context.Context) ([]models.RawEvent, error) {
	return a.events, nil
}
