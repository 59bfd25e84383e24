// Package service implements the business logic between HTTP handlers and
// the store, cache, and reminder repositories.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherhub-io/gatherhub/internal/cache"
	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/models"
	"github.com/gatherhub-io/gatherhub/internal/repository"
)

// EventService serves the event feed, preferring the cache snapshot and
// falling back to the store.
type EventService struct {
	repo      repository.EventRepository
	feedCache *cache.FeedCache
	logger    *logging.Logger
}

// NewEventService creates an event service. feedCache may be nil.
func NewEventService(repo repository.EventRepository, feedCache *cache.FeedCache, logger *logging.Logger) *EventService {
	return &EventService{repo: repo, feedCache: feedCache, logger: logger}
}

// Latest returns the full feed. Cache hits skip the store; on a miss the
// store result repopulates the cache best-effort.
func (s *EventService) Latest(ctx context.Context) ([]models.Event, error) {
	if s.feedCache != nil {
		events, err := s.feedCache.Get(ctx)
		if err == nil {
			return events, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "feed cache read failed", "error", err)
		}
	}

	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	if s.feedCache != nil {
		if err := s.feedCache.Set(ctx, events); err != nil {
			s.logger.WarnContext(ctx, "feed cache populate failed", "error", err)
		}
	}
	return events, nil
}

// BySource returns one source's events, always from the store.
func (s *EventService) BySource(ctx context.Context, source string) ([]models.Event, error) {
	events, err := s.repo.ListEventsBySource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("listing events for source %q: %w", source, err)
	}
	return events, nil
}

// Search filters stored events by text, date range, and price range.
func (s *EventService) Search(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	events, err := s.repo.SearchEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("searching events: %w", err)
	}
	return events, nil
}
