package handlers

import (
	"net/http"
	"time"

	"github.com/gatherhub-io/gatherhub/internal/httputil"
	"github.com/gatherhub-io/gatherhub/internal/models"
)

// ListEvents handles GET /api/v1/events. An optional ?source= parameter
// restricts the feed to a single source; the unfiltered feed is served
// from the cache when possible.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var (
		events []models.Event
		err    error
	)
	if src := r.URL.Query().Get("source"); src != "" {
		events, err = h.events.BySource(r.Context(), src)
	} else {
		events, err = h.events.Latest(r.Context())
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list events", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.EventListResponse{Count: len(events), Events: events})
}

// SearchEvents handles GET /api/v1/events/search with search, from_date,
// to_date, min_price and max_price parameters. Invalid bounds are ignored
// rather than rejected.
func (h *Handler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	filter := models.EventFilter{
		Search:   q.Get("search"),
		FromDate: parseDateParam(q.Get("from_date")),
		ToDate:   parseDateParam(q.Get("to_date")),
		MinPrice: httputil.ParseFloatParam(q.Get("min_price")),
		MaxPrice: httputil.ParseFloatParam(q.Get("max_price")),
	}

	events, err := h.events.Search(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "event search failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "event search failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.EventListResponse{Count: len(events), Events: events})
}

func parseDateParam(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		t = t.UTC()
		return &t
	}
	return nil
}
