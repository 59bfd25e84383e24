// Package handlers provides the HTTP request handlers for the event API.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gatherhub-io/gatherhub/internal/httputil"
	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/pipeline"
	"github.com/gatherhub-io/gatherhub/internal/service"
)

// Handler provides HTTP handlers for the event and reminder API.
type Handler struct {
	events    *service.EventService
	reminders *service.ReminderService
	ingest    *pipeline.Runner
	logger    *logging.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(events *service.EventService, reminders *service.ReminderService, ingest *pipeline.Runner, logger *logging.Logger) *Handler {
	return &Handler{
		events:    events,
		reminders: reminders,
		ingest:    ingest,
		logger:    logger,
	}
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "gatherhub",
	})
}

// extractIDFromPath extracts an ID from a URL path like /api/v1/reminders/{id}.
func extractIDFromPath(path, prefix string) string {
	remaining := strings.TrimPrefix(path, prefix)
	remaining = strings.TrimPrefix(remaining, "/")

	parts := strings.Split(remaining, "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}
