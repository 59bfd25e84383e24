// Package server provides HTTP server setup for the event API.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatherhub-io/gatherhub/internal/handlers"
	"github.com/gatherhub-io/gatherhub/internal/middleware"
	"github.com/gatherhub-io/gatherhub/internal/ws"
)

// NewRouter constructs a ServeMux with all API routes registered.
// hub may be nil when the socket surface is disabled.
func NewRouter(h *handlers.Handler, hub *ws.Hub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	// Event routes
	mux.HandleFunc("/api/v1/events", h.ListEvents)
	mux.HandleFunc("/api/v1/events/search", h.SearchEvents)

	// Ingestion trigger
	mux.HandleFunc("/api/v1/ingest/run", h.TriggerIngest)

	// Reminder routes
	mux.HandleFunc("/api/v1/reminders", h.Reminders)
	mux.HandleFunc("/api/v1/reminders/", h.Reminders)

	// Live event feed
	if hub != nil {
		mux.HandleFunc("/ws", ws.Handler(hub))
	}

	return middleware.RequestID(middleware.CORS(middleware.DefaultCORSConfig())(mux))
}
