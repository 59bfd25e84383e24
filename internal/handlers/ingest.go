package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gatherhub-io/gatherhub/internal/httputil"
	"github.com/gatherhub-io/gatherhub/internal/pipeline"
)

// TriggerIngest handles POST /api/v1/ingest/run. The cycle runs in the
// background; the response only reports whether it was accepted. A cycle
// already in progress yields 409.
func (h *Handler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.ingest.Running() {
		httputil.WriteError(w, http.StatusConflict, "ingestion cycle already in progress")
		return
	}

	go func() {
		// Detached from the request: the cycle outlives the HTTP response.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := h.ingest.RunCycle(ctx); err != nil && !errors.Is(err, pipeline.ErrCycleInProgress) {
			h.logger.Error("manual ingestion cycle failed", "error", err)
		}
	}()

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}
