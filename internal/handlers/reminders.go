package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gatherhub-io/gatherhub/internal/httputil"
	"github.com/gatherhub-io/gatherhub/internal/models"
	"github.com/gatherhub-io/gatherhub/internal/repository"
	"github.com/gatherhub-io/gatherhub/internal/service"
)

const remindersPrefix = "/api/v1/reminders"

// Reminders dispatches the reminder routes:
//
//	POST   /api/v1/reminders                    create or replace
//	GET    /api/v1/reminders/due                reminders due soon
//	GET    /api/v1/reminders/device/{deviceID}  list a device's reminders
//	GET    /api/v1/reminders/{id}               fetch one
//	PUT    /api/v1/reminders/{id}               update fields
//	POST   /api/v1/reminders/{id}/deactivate    mark inactive
//	DELETE /api/v1/reminders/{id}               delete
func (h *Handler) Reminders(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, remindersPrefix), "/")

	switch {
	case rest == "":
		h.setReminder(w, r)
	case rest == "due":
		h.dueReminders(w, r)
	case strings.HasPrefix(rest, "device/"):
		h.listReminders(w, r, strings.TrimPrefix(rest, "device/"))
	case strings.HasSuffix(rest, "/deactivate"):
		h.deactivateReminder(w, r, strings.TrimSuffix(rest, "/deactivate"))
	default:
		h.reminderByID(w, r, rest)
	}
}

func (h *Handler) setReminder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.SetReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reminder, created, err := h.reminders.Set(r.Context(), &req)
	if err != nil {
		h.writeReminderError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, reminder)
}

func (h *Handler) dueReminders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	minutes := httputil.ParseIntParam(r.URL.Query().Get("minutes"), 60)
	if minutes <= 0 {
		minutes = 60
	}
	window := time.Duration(minutes) * time.Minute

	resp, err := h.reminders.Due(r.Context(), window)
	if err != nil {
		h.writeReminderError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) listReminders(w http.ResponseWriter, r *http.Request, deviceID string) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	activeOnly := httputil.ParseBoolParam(r.URL.Query().Get("active_only"), true)
	resp, err := h.reminders.List(r.Context(), deviceID, activeOnly)
	if err != nil {
		h.writeReminderError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) reminderByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		reminder, err := h.reminders.Get(r.Context(), id)
		if err != nil {
			h.writeReminderError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, reminder)

	case http.MethodPut:
		var req models.UpdateReminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		reminder, err := h.reminders.Update(r.Context(), id, &req)
		if err != nil {
			h.writeReminderError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, reminder)

	case http.MethodDelete:
		if err := h.reminders.Delete(r.Context(), id); err != nil {
			h.writeReminderError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) deactivateReminder(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := h.reminders.Deactivate(r.Context(), id); err != nil {
		h.writeReminderError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) writeReminderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrReminderNotFound):
		httputil.WriteError(w, http.StatusNotFound, "reminder not found")
	default:
		h.logger.ErrorContext(r.Context(), "reminder request failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
