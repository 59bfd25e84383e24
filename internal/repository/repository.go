package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gatherhub-io/gatherhub/internal/models"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrReminderNotFound = errors.New("reminder not found")
)

// EventRepository persists canonical events with find-or-create semantics
// keyed on the identity key. Existing rows are never overwritten.
type EventRepository interface {
	// UpsertEvents inserts each event unless its identity key already exists.
	// Failures are per-record: a failing row is counted as skipped and the
	// batch continues.
	UpsertEvents(ctx context.Context, events []models.Event) (saved, skipped int, err error)

	// ExistingIdentityKeys reports which of the given keys are already
	// present in the store.
	ExistingIdentityKeys(ctx context.Context, keys []string) (map[string]bool, error)

	// ListEvents returns all events ordered by date key ascending, with
	// undated events last.
	ListEvents(ctx context.Context) ([]models.Event, error)

	// ListEventsBySource returns the events of one source, same ordering.
	ListEventsBySource(ctx context.Context, source string) ([]models.Event, error)

	// SearchEvents applies the filter; absent bounds are unconstrained.
	SearchEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

// ReminderRepository persists device reminders. Every mutation runs inside a
// transaction; a failed mutation leaves no partial state.
type ReminderRepository interface {
	// SetReminder updates the active reminder for (deviceID, eventID) when
	// one exists, otherwise creates it. Returns the stored reminder and
	// whether it was created.
	SetReminder(ctx context.Context, r *models.Reminder) (*models.Reminder, bool, error)

	GetReminder(ctx context.Context, id string) (*models.Reminder, error)
	ListReminders(ctx context.Context, deviceID string, activeOnly bool) ([]models.Reminder, error)
	UpdateReminder(ctx context.Context, id string, req *models.UpdateReminderRequest) (*models.Reminder, error)
	DeactivateReminder(ctx context.Context, id string) error
	DeleteReminder(ctx context.Context, id string) error

	// ListDueReminders returns active, unsent reminders due within the
	// window starting now, ordered by reminder date ascending.
	ListDueReminders(ctx context.Context, window time.Duration) ([]models.Reminder, error)
}

// Repository combines event and reminder persistence.
type Repository interface {
	EventRepository
	ReminderRepository
	Close() error
}
