package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gatherhub-io/gatherhub/internal/models"
	"github.com/gatherhub-io/gatherhub/internal/repository"
)

// ErrValidation wraps request validation failures so handlers can map them
// to a 400 response.
var ErrValidation = errors.New("validation failed")

// ReminderService manages device reminders for events.
type ReminderService struct {
	repo repository.ReminderRepository
}

// NewReminderService creates a reminder service.
func NewReminderService(repo repository.ReminderRepository) *ReminderService {
	return &ReminderService{repo: repo}
}

// Set creates a reminder, or replaces the existing active reminder for the
// same device and event. The returned bool is true when a new row was created.
func (s *ReminderService) Set(ctx context.Context, req *models.SetReminderRequest) (*models.Reminder, bool, error) {
	if req.DeviceID == "" {
		return nil, false, fmt.Errorf("%w: deviceId is required", ErrValidation)
	}
	if req.EventID <= 0 {
		return nil, false, fmt.Errorf("%w: eventId is required", ErrValidation)
	}
	if req.EventTitle == "" {
		return nil, false, fmt.Errorf("%w: eventTitle is required", ErrValidation)
	}
	when, err := time.Parse(time.RFC3339, req.ReminderDate)
	if err != nil {
		return nil, false, fmt.Errorf("%w: reminderDate must be RFC 3339", ErrValidation)
	}

	reminder := &models.Reminder{
		ID:           uuid.New().String(),
		DeviceID:     req.DeviceID,
		EventID:      req.EventID,
		EventTitle:   req.EventTitle,
		ReminderDate: when,
		IsActive:     true,
		ReminderData: req.ReminderData,
	}
	return s.repo.SetReminder(ctx, reminder)
}

// Get retrieves a reminder by id.
func (s *ReminderService) Get(ctx context.Context, id string) (*models.Reminder, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: reminder id is required", ErrValidation)
	}
	return s.repo.GetReminder(ctx, id)
}

// List returns a device's reminders.
func (s *ReminderService) List(ctx context.Context, deviceID string, activeOnly bool) (*models.ReminderListResponse, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("%w: deviceId is required", ErrValidation)
	}
	reminders, err := s.repo.ListReminders(ctx, deviceID, activeOnly)
	if err != nil {
		return nil, err
	}
	return &models.ReminderListResponse{Count: len(reminders), Reminders: reminders}, nil
}

// Update applies the non-nil fields of req to an existing reminder.
func (s *ReminderService) Update(ctx context.Context, id string, req *models.UpdateReminderRequest) (*models.Reminder, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: reminder id is required", ErrValidation)
	}
	if req.EventTitle == nil && req.ReminderDate == nil && req.IsActive == nil && req.ReminderData == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if req.ReminderDate != nil {
		if _, err := time.Parse(time.RFC3339, *req.ReminderDate); err != nil {
			return nil, fmt.Errorf("%w: reminderDate must be RFC 3339", ErrValidation)
		}
	}
	return s.repo.UpdateReminder(ctx, id, req)
}

// Deactivate marks a reminder inactive without deleting it.
func (s *ReminderService) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: reminder id is required", ErrValidation)
	}
	return s.repo.DeactivateReminder(ctx, id)
}

// Delete removes a reminder permanently.
func (s *ReminderService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: reminder id is required", ErrValidation)
	}
	return s.repo.DeleteReminder(ctx, id)
}

// Due returns active, unsent reminders falling due within the window.
func (s *ReminderService) Due(ctx context.Context, window time.Duration) (*models.ReminderListResponse, error) {
	if window <= 0 {
		window = 24 * time.Hour
	}
	reminders, err := s.repo.ListDueReminders(ctx, window)
	if err != nil {
		return nil, err
	}
	return &models.ReminderListResponse{Count: len(reminders), Reminders: reminders}, nil
}
