package models

import (
	"encoding/json"
	"time"
)

// Reminder associates a device with an event and a future notification time.
type Reminder struct {
	ID               string          `json:"id"`
	DeviceID         string          `json:"deviceId"`
	EventID          int64           `json:"eventId"`
	EventTitle       string          `json:"eventTitle"`
	ReminderDate     time.Time       `json:"reminderDate"`
	IsActive         bool            `json:"isActive"`
	NotificationSent bool            `json:"notificationSent"`
	ReminderData     json.RawMessage `json:"reminderData,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// SetReminderRequest is the payload for creating or replacing a reminder.
type SetReminderRequest struct {
	DeviceID     string          `json:"deviceId"`
	EventID      int64           `json:"eventId"`
	EventTitle   string          `json:"eventTitle"`
	ReminderDate string          `json:"reminderDate"`
	ReminderData json.RawMessage `json:"reminderData,omitempty"`
}

// UpdateReminderRequest carries the mutable reminder fields. Nil means
// "leave unchanged".
type UpdateReminderRequest struct {
	EventTitle   *string         `json:"eventTitle,omitempty"`
	ReminderDate *string         `json:"reminderDate,omitempty"`
	IsActive     *bool           `json:"isActive,omitempty"`
	ReminderData json.RawMessage `json:"reminderData,omitempty"`
}

// ReminderListResponse wraps a reminder listing with its count.
type ReminderListResponse struct {
	Count     int        `json:"count"`
	Reminders []Reminder `json:"reminders"`
}
