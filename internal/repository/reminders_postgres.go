package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gatherhub-io/gatherhub/internal/models"
)

const reminderColumns = `id, device_id, event_id, event_title, reminder_date, is_active, notification_sent, reminder_data, created_at, updated_at`

// SetReminder updates the active reminder for (deviceID, eventID) or creates
// one. The whole mutation runs in a transaction.
func (r *PostgresRepository) SetReminder(ctx context.Context, reminder *models.Reminder) (*models.Reminder, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var existingID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM reminders
		WHERE device_id = $1 AND event_id = $2 AND is_active
		FOR UPDATE
	`, reminder.DeviceID, reminder.EventID).Scan(&existingID)

	created := false
	switch {
	case err == nil:
		_, err = tx.Exec(ctx, `
			UPDATE reminders
			SET event_title = $1, reminder_date = $2, reminder_data = $3, updated_at = now()
			WHERE id = $4
		`, reminder.EventTitle, reminder.ReminderDate, reminder.ReminderData, existingID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to update reminder: %w", err)
		}
		reminder.ID = existingID
	case errors.Is(err, pgx.ErrNoRows):
		created = true
		_, err = tx.Exec(ctx, `
			INSERT INTO reminders (id, device_id, event_id, event_title, reminder_date, reminder_data)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, reminder.ID, reminder.DeviceID, reminder.EventID, reminder.EventTitle,
			reminder.ReminderDate, reminder.ReminderData)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create reminder: %w", err)
		}
	default:
		return nil, false, fmt.Errorf("failed to look up reminder: %w", err)
	}

	stored := &models.Reminder{}
	err = tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM reminders WHERE id = $1`, reminderColumns), reminder.ID).Scan(
		&stored.ID, &stored.DeviceID, &stored.EventID, &stored.EventTitle,
		&stored.ReminderDate, &stored.IsActive, &stored.NotificationSent,
		&stored.ReminderData, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read back reminder: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit reminder: %w", err)
	}

	return stored, created, nil
}

// GetReminder retrieves a reminder by id.
func (r *PostgresRepository) GetReminder(ctx context.Context, id string) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	err := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM reminders WHERE id = $1`, reminderColumns), id).Scan(
		&reminder.ID, &reminder.DeviceID, &reminder.EventID, &reminder.EventTitle,
		&reminder.ReminderDate, &reminder.IsActive, &reminder.NotificationSent,
		&reminder.ReminderData, &reminder.CreatedAt, &reminder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return reminder, nil
}

// ListReminders returns a device's reminders ordered by reminder date.
func (r *PostgresRepository) ListReminders(ctx context.Context, deviceID string, activeOnly bool) ([]models.Reminder, error) {
	query := fmt.Sprintf(`SELECT %s FROM reminders WHERE device_id = $1`, reminderColumns)
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY reminder_date ASC`

	rows, err := r.pool.Query(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

// UpdateReminder applies the non-nil fields of req inside a transaction.
func (r *PostgresRepository) UpdateReminder(ctx context.Context, id string, req *models.UpdateReminderRequest) (*models.Reminder, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	setClauses := []string{"updated_at = now()"}
	args := []interface{}{}
	argPos := 1

	if req.EventTitle != nil {
		setClauses = append(setClauses, fmt.Sprintf("event_title = $%d", argPos))
		args = append(args, *req.EventTitle)
		argPos++
	}
	if req.ReminderDate != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ReminderDate)
		if err != nil {
			return nil, fmt.Errorf("invalid reminder date: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("reminder_date = $%d", argPos))
		args = append(args, parsed)
		argPos++
	}
	if req.IsActive != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.ReminderData != nil {
		setClauses = append(setClauses, fmt.Sprintf("reminder_data = $%d", argPos))
		args = append(args, req.ReminderData)
		argPos++
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE reminders SET %s WHERE id = $%d`,
		joinStrings(setClauses, ", "), argPos)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrReminderNotFound
	}

	reminder := &models.Reminder{}
	err = tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM reminders WHERE id = $1`, reminderColumns), id).Scan(
		&reminder.ID, &reminder.DeviceID, &reminder.EventID, &reminder.EventTitle,
		&reminder.ReminderDate, &reminder.IsActive, &reminder.NotificationSent,
		&reminder.ReminderData, &reminder.CreatedAt, &reminder.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read back reminder: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reminder update: %w", err)
	}

	return reminder, nil
}

// DeactivateReminder clears the activation flag inside a transaction.
func (r *PostgresRepository) DeactivateReminder(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE reminders SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReminderNotFound
	}

	return tx.Commit(ctx)
}

// DeleteReminder removes a reminder inside a transaction.
func (r *PostgresRepository) DeleteReminder(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReminderNotFound
	}

	return tx.Commit(ctx)
}

// ListDueReminders returns active, unsent reminders due within the window.
func (r *PostgresRepository) ListDueReminders(ctx context.Context, window time.Duration) ([]models.Reminder, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM reminders
		WHERE is_active AND NOT notification_sent
		  AND reminder_date BETWEEN now() AND now() + $1
		ORDER BY reminder_date ASC
	`, reminderColumns), window)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

func scanReminders(rows pgxRows) ([]models.Reminder, error) {
	reminders := []models.Reminder{}
	for rows.Next() {
		var rem models.Reminder
		if err := rows.Scan(
			&rem.ID, &rem.DeviceID, &rem.EventID, &rem.EventTitle,
			&rem.ReminderDate, &rem.IsActive, &rem.NotificationSent,
			&rem.ReminderData, &rem.CreatedAt, &rem.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reminders, nil
}

func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for i := 1; i < len(strs); i++ {
		result += sep + strs[i]
	}
	return result
}
