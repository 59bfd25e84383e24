package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhub-io/gatherhub/internal/models"
	"github.com/gatherhub-io/gatherhub/internal/repository"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestUpsertEvents_SkipsKnownIdentityKeys(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	saved, skipped, err := repo.UpsertEvents(ctx, []models.Event{
		{Title: "A", Link: "https://e.example.com/1", Source: "a"},
		{Title: "B", Link: "https://e.example.com/2", Source: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.Equal(t, 0, skipped)

	saved, skipped, err = repo.UpsertEvents(ctx, []models.Event{
		{Title: "A again", Link: "https://e.example.com/1", Source: "a"},
		{Title: "C", Link: "https://e.example.com/3", Source: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.Equal(t, 1, skipped)

	events, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestExistingIdentityKeys(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	_, _, err := repo.UpsertEvents(ctx, []models.Event{
		{Title: "A", Link: "https://e.example.com/1", Source: "a"},
	})
	require.NoError(t, err)

	existing, err := repo.ExistingIdentityKeys(ctx, []string{
		"https://e.example.com/1",
		"https://e.example.com/404",
	})
	require.NoError(t, err)
	assert.True(t, existing["https://e.example.com/1"])
	assert.False(t, existing["https://e.example.com/404"])
}

func TestListEvents_OrdersByDateUndatedLast(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	_, _, err := repo.UpsertEvents(ctx, []models.Event{
		{Title: "Undated", Link: "https://e.example.com/1", Source: "a"},
		{Title: "Later", Link: "https://e.example.com/2", Source: "a", DateKey: day(2026, time.October, 1)},
		{Title: "Sooner", Link: "https://e.example.com/3", Source: "a", DateKey: day(2026, time.September, 1)},
	})
	require.NoError(t, err)

	events, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Sooner", events[0].Title)
	assert.Equal(t, "Later", events[1].Title)
	assert.Equal(t, "Undated", events[2].Title)
}

func TestListEventsBySource(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	_, _, err := repo.UpsertEvents(ctx, []models.Event{
		{Title: "A", Link: "https://e.example.com/1", Source: "feed-a"},
		{Title: "B", Link: "https://e.example.com/2", Source: "feed-b"},
	})
	require.NoError(t, err)

	events, err := repo.ListEventsBySource(ctx, "feed-a")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "A", events[0].Title)
}

func TestSearchEvents(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	jazz := "Music"
	cheap, pricey := 10.0, 150.0
	_, _, err := repo.UpsertEvents(ctx, []models.Event{
		{Title: "Jazz Evening", Link: "https://e.example.com/1", Source: "a", Location: "Riverside Hall",
			Category: &jazz, PriceValue: &cheap, DateKey: day(2026, time.September, 10)},
		{Title: "Enterprise Expo", Link: "https://e.example.com/2", Source: "a", Location: "Convention Centre",
			PriceValue: &pricey, DateKey: day(2026, time.November, 5)},
		{Title: "Street Market", Link: "https://e.example.com/3", Source: "a", Location: "Old Town"},
	})
	require.NoError(t, err)

	t.Run("text matches title case-insensitively", func(t *testing.T) {
		events, err := repo.SearchEvents(ctx, models.EventFilter{Search: "jazz"})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Jazz Evening", events[0].Title)
	})

	t.Run("text matches location and category", func(t *testing.T) {
		events, err := repo.SearchEvents(ctx, models.EventFilter{Search: "convention"})
		require.NoError(t, err)
		assert.Len(t, events, 1)

		events, err = repo.SearchEvents(ctx, models.EventFilter{Search: "music"})
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("date range excludes undated events", func(t *testing.T) {
		events, err := repo.SearchEvents(ctx, models.EventFilter{
			FromDate: day(2026, time.September, 1),
			ToDate:   day(2026, time.September, 30),
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Jazz Evening", events[0].Title)
	})

	t.Run("price bounds exclude unpriced events", func(t *testing.T) {
		min := 100.0
		events, err := repo.SearchEvents(ctx, models.EventFilter{MinPrice: &min})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Enterprise Expo", events[0].Title)
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		events, err := repo.SearchEvents(ctx, models.EventFilter{})
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})
}

func TestSetReminder_FindOrCreate(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	first, created, err := repo.SetReminder(ctx, &models.Reminder{
		DeviceID:     "device-1",
		EventID:      42,
		EventTitle:   "Jazz Evening",
		ReminderDate: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.IsActive)
	assert.NotEmpty(t, first.ID)

	second, created, err := repo.SetReminder(ctx, &models.Reminder{
		DeviceID:     "device-1",
		EventID:      42,
		EventTitle:   "Jazz Evening (updated)",
		ReminderDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, created, "active reminder for same device and event is replaced")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Jazz Evening (updated)", second.EventTitle)
}

func TestSetReminder_InactiveDoesNotBlockCreate(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	first, _, err := repo.SetReminder(ctx, &models.Reminder{
		DeviceID: "device-1", EventID: 42, EventTitle: "T", ReminderDate: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.DeactivateReminder(ctx, first.ID))

	second, created, err := repo.SetReminder(ctx, &models.Reminder{
		DeviceID: "device-1", EventID: 42, EventTitle: "T", ReminderDate: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestUpdateReminder(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	r, _, err := repo.SetReminder(ctx, &models.Reminder{
		DeviceID: "device-1", EventID: 7, EventTitle: "Old", ReminderDate: time.Now(),
	})
	require.NoError(t, err)

	title := "New Title"
	when := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	data := json.RawMessage(`{"note":"bring tickets"}`)
	updated, err := repo.UpdateReminder(ctx, r.ID, &models.UpdateReminderRequest{
		EventTitle:   &title,
		ReminderDate: &when,
		ReminderData: data,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.EventTitle)
	assert.JSONEq(t, `{"note":"bring tickets"}`, string(updated.ReminderData))

	_, err = repo.UpdateReminder(ctx, "missing-id", &models.UpdateReminderRequest{EventTitle: &title})
	assert.ErrorIs(t, err, repository.ErrReminderNotFound)
}

func TestDeleteAndGetReminder(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	r, _, err := repo.SetReminder(ctx, &models.Reminder{
		DeviceID: "device-1", EventID: 7, EventTitle: "T", ReminderDate: time.Now(),
	})
	require.NoError(t, err)

	got, err := repo.GetReminder(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	require.NoError(t, repo.DeleteReminder(ctx, r.ID))
	_, err = repo.GetReminder(ctx, r.ID)
	assert.ErrorIs(t, err, repository.ErrReminderNotFound)
	assert.ErrorIs(t, repo.DeleteReminder(ctx, r.ID), repository.ErrReminderNotFound)
}

func TestListReminders_ActiveFilterAndOrder(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	later, _, err := repo.SetReminder(ctx, &models.Reminder{
		DeviceID: "device-1", EventID: 1, EventTitle: "Later", ReminderDate: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	_, _, err = repo.SetReminder(ctx, &models.Reminder{
		DeviceID: "device-1", EventID: 2, EventTitle: "Sooner", ReminderDate: time.Now().Add(2 * time.Hour),
	})
	require.NoError(t, err)
	_, _, err = repo.SetReminder(ctx, &models.Reminder{
		DeviceID: "device-2", EventID: 3, EventTitle: "Other Device", ReminderDate: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.DeactivateReminder(ctx, later.ID))

	all, err := repo.ListReminders(ctx, "device-1", false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Sooner", all[0].EventTitle)

	active, err := repo.ListReminders(ctx, "device-1", true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Sooner", active[0].EventTitle)
}

func TestListDueReminders(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	_, _, err := repo.SetReminder(ctx, &models.Reminder{
		DeviceID: "d", EventID: 1, EventTitle: "Due Soon", ReminderDate: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	_, _, err = repo.SetReminder(ctx, &models.Reminder{
		DeviceID: "d", EventID: 2, EventTitle: "Far Future", ReminderDate: time.Now().Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	_, _, err = repo.SetReminder(ctx, &models.Reminder{
		DeviceID: "d", EventID: 3, EventTitle: "Past", ReminderDate: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	due, err := repo.ListDueReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "Due Soon", due[0].EventTitle)
}
