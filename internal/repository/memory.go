package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gatherhub-io/gatherhub/internal/models"
)

// MemoryRepository is an in-memory Repository for tests and local
// development. It mirrors the Postgres semantics: find-or-create on identity
// key, date-key ordering with undated events last, transactional reminder
// mutations (trivially atomic under the mutex).
type MemoryRepository struct {
	mu        sync.RWMutex
	events    []models.Event
	byKey     map[string]int64
	nextID    int64
	reminders map[string]models.Reminder
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byKey:     make(map[string]int64),
		reminders: make(map[string]models.Reminder),
		nextID:    1,
	}
}

// UpsertEvents inserts events whose identity key is not yet present.
func (m *MemoryRepository) UpsertEvents(ctx context.Context, events []models.Event) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved, skipped := 0, 0
	for _, e := range events {
		key := e.IdentityKey()
		if _, exists := m.byKey[key]; exists {
			skipped++
			continue
		}
		e.ID = m.nextID
		e.CreatedAt = time.Now().UTC()
		m.nextID++
		m.byKey[key] = e.ID
		m.events = append(m.events, e)
		saved++
	}
	return saved, skipped, nil
}

// ExistingIdentityKeys reports which keys are already stored.
func (m *MemoryRepository) ExistingIdentityKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	existing := make(map[string]bool, len(keys))
	for _, key := range keys {
		if _, ok := m.byKey[key]; ok {
			existing[key] = true
		}
	}
	return existing, nil
}

// ListEvents returns all events ordered by date key, undated last.
func (m *MemoryRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortEvents(append([]models.Event(nil), m.events...)), nil
}

// ListEventsBySource returns one source's events.
func (m *MemoryRepository) ListEventsBySource(ctx context.Context, source string) ([]models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Event{}
	for _, e := range m.events {
		if e.Source == source {
			out = append(out, e)
		}
	}
	return sortEvents(out), nil
}

// SearchEvents applies the filter in memory.
func (m *MemoryRepository) SearchEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(filter.Search)
	out := []models.Event{}
	for _, e := range m.events {
		if needle != "" && !matchesText(e, needle) {
			continue
		}
		if filter.FromDate != nil && (e.DateKey == nil || e.DateKey.Before(*filter.FromDate)) {
			continue
		}
		if filter.ToDate != nil && (e.DateKey == nil || e.DateKey.After(*filter.ToDate)) {
			continue
		}
		if filter.MinPrice != nil && (e.PriceValue == nil || *e.PriceValue < *filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && (e.PriceValue == nil || *e.PriceValue > *filter.MaxPrice) {
			continue
		}
		out = append(out, e)
	}
	return sortEvents(out), nil
}

func matchesText(e models.Event, needle string) bool {
	if strings.Contains(strings.ToLower(e.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Location), needle) {
		return true
	}
	if e.Category != nil && strings.Contains(strings.ToLower(*e.Category), needle) {
		return true
	}
	return false
}

func sortEvents(events []models.Event) []models.Event {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].DateKey, events[j].DateKey
		switch {
		case a == nil && b == nil:
			return events[i].ID < events[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return events[i].ID < events[j].ID
		default:
			return a.Before(*b)
		}
	})
	return events
}

// SetReminder updates the active reminder for (deviceID, eventID) or creates one.
func (m *MemoryRepository) SetReminder(ctx context.Context, r *models.Reminder) (*models.Reminder, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range m.reminders {
		if existing.DeviceID == r.DeviceID && existing.EventID == r.EventID && existing.IsActive {
			existing.EventTitle = r.EventTitle
			existing.ReminderDate = r.ReminderDate
			existing.ReminderData = r.ReminderData
			existing.UpdatedAt = now
			m.reminders[id] = existing
			return &existing, false, nil
		}
	}

	stored := *r
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	stored.IsActive = true
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.reminders[stored.ID] = stored
	return &stored, true, nil
}

// GetReminder retrieves a reminder by id.
func (m *MemoryRepository) GetReminder(ctx context.Context, id string) (*models.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reminders[id]
	if !ok {
		return nil, ErrReminderNotFound
	}
	return &r, nil
}

// ListReminders returns a device's reminders ordered by reminder date.
func (m *MemoryRepository) ListReminders(ctx context.Context, deviceID string, activeOnly bool) ([]models.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Reminder{}
	for _, r := range m.reminders {
		if r.DeviceID != deviceID {
			continue
		}
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReminderDate.Before(out[j].ReminderDate) })
	return out, nil
}

// UpdateReminder applies the non-nil fields of req.
func (m *MemoryRepository) UpdateReminder(ctx context.Context, id string, req *models.UpdateReminderRequest) (*models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reminders[id]
	if !ok {
		return nil, ErrReminderNotFound
	}

	if req.EventTitle != nil {
		r.EventTitle = *req.EventTitle
	}
	if req.ReminderDate != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ReminderDate)
		if err != nil {
			return nil, err
		}
		r.ReminderDate = parsed
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}
	if req.ReminderData != nil {
		r.ReminderData = req.ReminderData
	}
	r.UpdatedAt = time.Now().UTC()
	m.reminders[id] = r
	return &r, nil
}

// DeactivateReminder clears the activation flag.
func (m *MemoryRepository) DeactivateReminder(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reminders[id]
	if !ok {
		return ErrReminderNotFound
	}
	r.IsActive = false
	r.UpdatedAt = time.Now().UTC()
	m.reminders[id] = r
	return nil
}

// DeleteReminder removes a reminder.
func (m *MemoryRepository) DeleteReminder(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reminders[id]; !ok {
		return ErrReminderNotFound
	}
	delete(m.reminders, id)
	return nil
}

// ListDueReminders returns active, unsent reminders due within the window.
func (m *MemoryRepository) ListDueReminders(ctx context.Context, window time.Duration) ([]models.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now().UTC()
	until := now.Add(window)
	out := []models.Reminder{}
	for _, r := range m.reminders {
		if !r.IsActive || r.NotificationSent {
			continue
		}
		if r.ReminderDate.Before(now) || r.ReminderDate.After(until) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReminderDate.Before(out[j].ReminderDate) })
	return out, nil
}

// Close is a no-op for the in-memory repository.
func (m *MemoryRepository) Close() error { return nil }
