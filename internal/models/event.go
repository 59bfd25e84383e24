package models

import "time"

// DefaultLocation is stored when a source does not report a venue.
const DefaultLocation = "Unknown Location"

// RawEvent is the loosely structured record a source adapter yields.
// Only Source is guaranteed to be present; every other field may be empty.
type RawEvent struct {
	Title    string `json:"title"`
	DateRaw  string `json:"dateRaw"`
	Location string `json:"location"`
	Link     string `json:"link"`
	Image    string `json:"image"`
	Price    string `json:"price"`
	Category string `json:"category"`
	Source   string `json:"source"`
}

// Event is the canonical, schema-conformant event record used by the store,
// cache, API and broadcast channel.
type Event struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	DateDisplay string     `json:"date"`
	DateKey     *time.Time `json:"dateKey"`
	Location    string     `json:"location"`
	Price       *string    `json:"price"`
	PriceValue  *float64   `json:"priceValue,omitempty"`
	Category    *string    `json:"category"`
	Link        string     `json:"link"`
	Image       *string    `json:"image"`
	Source      string     `json:"source"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
}

// IdentityKey returns the deduplication key for the event: the link when
// present, otherwise the source identifier.
func (e *Event) IdentityKey() string {
	if e.Link != "" {
		return e.Link
	}
	return e.Source
}

// EventListResponse wraps an event listing with its count.
type EventListResponse struct {
	Count  int     `json:"count"`
	Events []Event `json:"events"`
}

// EventFilter holds the optional constraints for a filtered event search.
// Nil fields are unconstrained.
type EventFilter struct {
	Search   string
	FromDate *time.Time
	ToDate   *time.Time
	MinPrice *float64
	MaxPrice *float64
}
