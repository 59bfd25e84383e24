// Package normalizer converts loosely structured raw source records into
// canonical events with parsed dates and defaulted fields.
package normalizer

import (
	"strconv"
	"strings"

	"github.com/gatherhub-io/gatherhub/internal/models"
)

// Normalize maps a raw event onto the canonical schema. It returns ok=false
// when the record must be discarded (empty or whitespace-only title). A record
// whose date cannot be parsed is retained with a nil DateKey and sorts last.
// Normalize is a pure function of its input plus the fixed layout tables.
func Normalize(raw models.RawEvent) (*models.Event, bool) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return nil, false
	}

	event := &models.Event{
		Title:    title,
		Location: models.DefaultLocation,
		Link:     strings.TrimSpace(raw.Link),
		Source:   raw.Source,
	}

	if loc := strings.TrimSpace(raw.Location); loc != "" {
		event.Location = loc
	}
	if price := strings.TrimSpace(raw.Price); price != "" {
		event.Price = &price
		event.PriceValue = ParsePrice(price)
	}
	if category := strings.TrimSpace(raw.Category); category != "" {
		event.Category = &category
	}
	if image := strings.TrimSpace(raw.Image); image != "" {
		event.Image = &image
	}

	dateRaw := strings.TrimSpace(raw.DateRaw)
	event.DateDisplay = dateRaw
	if parsed, ok := ParseDate(raw.Source, dateRaw); ok {
		event.DateKey = &parsed
		event.DateDisplay = FormatDisplay(parsed)
	}

	return event, true
}

// NormalizeBatch maps a batch of raw events, dropping rejected records while
// preserving arrival order. It returns the canonical events and the number of
// rejected records.
func NormalizeBatch(batch []models.RawEvent) ([]models.Event, int) {
	events := make([]models.Event, 0, len(batch))
	rejected := 0
	for _, raw := range batch {
		event, ok := Normalize(raw)
		if !ok {
			rejected++
			continue
		}
		events = append(events, *event)
	}
	return events, rejected
}

// ParsePrice extracts the leading numeric amount from a free-text price such
// as "$10", "USD 25.50" or "From $15". Returns nil when no number is present
// or the text reads as free entry.
func ParsePrice(price string) *float64 {
	lower := strings.ToLower(price)
	if strings.Contains(lower, "free") {
		zero := 0.0
		return &zero
	}

	start := -1
	end := len(price)
	for i, r := range price {
		if r >= '0' && r <= '9' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 && (r == '.' || r == ',') {
			continue
		}
		if start != -1 {
			end = i
			break
		}
	}
	if start == -1 {
		return nil
	}

	num := strings.ReplaceAll(price[start:end], ",", "")
	num = strings.TrimRight(num, ".")
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil
	}
	return &value
}
