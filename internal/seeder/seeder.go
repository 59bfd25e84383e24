// Package seeder generates plausible event data for local development and
// demos. Generated events pass normalization and carry distinct links, so
// repeated runs exercise the dedup path instead of duplicating rows.
package seeder

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/gatherhub-io/gatherhub/internal/models"
)

var categories = []string{
	"Music", "Technology", "Business", "Arts & Theatre",
	"Food & Drink", "Sports", "Community", "Education",
}

var sources = []string{
	"hypenation", "tentimes", "allevents", "ticketbox", "conference-alerts",
}

// Generator produces fake raw events.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator. Pass a non-zero seed for reproducible output.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		return &Generator{faker: gofakeit.New(0)}
	}
	return &Generator{faker: gofakeit.New(seed)}
}

// RawEvents generates n raw events spread over the next 90 days.
func (g *Generator) RawEvents(n int) []models.RawEvent {
	events := make([]models.RawEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, g.rawEvent(i))
	}
	return events
}

func (g *Generator) rawEvent(i int) models.RawEvent {
	f := g.faker
	source := sources[f.Number(0, len(sources)-1)]
	date := time.Now().AddDate(0, 0, f.Number(1, 90))

	title := fmt.Sprintf("%s %s", f.BuzzWord(), f.HackerNoun())
	if f.Bool() {
		title = fmt.Sprintf("%s %d", f.Company(), date.Year())
	}

	price := "Free"
	if f.Bool() {
		price = fmt.Sprintf("$%d", f.Number(5, 250))
	}

	location := fmt.Sprintf("%s, %s", f.Company(), f.City())
	if f.Number(0, 9) == 0 {
		// Roughly one in ten sources omits the venue.
		location = ""
	}

	return models.RawEvent{
		Title:    title,
		DateRaw:  date.Format("2006-01-02"),
		Location: location,
		Link:     fmt.Sprintf("https://%s.example.com/events/%d-%s", source, i, f.UUID()),
		Image:    fmt.Sprintf("https://img.example.com/%s.jpg", f.UUID()),
		Price:    price,
		Category: categories[f.Number(0, len(categories)-1)],
		Source:   source,
	}
}
