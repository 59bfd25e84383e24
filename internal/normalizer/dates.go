package normalizer

import (
	"strings"
	"time"
)

// displayLayout renders a parsed date the way the feed UI shows it,
// e.g. "Thu, 23 Jul".
const displayLayout = "Mon, 2 Jan"

// sourceLayouts maps a source identifier to the ordered list of date layouts
// that source is known to emit. The first matching layout wins.
var sourceLayouts = map[string][]string{
	"hypenation": {
		"02/01/2006 15:04",
		"02/01/2006",
	},
	"tentimes": {
		"2006-01-02",
		"Jan 02, 2006",
	},
	"allevents": {
		"Mon, 2 Jan",
		"2 Jan 2006",
	},
	"ticketbox": {
		"2 January 2006 15:04",
		"2 January 2006",
	},
	"conference-alerts": {
		"02 Jan 2006",
	},
}

// genericLayouts is the fallback table tried when a source has no table of
// its own, or when none of its layouts match.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	"2 January 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"Mon, 2 Jan 2006",
	"Mon, 2 Jan",
}

// ParseDate attempts to parse a free-text date expression using the source's
// known layouts, then the generic table. The returned time is truncated to
// day granularity in UTC. ok is false when nothing matches.
func ParseDate(source, raw string) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if layouts, found := sourceLayouts[sourceFamily(source)]; found {
		if t, ok := tryLayouts(layouts, raw); ok {
			return t, true
		}
	}
	return tryLayouts(genericLayouts, raw)
}

func tryLayouts(layouts []string, raw string) (time.Time, bool) {
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		// Yearless layouts parse into year 0; events are upcoming, so
		// assume the current year.
		if parsed.Year() == 0 {
			now := time.Now().UTC()
			parsed = parsed.AddDate(now.Year(), 0, 0)
		}
		return dayKey(parsed), true
	}
	return time.Time{}, false
}

// dayKey truncates a timestamp to calendar-day granularity in UTC.
func dayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDisplay renders a date key as the human-readable feed string.
func FormatDisplay(t time.Time) string {
	return t.Format(displayLayout)
}

// sourceFamily reduces a source identifier (often a URL) to the key used in
// the layout table.
func sourceFamily(source string) string {
	s := strings.ToLower(source)
	for family := range sourceLayouts {
		if strings.Contains(s, family) {
			return family
		}
	}
	return s
}
