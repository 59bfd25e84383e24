// Package dedup removes duplicate canonical events within a batch and
// computes the new-only subset against the store's known identity keys.
package dedup

import "github.com/gatherhub-io/gatherhub/internal/models"

// Batch removes duplicates from a batch in arrival order: the first
// occurrence of each identity key wins. O(n) in batch size.
func Batch(events []models.Event) []models.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]models.Event, 0, len(events))
	for _, event := range events {
		key := event.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, event)
	}
	return out
}

// Keys returns the identity keys of a batch, in order.
func Keys(events []models.Event) []string {
	keys := make([]string, len(events))
	for i := range events {
		keys[i] = events[i].IdentityKey()
	}
	return keys
}

// NewSince filters a deduplicated batch down to the events whose identity key
// is not already present in the store. existing must be captured before the
// upsert so the delta reflects the store state at cycle start.
func NewSince(events []models.Event, existing map[string]bool) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, event := range events {
		if existing[event.IdentityKey()] {
			continue
		}
		out = append(out, event)
	}
	return out
}
