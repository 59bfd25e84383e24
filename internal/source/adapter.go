// Package source defines the contract between the ingestion pipeline and the
// site-specific adapters that feed it. Extraction logic lives outside this
// repo; an adapter only has to yield raw events and respect its context.
package source

import (
	"context"

	"github.com/gatherhub-io/gatherhub/internal/models"
)

// Adapter produces raw event records for one source. Fetch may fail; the
// pipeline isolates failures per adapter. Implementations must honor ctx
// cancellation — the runner applies a deadline and abandons adapters that
// overrun it.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]models.RawEvent, error)
}

// Registry holds the adapters invoked each ingestion cycle.
type Registry struct {
	adapters []Adapter
}

// NewRegistry constructs a registry with the provided adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Register appends an adapter.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Adapters returns the registered adapters in registration order.
func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	return len(r.adapters)
}
