package pipeline

import (
	"context"
	"encoding/json"

	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/messaging"
	"github.com/gatherhub-io/gatherhub/internal/models"
)

// BusDistributor publishes new-event batches to the message bus. Every
// instance subscribed to the subject relays the batch to its own socket
// clients, so pushes reach clients regardless of which instance ingested.
type BusDistributor struct {
	publisher messaging.Publisher
	logger    *logging.Logger
}

// NewBusDistributor creates a distributor backed by the given publisher.
func NewBusDistributor(publisher messaging.Publisher, logger *logging.Logger) *BusDistributor {
	return &BusDistributor{publisher: publisher, logger: logger}
}

// EmitNewEvents publishes the batch as a JSON array on the events subject.
func (d *BusDistributor) EmitNewEvents(events []models.Event) {
	if len(events) == 0 {
		return
	}

	data, err := json.Marshal(events)
	if err != nil {
		d.logger.Error("failed to encode event batch for bus", "error", err)
		return
	}
	if err := d.publisher.Publish(context.Background(), messaging.SubjectEventsNew, data); err != nil {
		d.logger.Warn("failed to publish event batch", "subject", messaging.SubjectEventsNew, "error", err)
	}
}
