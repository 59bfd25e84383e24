package ws

import (
	"context"
	"fmt"

	"github.com/gatherhub-io/gatherhub/internal/messaging"
)

// Subscriber bridges the event bus to the hub: batches published on the
// events subject by this or any other instance are relayed to local clients.
type Subscriber struct {
	client messaging.Subscriber
	hub    *Hub
	sub    messaging.Subscription
}

// NewSubscriber creates a bus-to-hub bridge. Call Start to begin relaying.
func NewSubscriber(client messaging.Subscriber, hub *Hub) *Subscriber {
	return &Subscriber{client: client, hub: hub}
}

// Start subscribes to the new-events subject.
func (s *Subscriber) Start() error {
	sub, err := s.client.Subscribe(messaging.SubjectEventsNew, func(_ context.Context, msg *messaging.Message) error {
		s.hub.EmitRaw(msg.Data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", messaging.SubjectEventsNew, err)
	}
	s.sub = sub
	return nil
}

// Stop unsubscribes from the bus.
func (s *Subscriber) Stop() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Unsubscribe()
}
