// Package ws pushes event-feed updates to browser clients over WebSocket.
// A single Hub owns the client set; the ingestion pipeline hands it batches
// of newly stored events and every connected client receives them.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gatherhub-io/gatherhub/internal/logging"
	"github.com/gatherhub-io/gatherhub/internal/metrics"
	"github.com/gatherhub-io/gatherhub/internal/models"
)

// Message types exchanged with socket clients.
const (
	MessageTypeWelcome   = "welcome"
	MessageTypeNewEvents = "new-events"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
)

// Message is the envelope for all socket traffic.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *logging.Logger
}

// NewHub creates a hub. Run must be started before clients attach.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run processes client lifecycle and broadcast traffic until ctx is canceled,
// then closes every connected client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.ConnectedClients.Set(float64(total))
			h.logger.Info("socket client connected", "total_clients", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.ConnectedClients.Set(float64(total))
			h.logger.Info("socket client disconnected", "total_clients", total)

		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var stalled []*Client
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			// Slow consumer, drop it rather than block the hub.
			stalled = append(stalled, client)
		}
	}
	for _, client := range stalled {
		close(client.send)
		delete(h.clients, client)
	}
	if len(stalled) > 0 {
		metrics.ConnectedClients.Set(float64(len(h.clients)))
		h.logger.Warn("dropped slow socket clients", "count", len(stalled))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.ConnectedClients.Set(0)
	h.logger.Info("closed all socket clients")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// EmitNewEvents pushes a batch of newly stored events to all clients.
// Empty batches are never sent.
func (h *Hub) EmitNewEvents(events []models.Event) {
	if len(events) == 0 {
		return
	}

	msg := Message{Type: MessageTypeNewEvents, Data: events}
	select {
	case h.broadcast <- msg:
		metrics.NewEventsBroadcastTotal.Add(float64(len(events)))
	default:
		h.logger.Warn("broadcast channel full, dropping new-events message", "events", len(events))
	}
}

// EmitRaw decodes a JSON-encoded event batch and pushes it to all clients.
// Used by the bus subscriber to relay batches published by other instances.
func (h *Hub) EmitRaw(data []byte) {
	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		h.logger.Warn("failed to decode event batch for broadcast", "error", err)
		return
	}
	h.EmitNewEvents(events)
}
