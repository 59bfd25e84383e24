package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is public; origin checks belong at the proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to WebSocket connections and attaches
// them to the hub. Every new client receives a welcome message first.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Warn("socket upgrade failed", "error", err)
			return
		}

		client := newClient(hub, conn)
		hub.register <- client
		client.start()

		welcome := Message{
			Type: MessageTypeWelcome,
			Data: map[string]string{
				"message":      "connected to live event feed",
				"connected_at": time.Now().UTC().Format(time.RFC3339),
			},
		}
		select {
		case client.send <- welcome:
		default:
		}
	}
}
