// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Row-change event kinds, mirroring what the database would emit.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Event is the envelope pushed to subscribed clients. A client only ever
// receives events for rows whose userID matches its own subscription.
type Event struct {
	Table string      `json:"table"`
	Event string      `json:"event"`
	Row   interface{} `json:"row"`
}

// Hub tracks all connected WebSocket clients, keyed by user ID.
type Hub struct {
	clients map[string]*websocket.Conn
	// mu guards clients; Send may run concurrently with Register/Unregister.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register adds a client connection for the given user.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = conn
	log.Printf("WebSocket client registered: %s", userID)
}

// Unregister removes a client connection.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		log.Printf("WebSocket client unregistered: %s", userID)
	}
}

// Send delivers a raw message to one client. An offline client is not an
// error; the row is still in the database and will be picked up on the next
// fetch.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[userID]
	if !ok {
		return nil
	}

	return conn.WriteMessage(websocket.TextMessage, message)
}

// Publish marshals a row-change event and sends it to the given user.
func (h *Hub) Publish(userID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for %s: %v", event.Event, userID, err)
		return
	}
	if err := h.Send(userID, payload); err != nil {
		log.Printf("Failed to push %s event to %s: %v", event.Event, userID, err)
	}
}
