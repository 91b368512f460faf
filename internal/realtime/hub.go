package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Client is one live connection that can receive event frames.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event is the frame pushed to a user's connections after a task change.
type Event struct {
	Type    string `json:"type"`
	TaskID  string `json:"taskId,omitempty"`
	UserID  string `json:"userId"`
	Version int    `json:"version"`
}

const (
	TaskCreated       = "task_created"
	TaskUpdated       = "task_updated"
	TaskDeleted       = "task_deleted"
	TaskStatusChanged = "task_status_changed"
	CategoriesChanged = "categories_changed"
)

// Hub fans task events out to every connection of a user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[Client]struct{})}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, userID)
		}
	}
}

// Connections reports how many clients a user has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish sends evt to all clients of userID. Failed writes are left for the
// connection's own reader loop to clean up.
func (h *Hub) Publish(userID string, evt Event) {
	evt.UserID = userID
	if evt.Version == 0 {
		evt.Version = 1
	}
	msg, err := json.Marshal(evt)
	if err != nil {
		log.Printf("realtime: encode %s: %v", evt.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		c.Send(msg)
	}
}
