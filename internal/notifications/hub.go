package notifications

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

// Event represents a payload delivered to notification subscribers.
type Event struct {
	Event          string      `json:"event"`
	Notification   interface{} `json:"notification,omitempty"`
	NotificationID string      `json:"notification_id,omitempty"`
	ModifiedCount  int64       `json:"modified_count,omitempty"`
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan Event
}

// Hub fans notification events out to connected subscribers. Subscribers
// register under a scope ("user" or "admin"); an event published without
// a target user reaches every subscriber in its scope, mirroring
// broadcast notifications with a null recipient.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{} // scope -> clients
}

// NewHub constructs a notification hub instance.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
	}
}

// Serve upgrades the HTTP connection to a WebSocket and registers the subscriber.
func (h *Hub) Serve(scope, userID string, w http.ResponseWriter, r *http.Request) {
	server := websocket.Server{
		Handshake: func(config *websocket.Config, req *http.Request) error {
			config.Protocol = append(config.Protocol, "json")
			return nil
		},
		Handler: func(conn *websocket.Conn) {
			_ = conn.SetDeadline(time.Now().Add(5 * time.Minute))
			cl := &client{
				userID: userID,
				conn:   conn,
				send:   make(chan Event, 16),
			}

			h.addClient(scope, cl)
			defer h.removeClient(scope, cl)

			go h.writeLoop(cl)
			h.readLoop(cl)
		},
	}

	server.ServeHTTP(w, r)
}

// Publish delivers an event to subscribers in the scope. A nil target
// reaches every subscriber; otherwise only connections of that user.
func (h *Hub) Publish(scope string, target *string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for cl := range h.clients[scope] {
		if target != nil && cl.userID != *target {
			continue
		}
		select {
		case cl.send <- event:
		default:
			// Drop if buffer full to avoid blocking all clients.
		}
	}
}

// SubscriberCount reports the number of open connections in a scope.
func (h *Hub) SubscriberCount(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[scope])
}

func (h *Hub) addClient(scope string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[scope] == nil {
		h.clients[scope] = make(map[*client]struct{})
	}
	h.clients[scope][cl] = struct{}{}
}

func (h *Hub) removeClient(scope string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients := h.clients[scope]; clients != nil {
		delete(clients, cl)
		if len(clients) == 0 {
			delete(h.clients, scope)
		}
	}
	close(cl.send)
	_ = cl.conn.Close()
}

func (h *Hub) writeLoop(cl *client) {
	for event := range cl.send {
		if err := websocket.JSON.Send(cl.conn, event); err != nil {
			break
		}
	}
}

func (h *Hub) readLoop(cl *client) {
	defer cl.conn.Close()

	for {
		var payload interface{}
		if err := websocket.JSON.Receive(cl.conn, &payload); err != nil {
			break
		}
	}
}
