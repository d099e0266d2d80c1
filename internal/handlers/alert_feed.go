package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/echo-project/crisis-engine/internal/database"
	"github.com/gorilla/websocket"
)

// AlertFeedMessage is the wire format pushed to feed subscribers
type AlertFeedMessage struct {
	Type       string    `json:"type"`
	AlertID    string    `json:"alert_id"`
	IncidentID string    `json:"incident_id"`
	Severity   int       `json:"severity"`
	Summary    string    `json:"summary"`
	Categories []string  `json:"categories,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// feedSubscriber serializes writes to one connection. Concurrent
// escalation runs may broadcast at the same time and gorilla/websocket
// allows at most one writer per connection.
type feedSubscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *feedSubscriber) send(msg AlertFeedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

// AlertFeedHandler pushes escalated alerts to WebSocket subscribers.
// Dashboards connect to /ws/alerts and receive a message per new alert.
type AlertFeedHandler struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*websocket.Conn]*feedSubscriber
}

// NewAlertFeedHandler creates a new alert feed handler
func NewAlertFeedHandler() *AlertFeedHandler {
	return &AlertFeedHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Dashboard origin is enforced upstream
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*websocket.Conn]*feedSubscriber),
	}
}

// SetupRoutes configures WebSocket routes
func (h *AlertFeedHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/alerts", h.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and registers a subscriber
func (h *AlertFeedHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("AlertFeedHandler: Failed to upgrade connection from %s: %v", r.RemoteAddr, err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = &feedSubscriber{conn: conn}
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("AlertFeedHandler: Subscriber connected from %s (%d active)", r.RemoteAddr, count)

	// Drain incoming frames so pings and close frames are handled.
	// The feed is push-only.
	go h.readLoop(conn)
}

func (h *AlertFeedHandler) readLoop(conn *websocket.Conn) {
	defer h.removeClient(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *AlertFeedHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// BroadcastNewAlert sends the alert to every connected subscriber.
// Implements the escalation broadcaster contract.
func (h *AlertFeedHandler) BroadcastNewAlert(alert *database.Alert, incident *database.Incident) {
	msg := AlertFeedMessage{
		Type:       "new_alert",
		AlertID:    alert.ID,
		IncidentID: alert.IncidentID,
		Severity:   alert.Severity,
		Summary:    alert.Summary,
		Timestamp:  time.Now().UTC(),
	}
	if incident != nil {
		msg.Categories = incident.Categories
	}

	h.mu.RLock()
	subs := make([]*feedSubscriber, 0, len(h.clients))
	for _, sub := range h.clients {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.send(msg); err != nil {
			log.Printf("AlertFeedHandler: Dropping subscriber after write error: %v", err)
			h.removeClient(sub.conn)
		}
	}
}

// SubscriberCount returns the number of connected subscribers
func (h *AlertFeedHandler) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
