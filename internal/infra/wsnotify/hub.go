package wsnotify

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xavierca1/leadbridge/internal/usecase"
)

const writeWait = 5 * time.Second

// Message is what clients receive for every store change.
type Message struct {
	Type    string              `json:"type"`
	Payload usecase.ChangeEvent `json:"payload"`
}

// Hub broadcasts store change events to every connected websocket client.
type Hub struct {
	clients  map[*websocket.Conn]bool
	lock     sync.Mutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub accepts upgrades from allowedOrigins; "*" or an empty list allows any origin.
func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// ServeHTTP upgrades the request and keeps the client registered until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	h.AddClient(conn)
	defer h.RemoveClient(conn)

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) AddClient(conn *websocket.Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.clients[conn] = true
}

func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Broadcast writes v to every client. Clients that fail the write are dropped.
func (h *Hub) Broadcast(v any) {
	h.lock.Lock()
	defer h.lock.Unlock()

	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteJSON(v); err != nil {
			h.logger.Debug("dropping websocket client", "remote", client.RemoteAddr().String(), "error", err)
			client.Close()
			delete(h.clients, client)
		}
	}
}

// Publish implements usecase.EventPublisher.
func (h *Hub) Publish(ctx context.Context, event usecase.ChangeEvent) error {
	h.Broadcast(Message{Type: "change", Payload: event})
	return nil
}

// CloseAll disconnects every client, for shutdown.
func (h *Hub) CloseAll() {
	h.lock.Lock()
	defer h.lock.Unlock()

	for client := range h.clients {
		client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		client.Close()
		delete(h.clients, client)
	}
}
