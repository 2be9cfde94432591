package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/codenames-go/internal/model"
)

// Event names carried on the feed
const (
	EventChange    = "change"
	EventAbandoned = "abandoned"
)

// Message is one item on a session's feed
type Message struct {
	Event  string                    `json:"type"`
	Change *model.ChangeNotification `json:"change,omitempty"`
}

// Buffer size for outgoing messages per client
const sendBufferSize = 256

// Client is one connected viewer of a session
type Client struct {
	hub         *Hub
	playerID    model.PlayerID
	send        chan Message
	connectedAt time.Time
}

// NewClient creates a client for a viewer
func NewClient(hub *Hub, playerID model.PlayerID) *Client {
	return &Client{
		hub:         hub,
		playerID:    playerID,
		send:        make(chan Message, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Messages returns the client's queue. It is closed when the hub drops
// the client or shuts down.
func (c *Client) Messages() <-chan Message {
	return c.send
}

// Hub fans one session's feed out to its connected clients
type Hub struct {
	sessionID model.SessionID
	clients   map[*Client]bool
	mu        sync.RWMutex
	logger    *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a session
func NewHub(id model.SessionID, logger *slog.Logger) *Hub {
	return &Hub{
		sessionID:  id,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("session_id", string(id))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 256),
		done:       make(chan struct{}),
	}
}

// SessionID returns the session this hub serves
func (h *Hub) SessionID() model.SessionID {
	return h.sessionID
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("feed hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("feed client registered",
				slog.String("player_id", string(client.playerID)),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("feed client unregistered",
					slog.String("player_id", string(client.playerID)),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.deliver(message)

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Debug("feed hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// deliver queues a message for every client. A client that cannot keep
// up is disconnected rather than skipped, so no client ever folds a
// partial notification over a gap.
func (h *Hub) deliver(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn("feed client dropped - buffer full",
				slog.String("player_id", string(client.playerID)))
		}
	}
}

// Register adds a client to the hub. It returns false if the hub has
// shut down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every client, waiting while the hub's
// queue is full
func (h *Hub) Broadcast(ctx context.Context, message Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	case <-ctx.Done():
	}
}

// Close shuts down the hub and disconnects its clients
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Done is closed once the hub has been shut down
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
