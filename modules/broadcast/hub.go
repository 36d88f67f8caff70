package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Conn is the part of a WebSocket connection the hub writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one live feed subscriber.
type Client struct {
	ID   string
	Conn Conn
}

// NewClient wraps conn with a fresh client id.
func NewClient(conn Conn) *Client {
	return &Client{ID: uuid.NewString(), Conn: conn}
}

// Hub fans encoded frames out to every subscriber. All writes happen on the
// Run goroutine, so a connection never sees concurrent writers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Client

	join   chan *Client
	leave  chan *Client
	frames chan []byte
	done   chan struct{}

	logger types.Logger
}

func NewHub(logger types.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]*Client),
		join:   make(chan *Client),
		leave:  make(chan *Client),
		frames: make(chan []byte, 256),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run serves joins, leaves and frames until ctx is cancelled, then closes
// every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.subs {
				_ = c.Conn.Close()
				delete(h.subs, id)
			}
			h.mu.Unlock()
			return

		case c := <-h.join:
			h.mu.Lock()
			h.subs[c.ID] = c
			n := len(h.subs)
			h.mu.Unlock()
			h.logger.Debug("Live client registered", "client_id", c.ID, "clients", n)

		case c := <-h.leave:
			if h.drop(c.ID) {
				h.logger.Debug("Live client unregistered", "client_id", c.ID)
			}

		case frame := <-h.frames:
			h.send(frame)
		}
	}
}

// Wait blocks until Run has returned.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) send(frame []byte) {
	h.mu.RLock()
	var dead []string
	for id, c := range h.subs {
		if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.logger.Warn("Failed to send live update", "client_id", id, "error", err)
			dead = append(dead, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range dead {
		h.drop(id)
	}
}

// drop forgets a subscriber and closes its connection. It reports whether
// the subscriber was known.
func (h *Hub) drop(id string) bool {
	h.mu.Lock()
	c, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	if ok {
		_ = c.Conn.Close()
	}
	return ok
}

// Register subscribes client. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.join <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister is safe to call more than once and after the hub stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.leave <- client:
	case <-h.done:
	}
}

// Broadcast encodes payload once and queues it for every subscriber.
func (h *Hub) Broadcast(payload any) {
	frame, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal live update", "error", err)
		return
	}
	select {
	case h.frames <- frame:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
