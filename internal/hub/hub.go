package hub

import (
	"context"
	"log"
	"sync"

	"github.com/soar/ovrinput/internal/ovr"
)

// Hub manages WebSocket clients and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Register adds a new client to the hub. After Run has returned the
// client's send channel is closed instead.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		h.mu.Lock()
		h.closeClient(c)
		h.mu.Unlock()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// SendTo queues msg for one client without blocking. It reports false if
// the client is gone or its buffer is full.
func (h *Hub) SendTo(c *Client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeClient must be called with mu held.
func (h *Hub) closeClient(c *Client) {
	delete(h.clients, c)
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Selections returns the distinct controller selections of the connected
// clients.
func (h *Hub) Selections() []ovr.ControllerType {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[ovr.ControllerType]bool)
	var out []ovr.ControllerType
	for client := range h.clients {
		sel := client.Selection()
		if !seen[sel] {
			seen[sel] = true
			out = append(out, sel)
		}
	}
	return out
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastToSelection sends a message to all clients watching sel.
func (h *Hub) BroadcastToSelection(msg []byte, sel ovr.ControllerType) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.Selection() == sel {
			select {
			case client.send <- msg:
			default:
				// Client send buffer full, disconnect
				go h.Unregister(client)
			}
		}
	}
}

// Run starts the hub's main loop. Should be run in a goroutine. On return
// every remaining client's send channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.closeClient(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("Client connected (total: %d)", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.closeClient(client)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("Client disconnected (total: %d)", n)
		}
	}
}
