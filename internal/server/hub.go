package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/erkantaylan/markview/internal/logger"
	"github.com/erkantaylan/markview/internal/viewstate"
)

// Client represents a connected WebSocket client
type Client struct {
	remote string
	send   chan []byte
}

// Hub manages WebSocket clients and broadcasting of the view state
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *logger.Logger

	mu      sync.RWMutex
	current viewstate.State
}

func NewHub(initial viewstate.State, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
		current:    initial,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.ClientConnected(client.remote, len(h.clients))
			// Send current state to new client
			if data, err := json.Marshal(h.Current()); err == nil {
				client.send <- data
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.ClientDisconnected(len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}

		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		}
	}
}

// Current returns the last published state.
func (h *Hub) Current() viewstate.State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Publish stores state and sends it to every client.
func (h *Hub) Publish(state viewstate.State) {
	h.mu.Lock()
	h.current = state
	h.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		h.log.Error("failed to encode state", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// join registers a new client, returning false once the hub has stopped.
func (h *Hub) join(remote string) (*Client, bool) {
	client := &Client{remote: remote, send: make(chan []byte, 256)}
	select {
	case h.register <- client:
		return client, true
	case <-h.done:
		return nil, false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
