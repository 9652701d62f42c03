// Package ws exposes the encounter engine over a websocket session: JSON
// commands in, command results and relayed encounter events out.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/stoneveil/bastion/internal/encounter/event"
)

// Hub maintains the set of connected clients and fans bus events out to the
// clients watching each encounter.
type Hub struct {
	bus    *event.Bus
	logger *log.Logger

	register   chan *Client
	unregister chan *Client
	// done is closed when Run returns, so registrations racing shutdown
	// never block on a drained channel.
	done chan struct{}

	mu      sync.Mutex
	clients map[*Client]bool
}

// NewHub wires a hub to the encounter event bus.
func NewHub(bus *event.Bus, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		bus:        bus,
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// add hands a freshly upgraded client to the hub. It reports false once the
// hub has shut down; the caller must close the connection itself then.
func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// remove detaches a client, directly if the hub has already shut down.
func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		h.drop(client)
	}
}

// Run drives the hub until the context is cancelled. Events dropped because
// a client's send buffer is full disconnect that client; the next state
// query resynchronizes it.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	events, cancel := h.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.drop(client)
		case evt, ok := <-events:
			if !ok {
				h.closeAll()
				return
			}
			h.broadcast(evt)
		}
	}
}

func (h *Hub) broadcast(evt event.Event) {
	message, err := json.Marshal(Response{Type: ResponseEvent, Payload: evt})
	if err != nil {
		h.logger.Printf("marshal event %s: %v", evt.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if !client.watches(evt.EncounterID) {
			continue
		}
		select {
		case client.send <- message:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}
