package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/stoneveil/bastion/internal/platform/timeouts"
)

const (
	// pingPeriod must be shorter than the pong timeout.
	pingPeriod = (timeouts.WebsocketPong * 9) / 10
	// maxMessageSize bounds inbound command frames.
	maxMessageSize = 4096
)

// Client is one websocket connection. Commands are handled on the read
// pump's goroutine; outbound frames go through the buffered send channel so
// the hub never blocks on a slow peer.
type Client struct {
	id      string
	conn    *websocket.Conn
	hub     *Hub
	handler *Handler
	send    chan []byte
	locale  string

	mu       sync.Mutex
	watching map[string]bool
	watchAll bool
}

func newClient(hub *Hub, handler *Handler, conn *websocket.Conn, locale string) *Client {
	return &Client{
		id:       uuid.NewString(),
		conn:     conn,
		hub:      hub,
		handler:  handler,
		send:     make(chan []byte, 256),
		locale:   locale,
		watching: make(map[string]bool),
	}
}

// watch subscribes the client to one encounter's events. Commands that bind
// the client to an encounter (spawn, join, watch) call it implicitly.
func (c *Client) watch(encounterID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watching[encounterID] = true
}

func (c *Client) unwatch(encounterID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.watching, encounterID)
}

func (c *Client) watches(encounterID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.watchAll || c.watching[encounterID]
}

// reply queues one outbound message, dropping it if the peer is too far
// behind. A dropped reply surfaces as a timeout on the caller's side.
func (c *Client) reply(response Response) {
	message, err := json.Marshal(response)
	if err != nil {
		c.handler.logger.Printf("client %s: marshal response: %v", c.id, err)
		return
	}
	select {
	case c.send <- message:
	default:
	}
}

// readPump decodes inbound commands and dispatches them until the
// connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(timeouts.WebsocketPong))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(timeouts.WebsocketPong))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.handler.logger.Printf("client %s: read: %v", c.id, err)
			}
			return
		}

		var command Command
		if err := json.Unmarshal(message, &command); err != nil {
			c.reply(Response{Type: ResponseError, Error: &Fault{
				Code:    "malformed_command",
				Message: "command is not valid JSON",
			}})
			continue
		}
		c.handler.dispatch(c, command)
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(timeouts.WebsocketWrite))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(timeouts.WebsocketWrite))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
