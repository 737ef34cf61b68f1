package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	// Slow consumers get dropped rather than blocking the fanout.
	sendBuffer = 64
)

// Client is one live websocket subscriber attached to the hub.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewClient wraps an upgraded websocket connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn, send: make(chan []byte, sendBuffer)}
}

// Send queues an event for delivery. Returns false when the client's
// buffer is full; delivery is at most once and never blocks the caller.
func (c *Client) Send(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// WritePump drains the send queue onto the connection and keeps it alive
// with pings. It exits when the send channel closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub is the shared broadcast group for rate updates. It subscribes to the
// change feed channel on Redis and fans every event out to the current set
// of websocket subscribers. Subscribers join and leave dynamically; on join
// a subscriber pulls a full snapshot through the query path instead of
// relying on prior events, so the feed only ever carries invalidation
// signals, not state.
type Hub struct {
	redis      *goredis.Client
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a new Hub on an existing Redis client.
func NewHub(client *goredis.Client) *Hub {
	return &Hub{
		redis:      client,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Register attaches a subscriber to the broadcast group. After the hub has
// stopped this is a no-op so connection handlers never hang on shutdown.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister detaches a subscriber and closes its send queue. No-op after
// the hub has stopped; the stopping hub already closed every send queue.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run owns the client registry and the Redis subscription until ctx is
// cancelled. Returns the subscription error, if any, once stopped.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	sub := h.redis.Subscribe(ctx, Channel)
	defer sub.Close()
	events := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return ctx.Err()

		case client := <-h.register:
			h.clients[client] = struct{}{}
			slog.Info("Feed subscriber joined", slog.Int("subscribers", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			slog.Info("Feed subscriber left", slog.Int("subscribers", len(h.clients)))

		case msg, ok := <-events:
			if !ok {
				return nil
			}
			h.fanout([]byte(msg.Payload))
		}
	}
}

func (h *Hub) fanout(raw []byte) {
	for client := range h.clients {
		if !client.Send(raw) {
			// Drop the slow consumer; it can reconnect and resnapshot.
			delete(h.clients, client)
			close(client.send)
			slog.Warn("Dropped slow feed subscriber", slog.Int("subscribers", len(h.clients)))
		}
	}
}
