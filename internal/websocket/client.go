package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Authorizer reports whether parentID may listen on topic.
type Authorizer func(ctx context.Context, parentID, topic string) error

// Client is one WebSocket connection of a signed-in parent. Its
// subscriptions live exactly as long as the connection.
type Client struct {
	hub       *Hub
	conn      *ws.Conn
	send      chan []byte
	parentID  string
	authorize Authorizer

	mu     sync.RWMutex
	topics map[string]struct{}
}

func NewClient(hub *Hub, conn *ws.Conn, parentID string, authorize Authorizer) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		parentID:  parentID,
		authorize: authorize,
		topics:    make(map[string]struct{}),
	}
}

func (c *Client) Subscribe(topic string) {
	c.mu.Lock()
	c.topics[topic] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) Unsubscribe(topic string) {
	c.mu.Lock()
	delete(c.topics, topic)
	c.mu.Unlock()
}

func (c *Client) Subscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.topics[topic]
	return ok
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// command is what a client sends to change its subscriptions.
type command struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

type reply struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	Error string `json:"error,omitempty"`
}

// readPump applies subscribe/unsubscribe commands until the connection
// closes. Unknown frames are ignored.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}
		c.handle(ctx, cmd)
	}
}

func (c *Client) handle(ctx context.Context, cmd command) {
	switch cmd.Action {
	case "subscribe":
		if err := c.authorize(ctx, c.parentID, cmd.Topic); err != nil {
			c.reply(reply{Type: "subscribe_error", Topic: cmd.Topic, Error: err.Error()})
			return
		}
		c.Subscribe(cmd.Topic)
		c.reply(reply{Type: "subscribed", Topic: cmd.Topic})
	case "unsubscribe":
		c.Unsubscribe(cmd.Topic)
		c.reply(reply{Type: "unsubscribed", Topic: cmd.Topic})
	}
}

func (c *Client) reply(r reply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump drains the send channel and writes messages to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
