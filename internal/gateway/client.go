package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one connected realtime subscriber.
type Client struct {
	id     uuid.UUID
	conn   *websocket.Conn
	queue  *Queue[[]byte]
	logger *slog.Logger

	// Topic memberships, guarded by the hub's lock.
	topics   map[string]struct{}
	explicit bool // true once the client has sent a subscribe message

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// subscribeMsg is the only client-to-server message: join a topic.
type subscribeMsg struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

func newClient(conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		id:     uuid.New(),
		conn:   conn,
		queue:  NewQueue[[]byte](16),
		logger: logger,
		topics: make(map[string]struct{}),
	}
}

// ID returns the client's connection identifier.
func (c *Client) ID() uuid.UUID { return c.id }

// readLoop consumes client messages until the connection drops. Only
// subscribe messages are meaningful; anything else is ignored.
func (c *Client) readLoop(hub *Hub, readTimeout time.Duration) {
	defer func() {
		hub.Unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg subscribeMsg
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "subscribe" {
			c.logger.Debug("ignoring unrecognized client message", "client", c.id)
			continue
		}
		hub.Join(c, msg.Symbol)
	}
}

// writeLoop drains the outbound queue onto the wire.
func (c *Client) writeLoop(writeTimeout time.Duration) {
	for {
		frame, ok := c.queue.Receive()
		if !ok {
			return
		}
		if err := c.write(websocket.TextMessage, frame, writeTimeout); err != nil {
			c.logger.Debug("write failed", "client", c.id, "error", err)
			return
		}
	}
}

// pingLoop keeps the connection alive; a missed pong trips the read
// deadline and tears the client down via readLoop.
func (c *Client) pingLoop(interval, writeTimeout time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil, writeTimeout); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte, timeout time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(timeout))
	return c.conn.WriteMessage(messageType, data)
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.conn.Close()
	})
}
