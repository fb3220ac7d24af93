package gateway

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TopicAll is the wildcard topic: its members receive every event.
// Clients that never send a subscribe message are implicit members.
const TopicAll = "ALL"

// Hub tracks connected clients and their topic memberships, and
// delivers broadcast frames to the matching set.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	topics  map[string]map[uuid.UUID]*Client
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[uuid.UUID]*Client),
		topics:  make(map[string]map[uuid.UUID]*Client),
	}
}

// Register adds a client. Until its first subscribe message the client
// is an implicit member of the ALL topic.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.join(c, TopicAll)
	h.mu.Unlock()

	h.logger.Info("client connected", "client", c.id)
}

// Unregister removes a client and discards its topic memberships.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	for topic := range c.topics {
		h.leave(c, topic)
	}
	h.mu.Unlock()

	c.queue.Close()
	h.logger.Info("client disconnected", "client", c.id)
}

// Join subscribes a client to a symbol topic (case-insensitive). The
// first explicit join replaces the implicit ALL membership, unless the
// client explicitly joins ALL itself.
func (h *Hub) Join(c *Client, topic string) {
	topic = NormalizeTopic(topic)
	if topic == "" {
		return
	}

	h.mu.Lock()
	if !c.explicit {
		h.leave(c, TopicAll)
		c.explicit = true
	}
	h.join(c, topic)
	h.mu.Unlock()

	h.logger.Debug("client joined topic", "client", c.id, "topic", topic)
}

// Broadcast delivers a frame to every member of the symbol's topic and
// of the ALL topic. Delivery is a non-blocking queue append per client.
func (h *Hub) Broadcast(symbol string, frame []byte) int {
	symbol = NormalizeTopic(symbol)

	h.mu.RLock()
	targets := make(map[uuid.UUID]*Client, len(h.clients))
	for id, c := range h.topics[symbol] {
		targets[id] = c
	}
	for id, c := range h.topics[TopicAll] {
		targets[id] = c
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.queue.Send(frame) {
			delivered++
		}
	}
	return delivered
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NormalizeTopic maps a client-supplied symbol to its canonical topic
// name (trimmed, upper-case).
func NormalizeTopic(topic string) string {
	return strings.ToUpper(strings.TrimSpace(topic))
}

// join and leave maintain both sides of the membership. Lock held.
func (h *Hub) join(c *Client, topic string) {
	members, ok := h.topics[topic]
	if !ok {
		members = make(map[uuid.UUID]*Client)
		h.topics[topic] = members
	}
	members[c.id] = c
	c.topics[topic] = struct{}{}
}

func (h *Hub) leave(c *Client, topic string) {
	if members, ok := h.topics[topic]; ok {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.topics, topic)
}
