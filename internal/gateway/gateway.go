package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tokenpulse/tokenpulse/internal/cache"
	"github.com/tokenpulse/tokenpulse/internal/model"
)

// Config holds broadcast gateway settings.
type Config struct {
	PingInterval time.Duration // Keepalive ping cadence (default: 15s)
	ReadTimeout  time.Duration // Read deadline, refreshed on pong (default: 60s)
	WriteTimeout time.Duration // Per-frame write deadline (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval: 15 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Stats contains gateway runtime counters.
type Stats struct {
	EventsRelayed int64
	ParseErrors   int64
}

// pushFrame is the server-to-client event envelope.
type pushFrame struct {
	Type string                 `json:"type"` // Always "priceUpdate"
	Data model.PriceUpdateEvent `json:"data"`
}

// Gateway relays price update events from the cache store's broadcast
// channel to connected WebSocket clients.
type Gateway struct {
	cfg    Config
	hub    *Hub
	store  cache.Store
	logger *slog.Logger

	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	sub    cache.Subscription

	mu    sync.Mutex
	stats Stats
}

// New creates a broadcast gateway over the given store.
func New(cfg Config, store cache.Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = DefaultConfig().PingInterval
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultConfig().ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}

	return &Gateway{
		cfg:    cfg,
		hub:    NewHub(logger),
		store:  store,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks happen at the proxy layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start subscribes to the broadcast channel and begins relaying.
func (g *Gateway) Start(ctx context.Context) error {
	g.ctx, g.cancel = context.WithCancel(ctx)
	g.sub = g.store.Subscribe(g.ctx, cache.BroadcastChannel)

	g.wg.Add(1)
	go g.relayLoop()

	g.logger.Info("broadcast gateway started", "channel", cache.BroadcastChannel)
	return nil
}

// Stop closes the subscription and waits for the relay loop.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.cancel != nil {
		g.cancel()
	}
	if g.sub != nil {
		g.sub.Close()
	}

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		g.logger.Info("broadcast gateway stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Hub exposes the client registry (used by tests and stats handlers).
func (g *Gateway) Hub() *Hub { return g.hub }

// Stats returns a snapshot of the relay counters.
func (g *Gateway) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

// ServeWS upgrades an HTTP request to a realtime client connection.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(conn, g.logger)
	g.hub.Register(client)

	done := make(chan struct{})
	go client.writeLoop(g.cfg.WriteTimeout)
	go client.pingLoop(g.cfg.PingInterval, g.cfg.WriteTimeout, done)
	go func() {
		client.readLoop(g.hub, g.cfg.ReadTimeout)
		close(done)
	}()
}

func (g *Gateway) relayLoop() {
	defer g.wg.Done()

	for {
		select {
		case <-g.ctx.Done():
			return
		case payload, ok := <-g.sub.Messages():
			if !ok {
				return
			}
			g.relay(payload)
		}
	}
}

// relay parses one broadcast payload and fans it out. Malformed
// payloads are dropped after logging; they must never break the loop.
func (g *Gateway) relay(payload []byte) {
	var ev model.PriceUpdateEvent
	if err := json.Unmarshal(payload, &ev); err != nil || ev.Symbol == "" {
		g.logger.Error("dropping malformed broadcast payload", "error", err)
		g.mu.Lock()
		g.stats.ParseErrors++
		g.mu.Unlock()
		return
	}

	frame, err := json.Marshal(pushFrame{Type: "priceUpdate", Data: ev})
	if err != nil {
		g.logger.Error("encode push frame", "error", err)
		return
	}

	delivered := g.hub.Broadcast(ev.Symbol, frame)

	g.mu.Lock()
	g.stats.EventsRelayed++
	g.mu.Unlock()

	g.logger.Debug("event relayed",
		"symbol", ev.Symbol,
		"clients", delivered,
	)
}
