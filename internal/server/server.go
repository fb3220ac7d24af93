package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tokenpulse/tokenpulse/internal/cache"
	"github.com/tokenpulse/tokenpulse/internal/gateway"
	"github.com/tokenpulse/tokenpulse/internal/query"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Server is the HTTP front of the aggregator.
type Server struct {
	httpServer *http.Server
	store      cache.Store
	queries    *query.Service
	gateway    *gateway.Gateway
	logger     *slog.Logger
}

// New creates the HTTP server on the given port.
func New(port int, store cache.Store, queries *query.Service, gw *gateway.Gateway, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:   store,
		queries: queries,
		gateway: gw,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", getOnly(s.handleRoot))
	mux.HandleFunc("/healthz", getOnly(s.handleHealth))
	mux.HandleFunc("/api/token-list", getOnly(s.handleTokenList))
	mux.HandleFunc("/ws", getOnly(s.handleWS))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown or a listener
// error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the routing handler. Tests serve it directly.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "tokenpulse aggregator")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}{
		Status: "healthy",
		Checks: make(map[string]string),
	}

	if err := s.store.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.Checks["redis"] = "disconnected: " + err.Error()
	} else {
		health.Checks["redis"] = "connected"
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

func (s *Server) handleTokenList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	view, err := s.queries.GetView(r.Context(), query.Params{
		Limit:      parseLimit(q.Get("limit")),
		SortBy:     q.Get("sortBy"),
		FilterBy:   q.Get("filterBy"),
		NextCursor: q.Get("nextCursor"),
	})
	if err != nil {
		if errors.Is(err, query.ErrCatalogUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "catalog not ready, retry later")
			return
		}
		s.logger.Error("token list query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.gateway.ServeWS(w, r)
}

// parseLimit clamps the limit query parameter into [1, maxLimit],
// defaulting when absent or unparseable.
func parseLimit(raw string) int {
	if raw == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// getOnly rejects non-GET methods, matching the behavior of the
// "GET /pattern" mux registrations available from go1.22.
func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
