// ABOUTME: Emulator orchestrator that wires store, gateway, and HTTP surface
// ABOUTME: Manages listener setup, session acceptance, and graceful shutdown

package emulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/mcburgertron/schrodinger-db/internal/config"
	"github.com/mcburgertron/schrodinger-db/internal/gateway"
	"github.com/mcburgertron/schrodinger-db/internal/inspector"
	"github.com/mcburgertron/schrodinger-db/internal/metrics"
	"github.com/mcburgertron/schrodinger-db/internal/store"
)

// Emulator orchestrates the emulator server components: the in-memory store,
// the websocket gateway, and the REST API, all served from one HTTP listener.
type Emulator struct {
	config     *config.Config
	store      *store.MemoryStore
	registry   *gateway.Registry
	dispatcher *gateway.Dispatcher
	metrics    *metrics.Metrics
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Emulator instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Emulator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st, err := store.NewMemoryStore(cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("building store from seed: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	registry := gateway.NewRegistry(m, logger)
	e := &Emulator{
		config:     cfg,
		store:      st,
		registry:   registry,
		dispatcher: gateway.NewDispatcher(registry, m, logger),
		metrics:    m,
		logger:     logger.With("component", "emulator"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", e.handleHealth)
	mux.HandleFunc("GET /gateway", e.handleGateway)
	e.registerAPIRoutes(mux)

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, m.Handler())
		logger.Info("metrics endpoint enabled", "path", cfg.Metrics.Path)
	}
	if cfg.Inspector.Enabled {
		inspector.New(st, logger).RegisterRoutes(mux)
		logger.Info("inspector enabled at /inspect")
	}

	e.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return e, nil
}

// Handler exposes the full route surface for in-process test servers.
func (e *Emulator) Handler() http.Handler {
	return e.httpServer.Handler
}

// Run starts the emulator server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (e *Emulator) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", e.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := e.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		e.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		e.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := e.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the run context is already canceled.
func (e *Emulator) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}

// Shutdown closes every live gateway session and stops the HTTP server.
func (e *Emulator) Shutdown(ctx context.Context) error {
	e.logger.Info("shutting down emulator", "live_sessions", e.registry.Len())
	e.registry.CloseAll()
	return e.httpServer.Shutdown(ctx)
}

// handleGateway upgrades the connection and runs the session until disconnect.
// The handler blocks for the lifetime of the websocket.
func (e *Emulator) handleGateway(w http.ResponseWriter, r *http.Request) {
	// Local test clients connect from arbitrary origins.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		e.logger.Warn("websocket accept failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	session := gateway.NewSession(gateway.SessionParams{
		ID:                uuid.New().String(),
		Transport:         gateway.NewWebsocketTransport(conn),
		Guilds:            e.store,
		Registry:          e.registry,
		HeartbeatInterval: e.config.Gateway.HeartbeatInterval,
		Reidentify:        e.config.Gateway.Reidentify,
		Logger:            e.logger,
	})
	if err := e.registry.Register(session); err != nil {
		e.logger.Error("session registration failed", "error", err)
		_ = conn.Close(websocket.StatusInternalError, "registration failed")
		return
	}

	session.Serve(r.Context())
}

// handleHealth returns 200 OK if the server is alive.
func (e *Emulator) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
