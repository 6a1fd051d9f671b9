package inspect

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerConfig configures the inspector server.
type ServerConfig struct {
	// Address is the listen address (default: "localhost:6380").
	Address string

	// CheckOrigin validates the WebSocket upgrade origin.
	// Default accepts any origin: the inspector is a dev tool bound to
	// localhost, not a production surface.
	CheckOrigin func(r *http.Request) bool

	// ReadHeaderTimeout bounds header parsing (default: 5s).
	ReadHeaderTimeout time.Duration
}

// ServerOption configures the inspector server.
type ServerOption func(*ServerConfig)

// WithAddress sets the listen address.
func WithAddress(addr string) ServerOption {
	return func(c *ServerConfig) {
		c.Address = addr
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) ServerOption {
	return func(c *ServerConfig) {
		c.CheckOrigin = fn
	}
}

// defaultServerConfig returns the default inspector configuration.
func defaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:           "localhost:6380",
		CheckOrigin:       func(*http.Request) bool { return true },
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Server exposes a Hub over HTTP:
//
//	GET /events  - WebSocket stream of runtime events
//	GET /metrics - Prometheus metrics
//	GET /healthz - liveness
type Server struct {
	hub      *Hub
	config   ServerConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger

	httpServer *http.Server
}

// NewServer creates an inspector server around hub.
func NewServer(hub *Hub, opts ...ServerOption) *Server {
	config := defaultServerConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Server{
		hub:    hub,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: slog.Default().With("component", "inspect"),
	}
}

// Handler returns the inspector routes for mounting in an external router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/events", s.handleEvents)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// handleEvents upgrades the connection and streams events until the client
// disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := s.hub.attach(conn)
	defer s.hub.detach(c)

	// Drain control frames; the inspector protocol is one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ListenAndServe starts the inspector on the configured address and blocks
// until the server stops.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	s.logger.Info("inspector listening", "address", s.config.Address)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server and disconnects all clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
