// Package server exposes a tools.Registry over HTTP. A gin router serves a
// health endpoint and the Connect RPC ToolService.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tailored-agentic-units/reviewkit/observability"
	"github.com/tailored-agentic-units/reviewkit/tools"
)

// Server event types.
const (
	EventRequest observability.EventType = "server.request"
	EventInvoke  observability.EventType = "server.invoke"
)

const serviceName = "reviewkit"

// Server hosts the ToolService.
type Server struct {
	cfg      Config
	registry *tools.Registry
	observer observability.Observer
	version  string
	router   *gin.Engine
	http     *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithObserver sets the observer receiving server events.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New builds a Server for registry. The listener is not opened until
// ListenAndServe.
func New(cfg Config, registry *tools.Registry, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		observer: observability.NoOpObserver{},
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.newRouter()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	health := &healthHandler{
		service: serviceName,
		version: s.version,
		tools:   func() int { return len(s.registry.List()) },
	}
	health.registerRoutes(r)

	svc := &toolService{registry: s.registry, observer: s.observer}
	for path, h := range svc.handlers() {
		r.POST(path, gin.WrapH(h))
	}
	return r
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		observability.Emit(c.Request.Context(), s.observer, observability.Event{
			Type:   EventRequest,
			Level:  observability.LevelVerbose,
			Source: "server.Server",
			Data: map[string]any{
				"method":   c.Request.Method,
				"path":     c.FullPath(),
				"status":   c.Writer.Status(),
				"duration": time.Since(start).String(),
			},
		})
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. A stop caused by Shutdown
// returns nil.
func (s *Server) ListenAndServe() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits up to the configured
// timeout for in-flight calls.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout())
	defer cancel()
	return s.http.Shutdown(ctx)
}
