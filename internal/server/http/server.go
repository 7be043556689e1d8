// Package http provides the HTTP frontend for the negotiation gateway.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avnegotiate/internal/config"
	"github.com/vyrodovalexey/avnegotiate/internal/observability"
)

// ginModeOnce ensures gin.SetMode is only called once to avoid race conditions
var ginModeOnce sync.Once

// Server is the HTTP frontend. It owns a gin engine with a health
// endpoint and a catch-all route serving the negotiation handler chain,
// which is swappable at runtime for configuration reloads.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	handler    *SwappableHandler
	logger     observability.Logger
	mu         sync.Mutex
	running    bool
}

// NewServer creates a new HTTP frontend serving the given handler chain.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger observability.Logger) *Server {
	if logger == nil {
		logger = observability.NopLogger()
	}

	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:  engine,
		handler: NewSwappableHandler(handler),
		logger:  logger,
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	engine.NoRoute(gin.WrapH(s.handler))

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout.Duration(),
		WriteTimeout: cfg.WriteTimeout.Duration(),
		IdleTimeout:  cfg.IdleTimeout.Duration(),
	}

	return s
}

// Swap atomically replaces the negotiation handler chain. In-flight
// requests keep the chain they started with.
func (s *Server) Swap(handler http.Handler) {
	s.handler.Swap(handler)
}

// Start begins serving. It blocks until the listener fails or Stop is
// called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("http server starting", observability.String("address", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down, waiting up to the given timeout
// for in-flight requests.
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("http server stopping")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Engine exposes the gin engine for tests and extra route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
