package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"vet-clinic-service/cmd/api/di"
	ginrouter "vet-clinic-service/internal/adapter/gin/router"
	"vet-clinic-service/internal/config"
)

// Server wraps the HTTP server serving the REST API.
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance with the router fully wired.
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	engine := ginrouter.New(c.Handlers, c.Tokens, c.RateLimiter, l)

	return &Server{
		Config: cfg,
		Logger: l,
		HTTP: &http.Server{
			Addr:              ":" + cfg.App.HTTPPort,
			Handler:           engine,
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))

	if err := s.HTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting new connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}
