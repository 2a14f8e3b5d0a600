package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jlin/opinion-data/internal/connection"
	"github.com/jlin/opinion-data/internal/store"
	"github.com/jlin/opinion-data/internal/topic"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8000,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		DefaultLimit: 50,
		MaxLimit:     200,
	}
}

// StatusSource reports stream connection health.
type StatusSource interface {
	Status() connection.Status
}

// Server exposes the topic cache over HTTP.
type Server struct {
	cfg    Config
	topics *topic.Service
	store  *store.Store
	stream StatusSource
	logger *slog.Logger

	httpServer *http.Server
}

// New creates an HTTP server. The stream source may be nil when the
// service runs without a WebSocket connection.
func New(cfg Config, topics *topic.Service, st *store.Store, stream StatusSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 200
	}

	s := &Server{
		cfg:    cfg,
		topics: topics,
		store:  st,
		stream: stream,
		logger: logger,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// routes builds the request mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/topics", s.handleListTopics)
	mux.HandleFunc("GET /api/v1/topics/search", s.handleSearchTopics)
	mux.HandleFunc("POST /api/v1/topics/filter", s.handleFilterTopics)
	mux.HandleFunc("GET /api/v1/topics/{id}", s.handleGetTopic)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /debug/cache", s.handleCacheDebug)

	return mux
}

// Handler returns the request handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("http server error", "err", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
