package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig listens on all interfaces at 8080
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server runs the admin API and spectator pages. There is no write
// timeout: spectator streams stay open and rely on keepalives.
type Server struct {
	http   *http.Server
	cfg    ServerConfig
	logger *slog.Logger

	addr   net.Addr
	served chan error
}

// NewServer creates an HTTP server for handler
func NewServer(handler http.Handler, cfg ServerConfig, logger *slog.Logger) *Server {
	// Request contexts derive from base, which is cancelled on shutdown so
	// spectator streams end instead of holding Shutdown open.
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)

	return &Server{
		http:   srv,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "http")),
	}
}

// Start binds the listen address and serves in the background. Only bind
// failures are returned.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	s.addr = ln.Addr()
	s.served = make(chan error, 1)
	s.logger.Info("HTTP server listening", slog.String("addr", s.addr.String()))

	go func() {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.served <- err
	}()
	return nil
}

// Shutdown stops accepting requests and waits up to the configured timeout
// for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		_ = s.http.Close()
		return fmt.Errorf("http shutdown: %w", err)
	}
	if s.served != nil {
		if err := <-s.served; err != nil {
			return fmt.Errorf("http serve: %w", err)
		}
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr is the bound address after Start, else the configured one
func (s *Server) Addr() string {
	if s.addr != nil {
		return s.addr.String()
	}
	return s.http.Addr
}
