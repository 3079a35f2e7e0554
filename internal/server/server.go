package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/mcoot/gomoku-server/internal/dependencies/idgen"
	"github.com/mcoot/gomoku-server/internal/services/account"
	"github.com/mcoot/gomoku-server/internal/services/match"
	"github.com/mcoot/gomoku-server/internal/session"
)

// Config holds configuration for the telnet server
type Config struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	SendBuffer     int
	MaxConnections int // 0 means unlimited

	MaintenanceInterval time.Duration
	TimeoutInterval     time.Duration
	AutosaveInterval    time.Duration // 0 disables autosave
	ShutdownTimeout     time.Duration
}

// DefaultConfig returns sensible defaults for server configuration
func DefaultConfig() Config {
	return Config{
		Host:                "",
		Port:                8023,
		ReadTimeout:         10 * time.Second,
		WriteTimeout:        10 * time.Second,
		SendBuffer:          64,
		MaintenanceInterval: 30 * time.Second,
		TimeoutInterval:     time.Second,
		AutosaveInterval:    300 * time.Second,
		ShutdownTimeout:     10 * time.Second,
	}
}

// Saver persists the in-memory state
type Saver interface {
	Save(ctx context.Context) error
}

// Server owns the listening socket, the live connections and the
// background sweeps
type Server struct {
	config   Config
	hub      *Hub
	manager  *session.Manager
	accounts *account.Directory
	matches  *match.Registry
	saver    Saver
	ids      idgen.Generator
	logger   *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a server. hub must be the notifier the session manager was
// built with. saver may be nil.
func New(
	config Config,
	hub *Hub,
	manager *session.Manager,
	accounts *account.Directory,
	matches *match.Registry,
	saver Saver,
	ids idgen.Generator,
	logger *slog.Logger,
) *Server {
	return &Server{
		config:   config,
		hub:      hub,
		manager:  manager,
		accounts: accounts,
		matches:  matches,
		saver:    saver,
		ids:      ids,
		logger:   logger.With(slog.String("component", "server")),
	}
}

// Start binds the listener and launches the accept loop and sweeps. It
// returns once the socket is bound.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.listener = ln
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Info("starting telnet server", slog.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go s.acceptLoop(ctx, ln)

	s.every(ctx, s.config.MaintenanceInterval, s.maintain)
	s.every(ctx, s.config.TimeoutInterval, func(context.Context) { s.manager.SweepTimeouts() })
	if s.saver != nil {
		s.every(ctx, s.config.AutosaveInterval, s.autosave)
	}
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	defer s.wg.Done()

	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			backoff = nextBackoff(backoff)
			s.logger.Warn("accept failed - retrying",
				slog.String("error", err.Error()),
				slog.Duration("backoff", backoff))
			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return
			}
		}
		backoff = 0

		s.wg.Add(1)
		go s.handleConn(ctx, nc)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	return min(2*d, time.Second)
}

// every runs fn on each tick of interval until ctx is cancelled. A
// non-positive interval disables the loop.
func (s *Server) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

// maintain purges dead connections and evicts finished matches
func (s *Server) maintain(context.Context) {
	dead := s.hub.PurgeDead()
	evicted := s.matches.Cleanup()
	if dead > 0 || evicted > 0 {
		s.logger.Debug("maintenance sweep",
			slog.Int("dead_connections", dead),
			slog.Int("matches_evicted", evicted))
	}
}

func (s *Server) autosave(ctx context.Context) {
	if err := s.saver.Save(ctx); err != nil {
		s.logger.Error("autosave failed", slog.String("error", err.Error()))
	}
}

// Broadcast delivers msg to every authenticated, non-quiet connection
// except those bound to excludeName. It returns how many accepted it.
func (s *Server) Broadcast(msg, excludeName string) int {
	conns := s.accounts.Recipients(nil, account.Filter{ExcludeName: excludeName, SkipQuiet: true})
	return s.hub.Broadcast(conns, msg)
}

// Addr returns the bound listen address, or "" before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Connections returns the number of live connections
func (s *Server) Connections() int {
	return s.hub.Count()
}

// Shutdown stops accepting, closes every connection and waits for the
// handlers to finish their disconnect paths
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln, cancel := s.listener, s.cancel
	s.mu.Unlock()
	if ln == nil {
		return nil
	}

	s.logger.Info("shutting down telnet server")
	cancel()
	_ = ln.Close()
	closed := s.hub.CloseAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	shutdownCtx := ctx
	if s.config.ShutdownTimeout > 0 {
		var stop context.CancelFunc
		shutdownCtx, stop = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer stop()
	}

	select {
	case <-done:
		s.logger.Info("telnet server stopped", slog.Int("connections_closed", closed))
		return nil
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown error: %w", shutdownCtx.Err())
	}
}
