package server

import (
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/gomoku-server/internal/model"
)

// client is one registered connection's outbound side
type client struct {
	conn        model.ConnID
	netConn     net.Conn
	send        chan string
	connectedAt time.Time
	dead        atomic.Bool
}

// markDead flags the client after a failed write and closes the socket so
// its read loop unblocks
func (c *client) markDead() {
	if c.dead.CompareAndSwap(false, true) {
		_ = c.netConn.Close()
	}
}

// Hub tracks live connections and delivers text to them. Delivery never
// blocks: a message for a client whose buffer is full is dropped for that
// client only.
type Hub struct {
	mu         sync.RWMutex
	clients    map[model.ConnID]*client
	bufferSize int
	logger     *slog.Logger
}

// NewHub creates an empty hub whose clients buffer up to bufferSize messages
func NewHub(bufferSize int, logger *slog.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Hub{
		clients:    make(map[model.ConnID]*client),
		bufferSize: bufferSize,
		logger:     logger.With(slog.String("component", "hub")),
	}
}

// Register adds a connection to the hub
func (h *Hub) Register(conn model.ConnID, netConn net.Conn) *client {
	c := &client{
		conn:        conn,
		netConn:     netConn,
		send:        make(chan string, h.bufferSize),
		connectedAt: time.Now(),
	}

	h.mu.Lock()
	h.clients[conn] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("client registered",
		slog.String("conn_id", string(conn)),
		slog.Int("total_clients", total))
	return c
}

// Unregister removes a connection and closes its send channel, letting the
// writer drain what is already queued
func (h *Hub) Unregister(conn model.ConnID) {
	h.mu.Lock()
	c, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Debug("client unregistered",
			slog.String("conn_id", string(conn)),
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int("total_clients", total))
	}
}

// Send queues msg for conn. It reports false if conn is unknown, dead, or
// its buffer is full.
func (h *Hub) Send(conn model.ConnID, msg string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[conn]
	if !ok || c.dead.Load() {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		h.logger.Warn("message dropped - client buffer full", slog.String("conn_id", string(conn)))
		return false
	}
}

// Broadcast queues msg for every listed connection and returns how many accepted it
func (h *Hub) Broadcast(conns []model.ConnID, msg string) int {
	sent, dropped := 0, 0
	for _, conn := range conns {
		if h.Send(conn, msg) {
			sent++
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast partial failure", slog.Int("sent", sent), slog.Int("dropped", dropped))
	}
	return sent
}

// PurgeDead closes the sockets of clients whose writes failed. Their read
// loops then run the normal disconnect path. It returns the number found.
func (h *Hub) PurgeDead() int {
	h.mu.RLock()
	var dead []*client
	for _, c := range h.clients {
		if c.dead.Load() {
			dead = append(dead, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range dead {
		_ = c.netConn.Close()
	}
	if len(dead) > 0 {
		h.logger.Info("dead clients purged", slog.Int("count", len(dead)))
	}
	return len(dead)
}

// CloseAll closes every registered socket
func (h *Hub) CloseAll() int {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.netConn.Close()
	}
	return len(clients)
}

// Count returns the number of registered connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
