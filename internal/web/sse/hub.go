package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/gomoku-server/internal/model"
)

// Hub fans events out to the SSE clients watching one match. Delivery
// never blocks: a client whose buffer is full misses that event.
type Hub struct {
	matchID model.MatchID
	clients map[*Client]bool
	closed  bool
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewHub creates a new Hub for a match
func NewHub(matchID model.MatchID, logger *slog.Logger) *Hub {
	return &Hub{
		matchID: matchID,
		clients: make(map[*Client]bool),
		logger:  logger.With(slog.Int("match_id", int(matchID))),
	}
}

// Register adds a client to the hub. A client registered on a closed hub
// gets an already closed channel.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(client.send)
		return
	}
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("sse client registered", slog.Int("total_clients", clientCount))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	clientCount := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("sse client unregistered",
			slog.Duration("connection_duration", time.Since(client.connectedAt)),
			slog.Int("total_clients", clientCount))
	}
}

// Broadcast sends a message to all clients
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sentCount := 0
	droppedCount := 0
	for client := range h.clients {
		select {
		case client.send <- message:
			sentCount++
		default:
			droppedCount++
			h.logger.Warn("sse message dropped - client buffer full")
		}
	}
	if droppedCount > 0 {
		h.logger.Warn("sse broadcast partial failure",
			slog.Int("sent", sentCount),
			slog.Int("dropped", droppedCount))
	}
}

// BroadcastEvent sends an SSE event with a name and data
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Broadcast(formatSSEMessage(eventName, data))
}

// Close disconnects every client once it has drained what was already sent
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	clientCount := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", clientCount))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage frames one event. Each line of data gets its own
// "data:" field; CRs and a single trailing newline are dropped.
func formatSSEMessage(event, data string) []byte {
	data = strings.TrimSuffix(strings.ReplaceAll(data, "\r", ""), "\n")

	var sb strings.Builder
	sb.WriteString("event: " + event + "\n")
	for line := range strings.SplitSeq(data, "\n") {
		sb.WriteString("data: " + line + "\n")
	}
	sb.WriteString("\n")
	return []byte(sb.String())
}

// HubManager manages hubs for all watched matches
type HubManager struct {
	hubs   map[model.MatchID]*Hub
	mu     sync.Mutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.MatchID]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a match, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(matchID model.MatchID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[matchID]; ok {
		return hub
	}

	hub := NewHub(matchID, m.logger)
	m.hubs[matchID] = hub
	return hub
}

// GetHub returns the hub for a match, or nil if nobody is watching it
func (m *HubManager) GetHub(matchID model.MatchID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[matchID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(matchID model.MatchID) {
	m.mu.Lock()
	hub, ok := m.hubs[matchID]
	delete(m.hubs, matchID)
	m.mu.Unlock()

	if ok {
		hub.Close()
		m.logger.Info("sse hub removed", slog.Int("match_id", int(matchID)))
	}
}

// Release removes the match's hub if its last client has left
func (m *HubManager) Release(matchID model.MatchID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[matchID]; ok && hub.ClientCount() == 0 {
		hub.Close()
		delete(m.hubs, matchID)
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removedCount := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removedCount++
		}
	}
	if removedCount > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", removedCount))
	}
	return removedCount
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hubs)
}
