package sse

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/web/components"
)

// Event names sent to spectators
const (
	EventBoard    = "board"
	EventFinished = "finished"
)

// Broadcaster pushes match updates to web spectators
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// PublishMatch sends the new board to everyone watching the match. A
// finished match also gets a finished event, after which its hub closes.
func (b *Broadcaster) PublishMatch(snap model.MatchSnapshot) {
	hub := b.hubManager.GetHub(snap.ID)
	if hub == nil {
		return
	}

	for _, e := range MatchEvents(snap) {
		hub.BroadcastEvent(e.Name, e.Data)
	}
	b.logger.Debug("match published to spectators",
		slog.Int("match_id", int(snap.ID)),
		slog.Int("clients", hub.ClientCount()))
	if snap.Finished() {
		b.hubManager.RemoveHub(snap.ID)
	}
}

// MatchEvents renders the events describing snap's current state
func MatchEvents(snap model.MatchSnapshot) []Event {
	var buf bytes.Buffer
	// Rendering into a buffer only fails on writer errors
	_ = components.Board(snap).Render(context.Background(), &buf)

	events := []Event{{Name: EventBoard, Data: buf.String()}}
	if snap.Finished() {
		events = append(events, Event{Name: EventFinished, Data: components.Status(snap)})
	}
	return events
}
