package sse

import (
	"io"
	"log/slog"
	"testing"

	"github.com/mcoot/gomoku-server/internal/model"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name  string
		event string
		data  string
		want  string
	}{
		{"single line", "status", "White to move", "event: status\ndata: White to move\n\n"},
		{"board fragment", "board", "<table>\n<tr><td>X</td></tr>\n</table>",
			"event: board\ndata: <table>\ndata: <tr><td>X</td></tr>\ndata: </table>\n\n"},
		{"empty", "finished", "", "event: finished\ndata: \n\n"},
		{"trailing newline", "status", "Black to move\n", "event: status\ndata: Black to move\n\n"},
		{"crlf", "status", "Game over\r\nalice wins", "event: status\ndata: Game over\ndata: alice wins\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(formatSSEMessage(tt.event, tt.data)); got != tt.want {
				t.Errorf("formatSSEMessage(%q, %q) = %q, want %q", tt.event, tt.data, got, tt.want)
			}
		})
	}
}

func nopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub(1, nopLogger())
	defer hub.Close()

	client := NewClient()
	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.BroadcastEvent("test-event", "test data")

	select {
	case msg := <-client.send:
		expected := "event: test-event\ndata: test data\n\n"
		if string(msg) != expected {
			t.Errorf("client received %q, want %q", string(msg), expected)
		}
	default:
		t.Error("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(1, nopLogger())
	defer hub.Close()

	client := NewClient()
	hub.Register(client)
	hub.Unregister(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel still open after unregister")
	}
}

func TestHub_FullClientMissesEvent(t *testing.T) {
	hub := NewHub(1, nopLogger())
	defer hub.Close()

	slow := NewClient()
	fast := NewClient()
	hub.Register(slow)
	hub.Register(fast)

	for range sendBufferSize {
		hub.BroadcastEvent("board", "x")
	}
	<-fast.send
	hub.BroadcastEvent("board", "last")

	if len(slow.send) != sendBufferSize {
		t.Errorf("slow client has %d queued, want %d", len(slow.send), sendBufferSize)
	}
	if len(fast.send) != sendBufferSize {
		t.Errorf("fast client has %d queued, want %d", len(fast.send), sendBufferSize)
	}
}

func TestHub_CloseDrainsThenEnds(t *testing.T) {
	hub := NewHub(1, nopLogger())
	client := NewClient()
	hub.Register(client)

	hub.BroadcastEvent("finished", "done")
	hub.Close()
	hub.Close()

	if msg, ok := <-client.send; !ok || string(msg) != "event: finished\ndata: done\n\n" {
		t.Errorf("first receive = %q, %v; want the finished event", string(msg), ok)
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel still open after close")
	}

	late := NewClient()
	hub.Register(late)
	if _, ok := <-late.send; ok {
		t.Error("client registered on a closed hub got an open channel")
	}
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(nopLogger())

	hub1 := manager.GetOrCreateHub(1)
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}

	// Getting again should return the same hub
	if hub2 := manager.GetOrCreateHub(1); hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same match")
	}

	if hub3 := manager.GetOrCreateHub(2); hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different match")
	}
	if manager.HubCount() != 2 {
		t.Errorf("HubCount() = %d, want 2", manager.HubCount())
	}
}

func TestHubManager_RemoveHub(t *testing.T) {
	manager := NewHubManager(nopLogger())

	hub := manager.GetOrCreateHub(1)
	client := NewClient()
	hub.Register(client)

	manager.RemoveHub(1)

	if manager.GetHub(1) != nil {
		t.Error("Hub still exists after RemoveHub")
	}
	if _, ok := <-client.send; ok {
		t.Error("client still connected after RemoveHub")
	}

	// Removing non-existent hub should not panic
	manager.RemoveHub(99)
}

func TestHubManager_Release(t *testing.T) {
	manager := NewHubManager(nopLogger())
	hub := manager.GetOrCreateHub(1)
	client := NewClient()
	hub.Register(client)

	manager.Release(1)
	if manager.GetHub(1) == nil {
		t.Fatal("hub with a client was released")
	}

	hub.Unregister(client)
	manager.Release(1)
	if manager.GetHub(1) != nil {
		t.Error("empty hub survived Release")
	}
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(nopLogger())

	manager.GetOrCreateHub(model.MatchID(1))
	active := manager.GetOrCreateHub(model.MatchID(2))
	active.Register(NewClient())

	if removed := manager.CleanupEmptyHubs(); removed != 1 {
		t.Errorf("CleanupEmptyHubs() = %d, want 1", removed)
	}
	if manager.GetHub(1) != nil {
		t.Error("Empty hub still exists after cleanup")
	}
	if manager.GetHub(2) == nil {
		t.Error("Active hub was removed during cleanup")
	}
}
