package sse

import (
	"strings"
	"testing"

	"github.com/mcoot/gomoku-server/internal/model"
)

func testSnapshot() model.MatchSnapshot {
	snap := model.MatchSnapshot{
		ID:     7,
		Black:  "alice",
		White:  "bob",
		Turn:   model.White,
		Status: model.MatchInProgress,
		Moves:  1,
	}
	pos := model.Position{Row: 7, Col: 7}
	snap.Board[7][7] = model.Black
	snap.LastMove = &pos
	return snap
}

func drain(client *Client) []string {
	var msgs []string
	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				return msgs
			}
			msgs = append(msgs, string(msg))
		default:
			return msgs
		}
	}
}

func TestBroadcaster_NoSpectatorsIsNoop(t *testing.T) {
	manager := NewHubManager(nopLogger())
	broadcaster := NewBroadcaster(manager, nopLogger())

	broadcaster.PublishMatch(testSnapshot())

	if manager.HubCount() != 0 {
		t.Errorf("HubCount() = %d, want 0", manager.HubCount())
	}
}

func TestBroadcaster_PublishBoard(t *testing.T) {
	manager := NewHubManager(nopLogger())
	broadcaster := NewBroadcaster(manager, nopLogger())
	client := NewClient()
	manager.GetOrCreateHub(7).Register(client)

	broadcaster.PublishMatch(testSnapshot())

	msgs := drain(client)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1: %q", len(msgs), msgs)
	}
	if !strings.HasPrefix(msgs[0], "event: board\ndata: <div id=\"board\">") {
		t.Errorf("unexpected board event %q", msgs[0])
	}
	if !strings.Contains(msgs[0], `class="cell black last" data-pos="H8"`) {
		t.Errorf("board event does not mark H8: %q", msgs[0])
	}
	if manager.GetHub(7) == nil {
		t.Error("hub removed while match in progress")
	}
}

func TestBroadcaster_PublishFinishedClosesHub(t *testing.T) {
	manager := NewHubManager(nopLogger())
	broadcaster := NewBroadcaster(manager, nopLogger())
	client := NewClient()
	manager.GetOrCreateHub(7).Register(client)

	snap := testSnapshot()
	snap.Status = model.MatchFinished
	snap.Winner = "alice"
	snap.Reason = model.EndResignation
	broadcaster.PublishMatch(snap)

	msgs := drain(client)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2: %q", len(msgs), msgs)
	}
	want := "event: finished\ndata: FINISHED - Winner: alice (resignation)\n\n"
	if msgs[1] != want {
		t.Errorf("finished event = %q, want %q", msgs[1], want)
	}
	if manager.GetHub(7) != nil {
		t.Error("hub still registered after the match finished")
	}
}
