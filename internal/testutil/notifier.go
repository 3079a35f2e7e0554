package testutil

import (
	"sync"

	"github.com/mcoot/gomoku-server/internal/model"
)

// RecordingNotifier captures out-of-band messages per connection.
// Use this in tests in place of the connection hub.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages map[model.ConnID][]string
	// Full makes Send drop messages for these connections
	Full map[model.ConnID]bool
}

// NewRecordingNotifier creates an empty RecordingNotifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{
		messages: make(map[model.ConnID][]string),
		Full:     make(map[model.ConnID]bool),
	}
}

// Send records msg for conn
func (n *RecordingNotifier) Send(conn model.ConnID, msg string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Full[conn] {
		return false
	}
	n.messages[conn] = append(n.messages[conn], msg)
	return true
}

// Messages returns everything sent to conn so far
func (n *RecordingNotifier) Messages(conn model.ConnID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages[conn]...)
}

// Last returns the most recent message sent to conn, or ""
func (n *RecordingNotifier) Last(conn model.ConnID) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := n.messages[conn]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

// Reset forgets every recorded message
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = make(map[model.ConnID][]string)
}
