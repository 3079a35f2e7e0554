package sse

import (
	"net/http"
	"time"
)

const (
	pingPeriod     = 30 * time.Second
	sendBufferSize = 64
	// Reconnect delay sent to browsers, in milliseconds
	retryMillis = "3000"
)

var (
	retryFrame     = []byte("retry: " + retryMillis + "\n\n")
	connectedFrame = []byte("event: connected\ndata: {\"status\":\"connected\"}\n\n")
	keepaliveFrame = []byte(": keepalive\n\n")
)

// Event is one named SSE event
type Event struct {
	Name string
	Data string
}

// Client is one spectator stream. The hub owns its queue: it alone sends
// to and closes send.
type Client struct {
	send        chan []byte
	connectedAt time.Time
}

// NewClient returns a client with an empty queue
func NewClient() *Client {
	return &Client{
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// stream writes frames and flushes; a failed write means the peer is gone
type stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s stream) write(frames ...[]byte) bool {
	for _, f := range frames {
		if _, err := s.w.Write(f); err != nil {
			return false
		}
	}
	s.flusher.Flush()
	return true
}

// ServeSSE registers a client on hub and streams to it until the request
// ends or the hub closes. initial runs after registration, so nothing
// published in between is lost; its events go out first, and done ends
// the stream straight after them.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, initial func() (events []Event, done bool)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	client := NewClient()
	hub.Register(client)
	defer hub.Unregister(client)

	out := stream{w: w, flusher: flusher}
	events, done := initial()
	frames := [][]byte{retryFrame, connectedFrame}
	for _, e := range events {
		frames = append(frames, formatSSEMessage(e.Name, e.Data))
	}
	if !out.write(frames...) || done {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		var frame []byte
		select {
		case msg, open := <-client.send:
			if !open {
				return
			}
			frame = msg
		case <-ticker.C:
			frame = keepaliveFrame
		case <-r.Context().Done():
			return
		}
		if !out.write(frame) {
			return
		}
	}
}
