package server

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/testutil"
)

func pipe(t *testing.T) net.Conn {
	t.Helper()
	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})
	return local
}

func TestHub_SendQueuesForRegisteredClient(t *testing.T) {
	hub := NewHub(4, testutil.NopLogger())
	c := hub.Register("a", pipe(t))

	assert.True(t, hub.Send("a", "hello"))
	assert.False(t, hub.Send("missing", "hello"))
	assert.Equal(t, "hello", <-c.send)
	assert.Equal(t, 1, hub.Count())
}

func TestHub_FullBufferDropsForThatClientOnly(t *testing.T) {
	hub := NewHub(1, testutil.NopLogger())
	full := hub.Register("full", pipe(t))
	other := hub.Register("other", pipe(t))

	require.True(t, hub.Send("full", "first"))

	sent := hub.Broadcast([]model.ConnID{"full", "other"}, "second")

	assert.Equal(t, 1, sent)
	assert.Equal(t, "first", <-full.send)
	assert.Equal(t, "second", <-other.send)
	assert.Empty(t, full.send)
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub(4, testutil.NopLogger())
	c := hub.Register("a", pipe(t))
	require.True(t, hub.Send("a", "queued"))

	hub.Unregister("a")
	hub.Unregister("a")

	msg, ok := <-c.send
	assert.True(t, ok)
	assert.Equal(t, "queued", msg)
	_, ok = <-c.send
	assert.False(t, ok)
	assert.False(t, hub.Send("a", "late"))
	assert.Equal(t, 0, hub.Count())
}

func TestHub_DeadClientsRefuseSendsAndArePurged(t *testing.T) {
	hub := NewHub(4, testutil.NopLogger())
	c := hub.Register("a", pipe(t))
	hub.Register("b", pipe(t))

	c.markDead()

	assert.False(t, hub.Send("a", "hello"))
	assert.True(t, hub.Send("b", "hello"))
	assert.Equal(t, 1, hub.PurgeDead())
}

func TestHub_DefaultBufferSize(t *testing.T) {
	hub := NewHub(0, testutil.NopLogger())
	c := hub.Register("a", pipe(t))
	assert.Equal(t, 64, cap(c.send))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "crlf", in: "who\r\n", want: "who"},
		{name: "lf", in: "who\n", want: "who"},
		{name: "telnet negotiation", in: "\xff\xfb\x01login a b\r\n", want: "login a b"},
		{name: "control characters", in: "sh\x00out\x07 hi\n", want: "shout hi"},
		{name: "tab removed", in: "tell\tbob\n", want: "tellbob"},
		{name: "printable kept", in: "' nice move!~\n", want: "' nice move!~"},
		{name: "empty", in: "\r\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize(tt.in))
		})
	}
}
