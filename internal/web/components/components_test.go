package components

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gomoku-server/internal/model"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		snap model.MatchSnapshot
		want string
	}{
		{
			name: "black to move",
			snap: model.MatchSnapshot{Status: model.MatchInProgress, Turn: model.Black},
			want: "Black to move",
		},
		{
			name: "white to move",
			snap: model.MatchSnapshot{Status: model.MatchInProgress, Turn: model.White},
			want: "White to move",
		},
		{
			name: "five in a row",
			snap: model.MatchSnapshot{Status: model.MatchFinished, Winner: "alice", Reason: model.EndFiveInARow},
			want: "FINISHED - Winner: alice (five in a row)",
		},
		{
			name: "timeout",
			snap: model.MatchSnapshot{Status: model.MatchFinished, Winner: "bob", Reason: model.EndTimeout},
			want: "FINISHED - Winner: bob (timeout)",
		},
		{
			name: "disconnect",
			snap: model.MatchSnapshot{Status: model.MatchFinished, Winner: "bob", Reason: model.EndDisconnect},
			want: "FINISHED - Winner: bob (disconnect)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.snap))
		})
	}
}

func TestNotFoundEscapesMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NotFound(`<script>alert("x")</script>`).Render(context.Background(), &buf))

	assert.NotContains(t, buf.String(), `<script>alert`)
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestBoardClocks(t *testing.T) {
	snap := model.MatchSnapshot{
		Status:       model.MatchInProgress,
		Turn:         model.Black,
		BlackElapsed: 42_900_000_000,
		WhiteElapsed: 3_000_000_000,
	}

	var buf bytes.Buffer
	require.NoError(t, Board(snap).Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), `<p class="clock" id="black-clock">Black time used: 42 seconds</p>`)
	assert.Contains(t, buf.String(), `<p class="clock" id="white-clock">White time used: 3 seconds</p>`)
}
