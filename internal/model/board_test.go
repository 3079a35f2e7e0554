package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		token   string
		want    Position
		wantErr error
	}{
		{token: "H8", want: Position{Row: 7, Col: 7}},
		{token: "a1", want: Position{Row: 0, Col: 0}},
		{token: "O15", want: Position{Row: 14, Col: 14}},
		{token: "o015", want: Position{Row: 14, Col: 14}},
		{token: "P1", wantErr: ErrOutOfBounds},
		{token: "A0", wantErr: ErrOutOfBounds},
		{token: "A16", wantErr: ErrOutOfBounds},
		{token: "Z99999999999999999999", wantErr: ErrOutOfBounds},
		{token: "H", wantErr: ErrInvalidMove},
		{token: "8H", wantErr: ErrInvalidMove},
		{token: "H8x", wantErr: ErrInvalidMove},
		{token: "", wantErr: ErrInvalidMove},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParsePosition(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "H8", Position{Row: 7, Col: 7}.String())
	assert.Equal(t, "A1", Position{Row: 0, Col: 0}.String())
	assert.Equal(t, "O15", Position{Row: 14, Col: 14}.String())
}

func TestColorOpponent(t *testing.T) {
	assert.Equal(t, White, Black.Opponent())
	assert.Equal(t, Black, White.Opponent())
	assert.Equal(t, Empty, Empty.Opponent())
}

func place(b *Board, c Color, tokens ...string) Position {
	var last Position
	for _, tok := range tokens {
		p, err := ParsePosition(tok)
		if err != nil {
			panic(err)
		}
		b[p.Row][p.Col] = c
		last = p
	}
	return last
}

func TestHasRun(t *testing.T) {
	tests := []struct {
		name   string
		stones []string
		want   bool
	}{
		{name: "horizontal", stones: []string{"A1", "B1", "C1", "D1", "E1"}, want: true},
		{name: "vertical", stones: []string{"H4", "H5", "H6", "H7", "H8"}, want: true},
		{name: "diagonal", stones: []string{"C3", "D4", "E5", "F6", "G7"}, want: true},
		{name: "anti-diagonal", stones: []string{"K1", "J2", "I3", "H4", "G5"}, want: true},
		{name: "overline counts", stones: []string{"A8", "B8", "C8", "D8", "E8", "F8"}, want: true},
		{name: "four", stones: []string{"A1", "B1", "C1", "D1"}, want: false},
		{name: "gap", stones: []string{"A1", "B1", "D1", "E1", "C2"}, want: false},
		{name: "edge wrap", stones: []string{"L1", "M1", "N1", "O1", "A2"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Board
			last := place(&b, Black, tt.stones...)
			assert.Equal(t, tt.want, b.HasRun(last, WinLength))
		})
	}
}

func TestHasRun_MiddleStoneCompletesLine(t *testing.T) {
	var b Board
	place(&b, Black, "A1", "B1", "D1", "E1")
	last := place(&b, Black, "C1")

	assert.True(t, b.HasRun(last, WinLength))
}

func TestHasRun_OpponentBreaksLine(t *testing.T) {
	var b Board
	place(&b, Black, "A1", "B1", "D1", "E1", "F1")
	place(&b, White, "C1")

	assert.False(t, b.HasRun(Position{Row: 0, Col: 3}, WinLength))
	assert.False(t, b.HasRun(Position{Row: 5, Col: 5}, WinLength))
}

func TestRender(t *testing.T) {
	var b Board
	place(&b, Black, "A1")
	place(&b, White, "O15")

	lines := strings.Split(b.Render(), "\n")
	require.Len(t, lines, BoardSize+2)
	assert.Equal(t, "   A B C D E F G H I J K L M N O", lines[0])
	assert.Equal(t, " 1 X . . . . . . . . . . . . . . ", lines[1])
	assert.Equal(t, "15 . . . . . . . . . . . . . . O ", lines[15])
	assert.Empty(t, lines[16])
}
