package model

import (
	"fmt"
	"strconv"
	"time"
)

// MatchID identifies a match. Ids start at 1 and are never reused.
type MatchID int

// String returns the decimal id
func (id MatchID) String() string {
	return strconv.Itoa(int(id))
}

// MatchStatus is the lifecycle state of a match
type MatchStatus string

const (
	MatchInProgress MatchStatus = "in_progress"
	MatchFinished   MatchStatus = "finished"
)

// EndReason records how a match concluded
type EndReason string

const (
	EndFiveInARow  EndReason = "five_in_a_row"
	EndResignation EndReason = "resignation"
	EndDisconnect  EndReason = "disconnect"
	EndTimeout     EndReason = "timeout"
)

// DefaultTimeLimit is the per-side clock when a challenge names none
const DefaultTimeLimit = 600 * time.Second

// MatchSnapshot is a consistent copy of a match taken under its lock
type MatchSnapshot struct {
	ID           MatchID
	Black        string
	White        string
	Board        Board
	Turn         Color
	Status       MatchStatus
	Winner       string
	Reason       EndReason
	BlackElapsed time.Duration
	WhiteElapsed time.Duration
	TimeLimit    time.Duration
	LastMove     *Position
	Moves        int
	Observers    []ConnID
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Finished reports whether the match has concluded
func (s MatchSnapshot) Finished() bool {
	return s.Status == MatchFinished
}

// PlayerName returns the account playing the given color
func (s MatchSnapshot) PlayerName(c Color) string {
	switch c {
	case Black:
		return s.Black
	case White:
		return s.White
	default:
		return ""
	}
}

// ColorOf returns the side name plays, or Empty if name is not a player
func (s MatchSnapshot) ColorOf(name string) Color {
	switch name {
	case s.Black:
		return Black
	case s.White:
		return White
	default:
		return Empty
	}
}

// Opponent returns the other player's name, or "" if name is not a player
func (s MatchSnapshot) Opponent(name string) string {
	return s.PlayerName(s.ColorOf(name).Opponent())
}

// Loser returns the name of the losing player of a finished match
func (s MatchSnapshot) Loser() string {
	if !s.Finished() {
		return ""
	}
	return s.Opponent(s.Winner)
}

// Render draws the board followed by the turn indicator and elapsed time per side
func (s MatchSnapshot) Render() string {
	return s.Board.Render() +
		"\nCurrent turn: " + s.Turn.String() +
		"\nBlack time used: " + strconv.Itoa(int(s.BlackElapsed/time.Second)) + " seconds" +
		"\nWhite time used: " + strconv.Itoa(int(s.WhiteElapsed/time.Second)) + " seconds"
}

// Summary is the one-line listing used by the game list
func (s MatchSnapshot) Summary() string {
	line := fmt.Sprintf("%d: %s (Black) vs %s (White)", s.ID, s.Black, s.White)
	if s.Finished() {
		return line + " [FINISHED - Winner: " + s.Winner + "]"
	}
	return line + " [" + s.Turn.String() + " to move]"
}
