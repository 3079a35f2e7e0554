package model

import (
	"strconv"
	"strings"
)

// BoardSize is the fixed board dimension
const BoardSize = 15

// WinLength is the minimum contiguous run that wins
const WinLength = 5

// Color is the content of a board cell, or the side a player plays
type Color int

const (
	Empty Color = iota
	Black
	White
)

// Opponent returns the other side
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// Symbol returns the cell glyph used in text renderings
func (c Color) Symbol() byte {
	switch c {
	case Black:
		return 'X'
	case White:
		return 'O'
	default:
		return '.'
	}
}

// String returns "Black", "White" or "Empty"
func (c Color) String() string {
	switch c {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return "Empty"
	}
}

// Position identifies a cell on the board
type Position struct {
	Row int // 0-indexed from top, row label 1 is index 0
	Col int // 0-indexed from left, column A is index 0
}

// ParsePosition parses a move token such as "H8" or "o15".
// It returns ErrInvalidMove when the token does not have the letter+digits
// shape and ErrOutOfBounds when it does but names a cell off the board.
func ParsePosition(token string) (Position, error) {
	if !IsMoveToken(token) {
		return Position{}, ErrInvalidMove
	}
	col := int(toUpper(token[0]) - 'A')
	row, err := strconv.Atoi(token[1:])
	if err != nil {
		return Position{}, ErrOutOfBounds
	}
	pos := Position{Row: row - 1, Col: col}
	if !pos.Valid() {
		return Position{}, ErrOutOfBounds
	}
	return pos, nil
}

// IsMoveToken reports whether token has the shape of a move: one letter then digits
func IsMoveToken(token string) bool {
	if len(token) < 2 {
		return false
	}
	c := toUpper(token[0])
	if c < 'A' || c > 'Z' {
		return false
	}
	for i := 1; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return true
}

// Valid reports whether the position is on the board
func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// String formats the position as a move token, e.g. "H8"
func (p Position) String() string {
	return string(rune('A'+p.Col)) + strconv.Itoa(p.Row+1)
}

// Board is the 15x15 grid, row-major
type Board [BoardSize][BoardSize]Color

// At returns the cell content, Empty when off the board
func (b *Board) At(p Position) Color {
	if !p.Valid() {
		return Empty
	}
	return b[p.Row][p.Col]
}

// IsEmpty reports whether the cell is on the board and unoccupied
func (b *Board) IsEmpty(p Position) bool {
	return p.Valid() && b[p.Row][p.Col] == Empty
}

// axes are the four line directions: horizontal, vertical, and both diagonals
var axes = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// HasRun reports whether the stone at p belongs to a contiguous run of at least n
// same-colored stones along any axis. The run is measured by extending outward
// from p in both directions, stopping at the board edge.
func (b *Board) HasRun(p Position, n int) bool {
	stone := b.At(p)
	if stone == Empty {
		return false
	}
	for _, axis := range axes {
		count := 1
		count += b.extend(p, axis[0], axis[1], stone)
		count += b.extend(p, -axis[0], -axis[1], stone)
		if count >= n {
			return true
		}
	}
	return false
}

func (b *Board) extend(p Position, dr, dc int, stone Color) int {
	count := 0
	next := Position{Row: p.Row + dr, Col: p.Col + dc}
	for b.At(next) == stone {
		count++
		next = Position{Row: next.Row + dr, Col: next.Col + dc}
	}
	return count
}

// Render writes the grid: a header row of column letters and one numbered
// line per row with space-separated cells.
func (b *Board) Render() string {
	var sb strings.Builder
	sb.WriteString("   ")
	for col := 0; col < BoardSize; col++ {
		if col > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte('A' + col))
	}
	sb.WriteByte('\n')
	for row := 0; row < BoardSize; row++ {
		if row < 9 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(row + 1))
		sb.WriteByte(' ')
		for col := 0; col < BoardSize; col++ {
			sb.WriteByte(b[row][col].Symbol())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
