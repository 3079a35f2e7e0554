package match

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/gomoku-server/internal/dependencies/clock"
	"github.com/mcoot/gomoku-server/internal/model"
)

// ResultRecorder receives the outcome of a finished match. It is called
// exactly once per match, with the match's lock held.
type ResultRecorder interface {
	RecordResult(id model.MatchID, winner, loser string)
}

// Match is one game between two accounts. Every state-changing method holds
// the match lock for its whole duration, so moves, resignations, disconnects
// and timeout polls on the same board are linearized.
type Match struct {
	mu sync.Mutex

	id           model.MatchID
	black        string
	white        string
	board        model.Board
	turn         model.Color
	status       model.MatchStatus
	winner       string
	reason       model.EndReason
	blackElapsed time.Duration
	whiteElapsed time.Duration
	limit        time.Duration
	lastMoveAt   time.Time
	lastMove     *model.Position
	moves        int
	observers    []model.ConnID
	startedAt    time.Time
	finishedAt   time.Time

	clock   clock.Clock
	results ResultRecorder
	logger  *slog.Logger
}

// New creates an in-progress match with black to move. A non-positive
// limit falls back to model.DefaultTimeLimit.
func New(id model.MatchID, black, white string, limit time.Duration, clk clock.Clock, results ResultRecorder, logger *slog.Logger) *Match {
	if limit <= 0 {
		limit = model.DefaultTimeLimit
	}
	now := clk.Now()
	return &Match{
		id:         id,
		black:      black,
		white:      white,
		turn:       model.Black,
		status:     model.MatchInProgress,
		limit:      limit,
		lastMoveAt: now,
		startedAt:  now,
		clock:      clk,
		results:    results,
		logger:     logger,
	}
}

// ID returns the match id
func (m *Match) ID() model.MatchID {
	return m.id
}

// ApplyMove places the mover's stone at pos.
//
// It fails without changing anything if the match is finished, name is not a
// player, it is not name's turn, or the cell is off the board or occupied.
// Otherwise the time since the last move is charged to the mover; if that
// exceeds the limit the match ends for the opponent and ErrTimeExpired is
// returned alongside the final snapshot.
func (m *Match) ApplyMove(name string, pos model.Position) (model.MatchSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == model.MatchFinished {
		return m.snapshotLocked(), model.ErrMatchFinished
	}
	color := m.colorOf(name)
	if color == model.Empty {
		return m.snapshotLocked(), model.ErrNotAPlayer
	}
	if color != m.turn {
		return m.snapshotLocked(), model.ErrNotYourTurn
	}
	if !pos.Valid() {
		return m.snapshotLocked(), model.ErrOutOfBounds
	}
	if !m.board.IsEmpty(pos) {
		return m.snapshotLocked(), model.ErrCellOccupied
	}

	now := m.clock.Now()
	elapsed := m.addElapsed(color, now.Sub(m.lastMoveAt))
	if elapsed > m.limit {
		m.endGame(color.Opponent(), model.EndTimeout)
		return m.snapshotLocked(), model.ErrTimeExpired
	}

	m.board[pos.Row][pos.Col] = color
	m.moves++
	m.lastMove = &pos
	m.lastMoveAt = now

	if m.board.HasRun(pos, model.WinLength) {
		m.endGame(color, model.EndFiveInARow)
	} else {
		m.turn = color.Opponent()
	}
	return m.snapshotLocked(), nil
}

// CheckTimeExpired ends the match for the waiting side if the side to move
// has used more than the limit, counting the time since the last move.
// It reports whether this call ended the match.
func (m *Match) CheckTimeExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == model.MatchFinished {
		return false
	}
	used := m.elapsedOf(m.turn) + m.clock.Since(m.lastMoveAt)
	if used <= m.limit {
		return false
	}
	m.addElapsed(m.turn, m.clock.Since(m.lastMoveAt))
	m.lastMoveAt = m.clock.Now()
	m.endGame(m.turn.Opponent(), model.EndTimeout)
	return true
}

// Resign ends the match in favor of name's opponent
func (m *Match) Resign(name string) (model.MatchSnapshot, error) {
	return m.forfeit(name, model.EndResignation)
}

// PlayerDisconnected ends the match in favor of the player who stayed
func (m *Match) PlayerDisconnected(name string) (model.MatchSnapshot, error) {
	return m.forfeit(name, model.EndDisconnect)
}

func (m *Match) forfeit(name string, reason model.EndReason) (model.MatchSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == model.MatchFinished {
		return m.snapshotLocked(), model.ErrMatchFinished
	}
	color := m.colorOf(name)
	if color == model.Empty {
		return m.snapshotLocked(), model.ErrNotAPlayer
	}
	m.endGame(color.Opponent(), reason)
	return m.snapshotLocked(), nil
}

// endGame is the only path to the finished state. Must be called with m.mu held.
func (m *Match) endGame(winner model.Color, reason model.EndReason) {
	if m.status == model.MatchFinished {
		return
	}
	m.status = model.MatchFinished
	m.winner = m.nameOf(winner)
	m.reason = reason
	m.finishedAt = m.clock.Now()

	if m.results != nil {
		m.results.RecordResult(m.id, m.winner, m.nameOf(winner.Opponent()))
	}

	m.logger.Info("match finished",
		slog.Int("match_id", int(m.id)),
		slog.String("winner", m.winner),
		slog.String("reason", string(reason)),
		slog.Int("moves", m.moves),
	)
}

// AddObserver adds conn to the observer set. It reports whether conn was newly added.
func (m *Match) AddObserver(conn model.ConnID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.observers {
		if c == conn {
			return false
		}
	}
	m.observers = append(m.observers, conn)
	return true
}

// RemoveObserver drops conn from the observer set. It reports whether conn was present.
func (m *Match) RemoveObserver(conn model.ConnID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.observers {
		if c == conn {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return true
		}
	}
	return false
}

// IsObserving reports whether conn is in the observer set
func (m *Match) IsObserving(conn model.ConnID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.observers {
		if c == conn {
			return true
		}
	}
	return false
}

// Observers returns a copy of the observer set in join order
func (m *Match) Observers() []model.ConnID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ConnID(nil), m.observers...)
}

// Snapshot returns a consistent copy of the match state
func (m *Match) Snapshot() model.MatchSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Finished reports whether the match has concluded
func (m *Match) Finished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == model.MatchFinished
}

func (m *Match) snapshotLocked() model.MatchSnapshot {
	s := model.MatchSnapshot{
		ID:           m.id,
		Black:        m.black,
		White:        m.white,
		Board:        m.board,
		Turn:         m.turn,
		Status:       m.status,
		Winner:       m.winner,
		Reason:       m.reason,
		BlackElapsed: m.blackElapsed,
		WhiteElapsed: m.whiteElapsed,
		TimeLimit:    m.limit,
		Moves:        m.moves,
		Observers:    append([]model.ConnID(nil), m.observers...),
		StartedAt:    m.startedAt,
		FinishedAt:   m.finishedAt,
	}
	if m.lastMove != nil {
		last := *m.lastMove
		s.LastMove = &last
	}
	return s
}

func (m *Match) colorOf(name string) model.Color {
	switch name {
	case m.black:
		return model.Black
	case m.white:
		return model.White
	default:
		return model.Empty
	}
}

func (m *Match) nameOf(c model.Color) string {
	if c == model.Black {
		return m.black
	}
	return m.white
}

func (m *Match) elapsedOf(c model.Color) time.Duration {
	if c == model.Black {
		return m.blackElapsed
	}
	return m.whiteElapsed
}

func (m *Match) addElapsed(c model.Color, d time.Duration) time.Duration {
	if c == model.Black {
		m.blackElapsed += d
		return m.blackElapsed
	}
	m.whiteElapsed += d
	return m.whiteElapsed
}
