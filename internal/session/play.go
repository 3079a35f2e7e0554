package session

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/gomoku-server/internal/model"
)

func (s *Session) handleGame(_ context.Context, _ request) Reply {
	games := s.manager.matches.List()
	if len(games) == 0 {
		return text(msgNoGames)
	}
	var sb strings.Builder
	sb.WriteString("Current games:\n")
	for _, g := range games {
		sb.WriteString(g.Summary())
		sb.WriteByte('\n')
	}
	return text(sb.String())
}

func (s *Session) handleMatch(_ context.Context, r request) Reply {
	opponent, color := r.args[0], r.args[1]

	limit := time.Duration(0)
	if len(r.args) > 2 {
		seconds, err := strconv.Atoi(r.args[2])
		if err != nil {
			return text(msgInvalidTimeLimit)
		}
		limit = time.Duration(seconds) * time.Second
	}

	if r.who.Guest {
		return text(msgGuestCannotPlay)
	}
	if opponent == r.who.Name {
		return text(msgSelfMatch)
	}
	if color != "b" && color != "w" {
		return text(msgBadColor)
	}
	if r.who.Activity.IsPlaying() {
		return text(msgAlreadyInGame)
	}
	target, err := s.manager.accounts.Lookup(opponent)
	if err != nil {
		return text(userNotFound(opponent))
	}

	black, white := r.who.Name, opponent
	if color == "w" {
		black, white = opponent, r.who.Name
	}

	m, err := s.manager.matches.Create(black, white, limit)
	if err != nil {
		return text(s.matchRefusal(err, opponent))
	}

	// Both players stop observing whatever they were watching. The
	// opponent's session may be starting to observe concurrently; it checks
	// its activity again after joining, so sweeping here covers both orders.
	s.manager.matches.DropObserver(s.conn)
	if target.Conn != "" {
		s.manager.matches.DropObserver(target.Conn)
	}

	snap := m.Snapshot()
	msg := gameStarted(snap) + "\n\n" + snap.Render()
	if conn, ok := s.manager.accounts.ConnOf(opponent); ok {
		s.manager.notifier.Send(conn, msg)
	}
	s.manager.publish(snap)
	return text(msg)
}

func (s *Session) matchRefusal(err error, opponent string) string {
	var pe *model.PlayerError
	if !errors.As(err, &pe) {
		s.logger.Error("failed to create match", slog.String("error", err.Error()))
		return msgAlreadyInGame
	}
	if pe.Name != opponent {
		return msgAlreadyInGame
	}
	switch {
	case errors.Is(err, model.ErrAccountNotFound):
		return userNotFound(opponent)
	case errors.Is(err, model.ErrAlreadyPlaying):
		return opponent + " is already in a game."
	default:
		return opponent + " is not online."
	}
}

func (s *Session) stopObserving(conn model.ConnID, activity model.Activity) {
	if !activity.IsObserving() {
		return
	}
	if m, err := s.manager.matches.Get(activity.MatchID); err == nil {
		m.RemoveObserver(conn)
	}
}

func (s *Session) handleMove(_ context.Context, r request, token string) string {
	if !r.who.Activity.IsPlaying() {
		return msgMoveNotInGame
	}
	pos, err := model.ParsePosition(token)
	if err != nil {
		return msgOutOfBounds
	}
	m, err := s.manager.matches.Get(r.who.Activity.MatchID)
	if err != nil {
		s.manager.accounts.ClearActivity(s.conn, r.who.Activity)
		return msgGameNotFound
	}

	name := r.who.Name
	snap, err := m.ApplyMove(name, pos)
	switch {
	case errors.Is(err, model.ErrMatchFinished):
		return "This game is already over. The winner was " + snap.Winner + "."
	case errors.Is(err, model.ErrNotYourTurn):
		return msgNotYourTurn
	case errors.Is(err, model.ErrCellOccupied):
		return msgOccupied
	case errors.Is(err, model.ErrOutOfBounds):
		return msgOutOfBounds
	case errors.Is(err, model.ErrTimeExpired):
		s.manager.notifyMatch(snap, name, timeoutEnded(snap.Winner))
		s.manager.publish(snap)
		return "Time expired. " + snap.Winner + " wins on time."
	case err != nil:
		return msgNotInGame
	}

	board := snap.Render()
	notice := name + " played at " + pos.String()
	reply := board
	if snap.Finished() {
		notice += "\n" + wonGame(snap.Winner)
		reply += "\n" + wonGame(snap.Winner)
	}
	s.manager.notifyMatch(snap, name, notice+"\n\n"+board)
	s.manager.publish(snap)
	return reply
}

func (s *Session) handleResign(_ context.Context, r request) Reply {
	if !r.who.Activity.IsPlaying() {
		return text(msgNotInGame)
	}
	m, err := s.manager.matches.Get(r.who.Activity.MatchID)
	if err != nil {
		s.manager.accounts.ClearActivity(s.conn, r.who.Activity)
		return text(msgGameNotFound)
	}
	snap, err := m.Resign(r.who.Name)
	if err != nil {
		return text(msgNotInGame)
	}
	s.manager.notifyMatch(snap, r.who.Name, r.who.Name+" has resigned the game.")
	s.manager.publish(snap)
	return text(msgResigned)
}

func (s *Session) handleRefresh(_ context.Context, r request) Reply {
	a := r.who.Activity
	if !a.IsPlaying() && !a.IsObserving() {
		return text(msgNotInOrObserving)
	}
	m, err := s.manager.matches.Get(a.MatchID)
	if err != nil {
		s.manager.accounts.ClearActivity(s.conn, a)
		return text(msgGameNotFound)
	}
	return text(m.Snapshot().Render())
}

func (s *Session) handleObserve(_ context.Context, r request) Reply {
	id, err := strconv.Atoi(r.args[0])
	if err != nil {
		return text(msgInvalidGameNumber)
	}
	if r.who.Activity.IsPlaying() {
		return text(msgObserveWhilePlay)
	}
	m, err := s.manager.matches.Get(model.MatchID(id))
	if err != nil {
		return text(gameNotFound(id))
	}

	// The identity may have been challenged since the request was read
	prev, err := s.manager.accounts.BeginObserving(s.conn, m.ID())
	if err != nil {
		return text(msgObserveWhilePlay)
	}
	if prev.IsObserving() && prev.MatchID != m.ID() {
		s.stopObserving(s.conn, prev)
	}
	m.AddObserver(s.conn)
	if !s.manager.accounts.IsObserving(s.conn, m.ID()) {
		// A challenge landed after BeginObserving
		m.RemoveObserver(s.conn)
		return text(msgObserveWhilePlay)
	}

	return text("You are now observing game " + m.ID().String() + ".\n\n" + m.Snapshot().Render())
}

func (s *Session) handleUnobserve(_ context.Context, _ request) Reply {
	prev, err := s.manager.accounts.StopObserving(s.conn)
	if err != nil || !prev.IsObserving() {
		return text(msgNotObservingAny)
	}
	s.stopObserving(s.conn, prev)
	return text(msgUnobserved)
}
