package session

import (
	"context"
	"errors"
	"strings"

	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/services/account"
)

func (s *Session) handleShout(_ context.Context, r request) Reply {
	name := r.who.Name
	recipients := s.manager.accounts.Recipients(nil, account.Filter{
		ExcludeConn: s.conn,
		ExcludeName: name,
		Sender:      name,
		SkipQuiet:   true,
	})
	s.manager.sendAll(recipients, "[Shout] "+name+": "+r.rest)
	return text(msgMessageSent)
}

func (s *Session) handleTell(_ context.Context, r request) Reply {
	recipient := r.args[0]
	message := strings.TrimLeft(strings.TrimPrefix(r.rest, recipient), " \t")

	if !s.manager.accounts.Exists(recipient) {
		return text(userNotFound(recipient))
	}
	if s.manager.accounts.IsBlocking(recipient, r.who.Name) {
		return text(recipient + " has blocked messages from you.")
	}
	conn, ok := s.manager.accounts.ConnOf(recipient)
	if !ok {
		return text(recipient + " is offline.")
	}
	s.manager.notifier.Send(conn, "[Tell] "+r.who.Name+": "+message)
	return text("Message sent to " + recipient + ".")
}

func (s *Session) handleKibitz(_ context.Context, r request) Reply {
	if !r.who.Activity.IsObserving() {
		return text(msgNotObserving)
	}
	m, err := s.manager.matches.Get(r.who.Activity.MatchID)
	if err != nil {
		s.manager.accounts.ClearActivity(s.conn, r.who.Activity)
		return text(msgGameNotFound)
	}

	snap := m.Snapshot()
	targets := append([]model.ConnID(nil), snap.Observers...)
	for _, player := range []string{snap.Black, snap.White} {
		if conn, ok := s.manager.accounts.ConnOf(player); ok {
			targets = append(targets, conn)
		}
	}
	recipients := s.manager.accounts.Recipients(targets, account.Filter{
		ExcludeConn: s.conn,
		Sender:      r.who.Name,
		SkipQuiet:   true,
	})
	s.manager.sendAll(recipients, "[Kibitz] "+r.who.Name+": "+r.rest)
	return text(msgCommentSent)
}

func (s *Session) handleQuiet(_ context.Context, _ request) Reply {
	_ = s.manager.accounts.SetQuiet(s.conn, true)
	return text(msgQuietEnabled)
}

func (s *Session) handleNonQuiet(_ context.Context, _ request) Reply {
	_ = s.manager.accounts.SetQuiet(s.conn, false)
	return text(msgQuietDisabled)
}

func (s *Session) handleBlock(_ context.Context, r request) Reply {
	target := r.args[0]
	err := s.manager.accounts.Block(r.who.Name, target)
	switch {
	case errors.Is(err, model.ErrAlreadyBlocked):
		return text(target + " is already blocked.")
	case err != nil:
		return text(userNotFound(target))
	}
	return text("Blocked all communication from " + target + ".")
}

func (s *Session) handleUnblock(_ context.Context, r request) Reply {
	target := r.args[0]
	if err := s.manager.accounts.Unblock(r.who.Name, target); err != nil {
		return text(target + " is not blocked.")
	}
	return text("Unblocked communication from " + target + ".")
}
