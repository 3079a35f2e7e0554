package session

import (
	"context"
	"strconv"
	"strings"
)

func (s *Session) handleWho(_ context.Context, _ request) Reply {
	roster := s.manager.accounts.Roster()
	if len(roster.Users) == 0 && roster.Guests == 0 {
		return text(msgNoUsersOnline)
	}

	var sb strings.Builder
	sb.WriteString("Online users:\n")
	for _, u := range roster.Users {
		sb.WriteString("- " + u.Name)
		switch {
		case u.Activity.IsPlaying():
			sb.WriteString(" (playing in game " + u.Activity.MatchID.String() + ")")
		case u.Activity.IsObserving():
			sb.WriteString(" (observing game " + u.Activity.MatchID.String() + ")")
		}
		sb.WriteByte('\n')
	}
	switch {
	case roster.Guests == 1:
		sb.WriteString("- 1 guest\n")
	case roster.Guests > 1:
		sb.WriteString("- " + strconv.Itoa(roster.Guests) + " guests\n")
	}
	return text(sb.String())
}

func (s *Session) handleStats(_ context.Context, r request) Reply {
	name := r.who.Name
	if len(r.args) > 0 {
		name = r.args[0]
	}
	a, err := s.manager.accounts.Lookup(name)
	if err != nil {
		return text(userNotFound(name))
	}

	var sb strings.Builder
	sb.WriteString("Statistics for " + a.Name + ":\n")
	sb.WriteString("Wins: " + strconv.Itoa(a.Wins) + "\n")
	sb.WriteString("Losses: " + strconv.Itoa(a.Losses) + "\n")
	sb.WriteString("Rating: " + strconv.Itoa(a.Rating) + "\n")
	if a.Info != "" {
		sb.WriteString("Info: " + a.Info + "\n")
	}
	return text(sb.String())
}

func (s *Session) handleInfo(_ context.Context, r request) Reply {
	if err := s.manager.accounts.SetInfo(r.who.Name, r.rest); err != nil {
		return text(userNotFound(r.who.Name))
	}
	return text(msgInfoUpdated)
}

func (s *Session) handlePasswd(ctx context.Context, r request) Reply {
	if err := s.manager.accounts.SetPassword(r.who.Name, r.args[0]); err != nil {
		return text(userNotFound(r.who.Name))
	}
	s.manager.saveAccounts(ctx)
	return text(msgPasswordChanged)
}
