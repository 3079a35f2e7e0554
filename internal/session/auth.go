package session

import (
	"context"
	"log/slog"
)

func (s *Session) handleLogin(ctx context.Context, r request) Reply {
	if r.authed {
		s.logout(ctx)
	}
	if err := s.manager.accounts.Login(s.conn, r.args[0], r.args[1]); err != nil {
		s.logger.Info("login failed", slog.String("user", r.args[0]), slog.String("error", err.Error()))
		return text(msgLoginFailed)
	}
	return text("Login successful. Welcome, " + r.args[0] + "!")
}

func (s *Session) handleGuest(ctx context.Context, r request) Reply {
	if r.authed {
		s.logout(ctx)
	}
	s.manager.accounts.LoginGuest(s.conn)
	return text(msgGuestLogin)
}

func (s *Session) handleRegister(ctx context.Context, r request) Reply {
	if !r.authed || !r.who.Guest {
		return text(msgRegisterNotGuest)
	}
	name := r.args[0]
	if err := s.manager.accounts.Register(s.conn, name, r.args[1]); err != nil {
		return text(msgRegisterFailed)
	}
	s.manager.saveAccounts(ctx)
	return text("Registration successful. You are now logged in as " + name + ".")
}

func (s *Session) handleExit(_ context.Context, _ request) Reply {
	return Reply{Text: msgGoodbye, Close: true}
}
