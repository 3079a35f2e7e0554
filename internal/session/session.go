package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/gomoku-server/internal/dependencies/clock"
	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/services/account"
	"github.com/mcoot/gomoku-server/internal/services/mail"
	"github.com/mcoot/gomoku-server/internal/services/match"
)

// Notifier delivers out-of-band text to another connection. Send must not
// block; it reports whether the message was queued.
type Notifier interface {
	Send(conn model.ConnID, msg string) bool
}

// MatchPublisher is told about every match state change, e.g. to feed web
// spectators.
type MatchPublisher interface {
	PublishMatch(snapshot model.MatchSnapshot)
}

// Persister flushes account state after credential changes
type Persister interface {
	SaveAccounts(ctx context.Context) error
}

// Reply is the response to one input line
type Reply struct {
	// Text is written back to the connection. Empty means nothing is written.
	Text string
	// Close asks the caller to close the connection after writing Text
	Close bool
}

func text(s string) Reply {
	return Reply{Text: s}
}

// Config holds session settings
type Config struct {
	// MailTimeout discards an unfinished mail draft after this long without input
	MailTimeout time.Duration
}

// DefaultConfig returns default session settings
func DefaultConfig() Config {
	return Config{MailTimeout: 60 * time.Second}
}

// Manager holds the shared state every Session dispatches against
type Manager struct {
	accounts  *account.Directory
	matches   *match.Registry
	mail      *mail.Service
	notifier  Notifier
	publisher MatchPublisher
	persister Persister
	clock     clock.Clock
	config    Config
	logger    *slog.Logger
}

// NewManager creates a Manager. publisher and persister may be nil.
func NewManager(
	accounts *account.Directory,
	matches *match.Registry,
	mailService *mail.Service,
	notifier Notifier,
	publisher MatchPublisher,
	persister Persister,
	clk clock.Clock,
	config Config,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		accounts:  accounts,
		matches:   matches,
		mail:      mailService,
		notifier:  notifier,
		publisher: publisher,
		persister: persister,
		clock:     clk,
		config:    config,
		logger:    logger.With(slog.String("component", "session")),
	}
}

// NewSession creates the protocol state machine for a freshly accepted connection
func (m *Manager) NewSession(conn model.ConnID) *Session {
	return &Session{
		manager: m,
		conn:    conn,
		logger:  m.logger.With(slog.String("conn_id", string(conn))),
	}
}

// Welcome is the banner sent when a connection is accepted
func Welcome() string {
	return msgWelcome
}

// Session is one connection's protocol state machine. Its identity and
// activity live in the account directory keyed by conn; the session itself
// only tracks the mail draft sub-state and whether it has closed.
type Session struct {
	manager *Manager
	conn    model.ConnID
	logger  *slog.Logger

	mu     sync.Mutex
	draft  *draft
	closed bool
}

// draft is a mail being composed line by line
type draft struct {
	recipient string
	subject   string
	lines     []string
	touched   time.Time
}

// Conn returns the connection this session is bound to
func (s *Session) Conn() model.ConnID {
	return s.conn
}

// Composing reports whether the session is collecting a mail body
func (s *Session) Composing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft != nil
}

// Handle processes one input line and returns exactly one reply
func (s *Session) Handle(ctx context.Context, line string) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Reply{Close: true}
	}
	if s.draft != nil {
		return s.composeLine(line)
	}

	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return text(msgEmptyCommand)
	}

	p, authed := s.manager.accounts.Identity(s.conn)
	req := request{
		verb:   strings.ToLower(fields[0]),
		args:   fields[1:],
		rest:   restAfterVerb(line),
		who:    p,
		authed: authed,
	}

	if model.IsMoveToken(fields[0]) {
		if !authed {
			return text(msgLoginRequired)
		}
		return text(s.handleMove(ctx, req, fields[0]))
	}

	cmd, ok := commands[req.verb]
	if !ok {
		if !authed {
			return text(msgLoginRequired)
		}
		return text(unknownCommand(req.verb))
	}
	if cmd.auth && !authed {
		return text(msgLoginRequired)
	}
	if len(req.args) < cmd.minArgs {
		return text(cmd.usage)
	}
	if cmd.guestRefusal != "" && p.Guest {
		return text(cmd.guestRefusal)
	}

	reply := cmd.run(s, ctx, req)
	if reply.Close {
		s.closeLocked(ctx)
	}
	return reply
}

// Tick is called periodically while the connection is idle. It discards a
// mail draft that has seen no input for the configured timeout.
func (s *Session) Tick() Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil || s.manager.config.MailTimeout <= 0 {
		return Reply{}
	}
	if s.manager.clock.Since(s.draft.touched) < s.manager.config.MailTimeout {
		return Reply{}
	}
	s.logger.Info("mail draft discarded after timeout", slog.String("recipient", s.draft.recipient))
	s.draft = nil
	return text(msgMailTimedOut)
}

// Disconnect runs the teardown path for a connection that went away: a
// match in progress is forfeited, observation stops and the identity is
// released. It is safe to call more than once.
func (s *Session) Disconnect(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked(ctx)
}

func (s *Session) closeLocked(ctx context.Context) {
	if s.closed {
		return
	}
	s.closed = true
	s.draft = nil
	s.logout(ctx)
}

// logout releases the bound identity, then ends whatever it was doing.
// Releasing first means no challenge can land on it in between.
func (s *Session) logout(ctx context.Context) {
	p, ok := s.manager.accounts.Logout(s.conn)
	if !ok {
		return
	}

	switch {
	case p.Activity.IsPlaying():
		s.forfeitOnDisconnect(p)
	case p.Activity.IsObserving():
		if m, err := s.manager.matches.Get(p.Activity.MatchID); err == nil {
			m.RemoveObserver(s.conn)
		}
	}
}

func (s *Session) forfeitOnDisconnect(p model.Presence) {
	m, err := s.manager.matches.Get(p.Activity.MatchID)
	if err != nil {
		return
	}
	snap, err := m.PlayerDisconnected(p.Name)
	if err != nil {
		return
	}
	s.logger.Info("player disconnected from match",
		slog.String("user", p.Name),
		slog.Int("match_id", int(snap.ID)))

	msg := p.Name + " has disconnected. " + snap.Winner + " wins by default."
	s.manager.notifyMatch(snap, p.Name, msg)
	s.manager.publish(snap)
}

// request is one parsed input line
type request struct {
	verb   string
	args   []string
	rest   string
	who    model.Presence
	authed bool
}

// restAfterVerb returns the line with the first token and the whitespace
// after it removed
func restAfterVerb(line string) string {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return ""
	}
	return strings.TrimLeft(line[i:], " \t")
}

// notifyMatch sends msg to both players and every observer of snap, except
// the player named skip
func (m *Manager) notifyMatch(snap model.MatchSnapshot, skip, msg string) {
	targets := make([]model.ConnID, 0, len(snap.Observers)+2)
	for _, name := range []string{snap.Black, snap.White} {
		if name == skip {
			continue
		}
		if conn, ok := m.accounts.ConnOf(name); ok {
			targets = append(targets, conn)
		}
	}
	targets = append(targets, snap.Observers...)
	m.sendAll(m.accounts.Recipients(targets, account.Filter{}), msg)
}

func (m *Manager) sendAll(conns []model.ConnID, msg string) int {
	sent := 0
	for _, conn := range conns {
		if m.notifier.Send(conn, msg) {
			sent++
		}
	}
	return sent
}

func (m *Manager) publish(snap model.MatchSnapshot) {
	if m.publisher != nil {
		m.publisher.PublishMatch(snap)
	}
}

func (m *Manager) saveAccounts(ctx context.Context) {
	if m.persister == nil {
		return
	}
	if err := m.persister.SaveAccounts(ctx); err != nil {
		m.logger.Error("failed to save accounts", slog.String("error", err.Error()))
	}
}

// SweepTimeouts polls every match clock and notifies players and observers
// of the matches that ran out of time. It returns how many ended.
func (m *Manager) SweepTimeouts() int {
	expired := m.matches.CheckTimeouts()
	for _, snap := range expired {
		m.logger.Info("match ended on time",
			slog.Int("match_id", int(snap.ID)),
			slog.String("winner", snap.Winner))
		m.notifyMatch(snap, "", timeoutEnded(snap.Winner))
		m.publish(snap)
	}
	return len(expired)
}
