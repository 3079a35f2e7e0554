package account

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/mcoot/gomoku-server/internal/model"
)

// Directory owns every Account and the mapping from live connections to the
// identity bound on them. One mutex guards both maps so they never disagree.
// Callers only ever receive copies.
type Directory struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
	conns    map[model.ConnID]*binding
	logger   *slog.Logger
}

// binding is what a connection is logged in as. Guests have no Account, so
// their quiet flag and activity live here instead.
type binding struct {
	name     string
	guest    bool
	quiet    bool
	activity model.Activity
}

// Filter narrows a fan-out to the connections that should receive it
type Filter struct {
	// ExcludeConn never receives, typically the sending connection
	ExcludeConn model.ConnID
	// ExcludeName never receives; ignored for the shared guest name
	ExcludeName string
	// Sender drops recipients whose block set contains it
	Sender string
	// SkipQuiet drops recipients in quiet mode
	SkipQuiet bool
}

// New creates an empty Directory
func New(logger *slog.Logger) *Directory {
	return &Directory{
		accounts: make(map[string]*model.Account),
		conns:    make(map[model.ConnID]*binding),
		logger:   logger.With(slog.String("component", "account")),
	}
}

// reservedNames cannot be registered: the shared guest name and the
// flat-file record markers a block list line could be mistaken for
var reservedNames = map[string]bool{
	model.GuestName: true,
	"USER_BEGIN":    true,
	"USER_END":      true,
	"blocked_begin": true,
	"blocked_end":   true,
}

// ValidUsername reports whether name may be registered: non-empty, only
// letters, digits and underscores, and not reserved.
func ValidUsername(name string) bool {
	if name == "" || reservedNames[name] {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

// Load replaces the stored accounts, e.g. from persistence at startup.
// Invalid names are skipped. It returns the number of accounts loaded.
func (d *Directory) Load(accounts []model.Account) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	loaded := 0
	for i := range accounts {
		a := accounts[i].Clone()
		if !ValidUsername(a.Name) {
			d.logger.Warn("skipping stored account with invalid name", slog.String("user", a.Name))
			continue
		}
		if existing, ok := d.accounts[a.Name]; ok {
			a.Conn = existing.Conn
			a.Activity = existing.Activity
		} else {
			a.Conn = ""
			a.Activity = model.Idle()
		}
		d.accounts[a.Name] = &a
		loaded++
	}
	return loaded
}

// Accounts returns persistable copies of every account, sorted by name,
// with runtime state cleared
func (d *Directory) Accounts() []model.Account {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := make([]model.Account, 0, len(d.accounts))
	for _, a := range d.accounts {
		c := a.Clone()
		c.Conn = ""
		c.Activity = model.Activity{}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Register creates an account and binds conn to it. Whatever conn was bound
// to before is released; a guest's observing activity carries over.
func (d *Directory) Register(conn model.ConnID, name, password string) error {
	if !ValidUsername(name) {
		return model.ErrInvalidUsername
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.accounts[name]; exists {
		return model.ErrAccountExists
	}

	account := model.NewAccount(name, password)
	account.Activity = model.Idle()
	if prev := d.unbindLocked(conn); prev != nil && prev.guest && prev.activity.IsObserving() {
		account.Activity = prev.activity
	}
	account.Conn = conn
	d.accounts[name] = account
	d.conns[conn] = &binding{name: name}

	d.logger.Info("account registered", slog.String("user", name), slog.String("conn_id", string(conn)))
	return nil
}

// Login binds conn to an existing account. Credentials are compared as
// plain strings. An account already bound to another connection is refused.
func (d *Directory) Login(conn model.ConnID, name, password string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[name]
	if !ok || account.Password != password {
		return model.ErrInvalidCredentials
	}
	if account.Online() && account.Conn != conn {
		return model.ErrAlreadyOnline
	}

	d.unbindLocked(conn)
	account.Conn = conn
	account.Activity = model.Idle()
	d.conns[conn] = &binding{name: name}

	d.logger.Info("account logged in", slog.String("user", name), slog.String("conn_id", string(conn)))
	return nil
}

// LoginGuest binds conn to the shared guest identity. It always succeeds.
func (d *Directory) LoginGuest(conn model.ConnID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.unbindLocked(conn)
	d.conns[conn] = &binding{name: model.GuestName, guest: true, activity: model.Idle()}
}

// Logout releases conn. It returns the identity that was bound, if any.
func (d *Directory) Logout(conn model.ConnID) (model.Presence, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.conns[conn]
	if !ok {
		return model.Presence{}, false
	}
	presence := d.presenceLocked(conn, b)
	d.unbindLocked(conn)

	if !b.guest {
		d.logger.Info("account logged out", slog.String("user", b.name), slog.String("conn_id", string(conn)))
	}
	return presence, true
}

// unbindLocked removes conn's binding and marks the account offline.
// Must be called with d.mu held.
func (d *Directory) unbindLocked(conn model.ConnID) *binding {
	b, ok := d.conns[conn]
	if !ok {
		return nil
	}
	delete(d.conns, conn)
	if !b.guest {
		if account, ok := d.accounts[b.name]; ok && account.Conn == conn {
			account.Conn = ""
			account.Activity = model.Idle()
		}
	}
	return b
}

// Identity returns what conn is bound to
func (d *Directory) Identity(conn model.ConnID) (model.Presence, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.conns[conn]
	if !ok {
		return model.Presence{}, false
	}
	return d.presenceLocked(conn, b), true
}

func (d *Directory) presenceLocked(conn model.ConnID, b *binding) model.Presence {
	p := model.Presence{Name: b.name, Conn: conn, Guest: b.guest, Quiet: b.quiet, Activity: b.activity}
	if !b.guest {
		if account, ok := d.accounts[b.name]; ok {
			p.Quiet = account.Quiet
			p.Activity = account.Activity
		}
	}
	if p.Activity.Kind == "" {
		p.Activity = model.Idle()
	}
	return p
}

// Lookup returns a copy of the named account
func (d *Directory) Lookup(name string) (model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[name]
	if !ok {
		return model.Account{}, model.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// Exists reports whether an account is registered under name
func (d *Directory) Exists(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.accounts[name]
	return ok
}

// ConnOf returns the connection the named account is bound to, if online
func (d *Directory) ConnOf(name string) (model.ConnID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[name]
	if !ok || !account.Online() {
		return "", false
	}
	return account.Conn, true
}

// activityLocked returns where conn's activity is stored: on the binding
// for guests, on the account otherwise. Must be called with d.mu held.
func (d *Directory) activityLocked(conn model.ConnID) (*model.Activity, error) {
	b, ok := d.conns[conn]
	if !ok {
		return nil, model.ErrConnectionNotBound
	}
	if b.guest {
		return &b.activity, nil
	}
	account, ok := d.accounts[b.name]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return &account.Activity, nil
}

// BeginObserving marks conn's identity as observing match id and returns
// what it was doing before. An identity playing a match is refused with
// model.ErrAlreadyPlaying and left unchanged.
func (d *Directory) BeginObserving(conn model.ConnID, id model.MatchID) (model.Activity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	activity, err := d.activityLocked(conn)
	if err != nil {
		return model.Activity{}, err
	}
	prev := *activity
	if prev.IsPlaying() {
		return prev, model.ErrAlreadyPlaying
	}
	*activity = model.Observing(id)
	return prev, nil
}

// StopObserving returns an observing identity to idle and reports the
// activity it had. Any other activity is returned unchanged.
func (d *Directory) StopObserving(conn model.ConnID) (model.Activity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	activity, err := d.activityLocked(conn)
	if err != nil {
		return model.Activity{}, err
	}
	prev := *activity
	if prev.IsObserving() {
		*activity = model.Idle()
	}
	return prev, nil
}

// IsObserving reports whether conn's identity is observing match id
func (d *Directory) IsObserving(conn model.ConnID, id model.MatchID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	activity, err := d.activityLocked(conn)
	return err == nil && activity.IsObserving() && activity.MatchID == id
}

// ClearActivity resets conn's identity to idle only if its activity is
// still expected, e.g. a reference to a match that has since been evicted.
// It reports whether anything changed.
func (d *Directory) ClearActivity(conn model.ConnID, expected model.Activity) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	activity, err := d.activityLocked(conn)
	if err != nil || *activity != expected {
		return false
	}
	*activity = model.Idle()
	return true
}

// StartMatch atomically marks both players as playing match id. Both must be
// registered, online and not already playing. Failures are *model.PlayerError
// naming the player at fault; black is checked before white.
func (d *Directory) StartMatch(id model.MatchID, black, white string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	players := [2]*model.Account{}
	for i, name := range [2]string{black, white} {
		account, ok := d.accounts[name]
		switch {
		case !ok:
			return &model.PlayerError{Name: name, Err: model.ErrAccountNotFound}
		case account.Activity.IsPlaying():
			return &model.PlayerError{Name: name, Err: model.ErrAlreadyPlaying}
		case !account.Online():
			return &model.PlayerError{Name: name, Err: model.ErrNotOnline}
		}
		players[i] = account
	}

	for _, account := range players {
		account.Activity = model.Playing(id)
	}
	return nil
}

// RecordResult applies a finished match's outcome: one win for winner, one
// loss for loser, and both players' activity cleared if it still points at
// the match. The match engine calls this exactly once per match.
func (d *Directory) RecordResult(id model.MatchID, winner, loser string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if account, ok := d.accounts[winner]; ok {
		account.RecordWin()
		clearPlaying(account, id)
	}
	if account, ok := d.accounts[loser]; ok {
		account.RecordLoss()
		clearPlaying(account, id)
	}

	d.logger.Info("match result recorded",
		slog.Int("match_id", int(id)),
		slog.String("winner", winner),
		slog.String("loser", loser))
}

func clearPlaying(account *model.Account, id model.MatchID) {
	if account.Activity.IsPlaying() && account.Activity.MatchID == id {
		account.Activity = model.Idle()
	}
}

// SetQuiet toggles broadcast suppression for conn's identity
func (d *Directory) SetQuiet(conn model.ConnID, quiet bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.conns[conn]
	if !ok {
		return model.ErrConnectionNotBound
	}
	if b.guest {
		b.quiet = quiet
		return nil
	}
	account, ok := d.accounts[b.name]
	if !ok {
		return model.ErrAccountNotFound
	}
	account.Quiet = quiet
	return nil
}

// Block adds target to name's block set. target must be registered.
func (d *Directory) Block(name, target string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[name]
	if !ok {
		return model.ErrAccountNotFound
	}
	if _, ok := d.accounts[target]; !ok {
		return &model.PlayerError{Name: target, Err: model.ErrAccountNotFound}
	}
	if account.IsBlocking(target) {
		return model.ErrAlreadyBlocked
	}
	account.Blocked[target] = true
	return nil
}

// Unblock removes target from name's block set
func (d *Directory) Unblock(name, target string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[name]
	if !ok {
		return model.ErrAccountNotFound
	}
	if !account.IsBlocking(target) {
		return model.ErrNotBlocked
	}
	delete(account.Blocked, target)
	return nil
}

// IsBlocking reports whether recipient has blocked sender
func (d *Directory) IsBlocking(recipient, sender string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[recipient]
	return ok && account.IsBlocking(sender)
}

// SetInfo replaces name's free-text bio
func (d *Directory) SetInfo(name, info string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[name]
	if !ok {
		return model.ErrAccountNotFound
	}
	account.Info = info
	return nil
}

// SetPassword replaces name's credential
func (d *Directory) SetPassword(name, password string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[name]
	if !ok {
		return model.ErrAccountNotFound
	}
	account.Password = password
	return nil
}

// Online returns a snapshot of every authenticated connection, sorted by name
func (d *Directory) Online() []model.Presence {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := make([]model.Presence, 0, len(d.conns))
	for conn, b := range d.conns {
		result = append(result, d.presenceLocked(conn, b))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Conn < result[j].Conn
	})
	return result
}

// Roster lists named online users with their activity and counts guests
func (d *Directory) Roster() model.Roster {
	var roster model.Roster
	for _, p := range d.Online() {
		if p.Guest {
			roster.Guests++
			continue
		}
		roster.Users = append(roster.Users, p)
	}
	return roster
}

// Recipients returns the live connections matching f. When conns is nil,
// every authenticated connection is considered; otherwise only those listed
// (unbound entries are dropped).
func (d *Directory) Recipients(conns []model.ConnID, f Filter) []model.ConnID {
	d.mu.Lock()
	defer d.mu.Unlock()

	if conns == nil {
		conns = make([]model.ConnID, 0, len(d.conns))
		for conn := range d.conns {
			conns = append(conns, conn)
		}
		sort.Slice(conns, func(i, j int) bool { return conns[i] < conns[j] })
	}

	result := make([]model.ConnID, 0, len(conns))
	seen := make(map[model.ConnID]bool, len(conns))
	for _, conn := range conns {
		b, ok := d.conns[conn]
		if !ok || seen[conn] || conn == f.ExcludeConn {
			continue
		}
		seen[conn] = true
		if !b.guest && f.ExcludeName != "" && b.name == f.ExcludeName {
			continue
		}
		p := d.presenceLocked(conn, b)
		if f.SkipQuiet && p.Quiet {
			continue
		}
		if f.Sender != "" && !b.guest {
			if account, ok := d.accounts[b.name]; ok && account.IsBlocking(f.Sender) {
				continue
			}
		}
		result = append(result, conn)
	}
	return result
}
