package model

import "sort"

// GuestName is the single shared identity used by every anonymous session
const GuestName = "guest"

// Rating constants
const (
	InitialRating = 1500
	MinRating     = 1000
	RatingDelta   = 15
)

// ConnID identifies one live connection
type ConnID string

// Account is a registered identity with persistent stats.
// Guests never get an Account.
type Account struct {
	Name     string
	Password string
	Info     string
	Wins     int
	Losses   int
	Rating   int
	Quiet    bool
	Blocked  map[string]bool

	// Runtime state, never persisted
	Conn     ConnID
	Activity Activity
}

// NewAccount creates an account with default stats
func NewAccount(name, password string) *Account {
	return &Account{
		Name:     name,
		Password: password,
		Rating:   InitialRating,
		Blocked:  make(map[string]bool),
	}
}

// Online reports whether the account is bound to a live connection
func (a *Account) Online() bool {
	return a.Conn != ""
}

// IsBlocking reports whether this account suppresses messages from sender
func (a *Account) IsBlocking(sender string) bool {
	return a.Blocked[sender]
}

// BlockedNames returns the block set in sorted order
func (a *Account) BlockedNames() []string {
	names := make([]string, 0, len(a.Blocked))
	for name, blocked := range a.Blocked {
		if blocked {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// RecordWin adds a win and raises the rating
func (a *Account) RecordWin() {
	a.Wins++
	a.Rating += RatingDelta
}

// RecordLoss adds a loss and lowers the rating, never below MinRating
func (a *Account) RecordLoss() {
	a.Losses++
	a.Rating = max(MinRating, a.Rating-RatingDelta)
}

// Clone returns a deep copy safe to hand outside the owning registry
func (a *Account) Clone() Account {
	c := *a
	c.Blocked = make(map[string]bool, len(a.Blocked))
	for name, blocked := range a.Blocked {
		c.Blocked[name] = blocked
	}
	return c
}

// ActivityKind describes what an identity is currently doing
type ActivityKind string

const (
	ActivityIdle      ActivityKind = "idle"
	ActivityPlaying   ActivityKind = "playing"
	ActivityObserving ActivityKind = "observing"
)

// Activity is the current activity plus the match it refers to
type Activity struct {
	Kind    ActivityKind
	MatchID MatchID
}

// Idle returns the idle activity
func Idle() Activity {
	return Activity{Kind: ActivityIdle}
}

// Playing returns the activity for playing in a match
func Playing(id MatchID) Activity {
	return Activity{Kind: ActivityPlaying, MatchID: id}
}

// Observing returns the activity for observing a match
func Observing(id MatchID) Activity {
	return Activity{Kind: ActivityObserving, MatchID: id}
}

// IsIdle reports whether the activity is idle (the zero value counts as idle)
func (a Activity) IsIdle() bool {
	return a.Kind == ActivityIdle || a.Kind == ""
}

// IsPlaying reports whether the activity is playing in a match
func (a Activity) IsPlaying() bool {
	return a.Kind == ActivityPlaying
}

// IsObserving reports whether the activity is observing a match
func (a Activity) IsObserving() bool {
	return a.Kind == ActivityObserving
}

// Presence is a point-in-time view of one authenticated connection
type Presence struct {
	Name     string
	Conn     ConnID
	Guest    bool
	Quiet    bool
	Activity Activity
}

// Roster separates named online users from the aggregated guest count
type Roster struct {
	Users  []Presence
	Guests int
}
