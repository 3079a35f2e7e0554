package match

import (
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mcoot/gomoku-server/internal/dependencies/clock"
	"github.com/mcoot/gomoku-server/internal/model"
)

// Players is the part of the account directory the registry needs: an atomic
// check-and-mark of both players, and the result bookkeeping.
type Players interface {
	ResultRecorder
	StartMatch(id model.MatchID, black, white string) error
}

// Config holds registry settings
type Config struct {
	// DefaultTimeLimit applies when a challenge names no positive limit
	DefaultTimeLimit time.Duration
	// RecentResultsTTL is how long evicted finished matches stay queryable
	RecentResultsTTL time.Duration
}

// DefaultConfig returns the default registry settings
func DefaultConfig() Config {
	return Config{
		DefaultTimeLimit: model.DefaultTimeLimit,
		RecentResultsTTL: time.Hour,
	}
}

// Registry owns every live match. Ids start at 1, increase monotonically and
// are never reused. Finished matches stay until a Cleanup evicts them into a
// cache of recent results.
type Registry struct {
	mu      sync.Mutex
	matches map[model.MatchID]*Match
	nextID  model.MatchID

	recent  *gocache.Cache
	players Players
	clock   clock.Clock
	config  Config
	logger  *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(players Players, clk clock.Clock, config Config, logger *slog.Logger) *Registry {
	if config.DefaultTimeLimit <= 0 {
		config.DefaultTimeLimit = model.DefaultTimeLimit
	}
	ttl := config.RecentResultsTTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Registry{
		matches: make(map[model.MatchID]*Match),
		nextID:  1,
		recent:  gocache.New(ttl, time.Minute),
		players: players,
		clock:   clk,
		config:  config,
		logger:  logger.With(slog.String("component", "match")),
	}
}

// Create allocates an id, marks both players as playing it and starts the
// match. Nothing changes if either player cannot start; the error is a
// *model.PlayerError naming who.
func (r *Registry) Create(black, white string, limit time.Duration) (*Match, error) {
	if black == white {
		return nil, model.ErrSelfMatch
	}
	if limit <= 0 {
		limit = r.config.DefaultTimeLimit
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	if err := r.players.StartMatch(id, black, white); err != nil {
		return nil, err
	}
	r.nextID++

	m := New(id, black, white, limit, r.clock, r.players, r.logger)
	r.matches[id] = m

	r.logger.Info("match created",
		slog.Int("match_id", int(id)),
		slog.String("black", black),
		slog.String("white", white),
		slog.Duration("time_limit", limit),
	)
	return m, nil
}

// Get returns the live match with the given id
func (r *Registry) Get(id model.MatchID) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return m, nil
}

// List returns a snapshot of every match still in the registry, by ascending id
func (r *Registry) List() []model.MatchSnapshot {
	matches := r.all()
	result := make([]model.MatchSnapshot, 0, len(matches))
	for _, m := range matches {
		result = append(result, m.Snapshot())
	}
	return result
}

// Cleanup evicts every finished match into the recent-results cache. In-progress
// matches are never evicted. It returns the number evicted.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, m := range r.matches {
		if !m.Finished() {
			continue
		}
		r.recent.Set(strconv.Itoa(int(id)), m.Snapshot(), gocache.DefaultExpiration)
		delete(r.matches, id)
		evicted++
	}
	if evicted > 0 {
		r.logger.Debug("finished matches evicted", slog.Int("count", evicted))
	}
	return evicted
}

// Recent returns evicted finished matches still in the results cache, by ascending id
func (r *Registry) Recent() []model.MatchSnapshot {
	items := r.recent.Items()
	result := make([]model.MatchSnapshot, 0, len(items))
	for _, item := range items {
		if s, ok := item.Object.(model.MatchSnapshot); ok {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Result looks a match up among live and recently evicted matches
func (r *Registry) Result(id model.MatchID) (model.MatchSnapshot, error) {
	if m, err := r.Get(id); err == nil {
		return m.Snapshot(), nil
	}
	if v, ok := r.recent.Get(strconv.Itoa(int(id))); ok {
		if s, ok := v.(model.MatchSnapshot); ok {
			return s, nil
		}
	}
	return model.MatchSnapshot{}, model.ErrMatchNotFound
}

// CheckTimeouts polls every in-progress match and returns snapshots of those
// that ended on time during this call. The registry lock is released before
// any match is polled.
func (r *Registry) CheckTimeouts() []model.MatchSnapshot {
	var expired []model.MatchSnapshot
	for _, m := range r.all() {
		if m.CheckTimeExpired() {
			expired = append(expired, m.Snapshot())
		}
	}
	return expired
}

// Count returns the number of matches in the registry
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matches)
}

// DropObserver removes conn from the observer set of every match it is
// watching, e.g. once it has started playing. It returns how many it left.
func (r *Registry) DropObserver(conn model.ConnID) int {
	dropped := 0
	for _, m := range r.all() {
		if m.RemoveObserver(conn) {
			dropped++
		}
	}
	return dropped
}

func (r *Registry) all() []*Match {
	r.mu.Lock()
	matches := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		matches = append(matches, m)
	}
	r.mu.Unlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID() < matches[j].ID() })
	return matches
}
