package response

import (
	"time"

	"github.com/mcoot/gomoku-server/internal/model"
)

// Health is the response for the health check
type Health struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Matches     int    `json:"matches"`
}

// Match represents a match summary in API responses
type Match struct {
	ID                  int        `json:"id"`
	Black               string     `json:"black"`
	White               string     `json:"white"`
	Status              string     `json:"status"`
	Turn                string     `json:"turn,omitempty"`
	Winner              string     `json:"winner,omitempty"`
	Reason              string     `json:"reason,omitempty"`
	Moves               int        `json:"moves"`
	LastMove            string     `json:"last_move,omitempty"`
	Observers           int        `json:"observers"`
	TimeLimitSeconds    int        `json:"time_limit_seconds"`
	BlackElapsedSeconds int        `json:"black_elapsed_seconds"`
	WhiteElapsedSeconds int        `json:"white_elapsed_seconds"`
	StartedAt           time.Time  `json:"started_at"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
}

// MatchFromModel converts a snapshot to a response Match
func MatchFromModel(s model.MatchSnapshot) Match {
	m := Match{
		ID:                  int(s.ID),
		Black:               s.Black,
		White:               s.White,
		Status:              string(s.Status),
		Winner:              s.Winner,
		Reason:              string(s.Reason),
		Moves:               s.Moves,
		Observers:           len(s.Observers),
		TimeLimitSeconds:    int(s.TimeLimit / time.Second),
		BlackElapsedSeconds: int(s.BlackElapsed / time.Second),
		WhiteElapsedSeconds: int(s.WhiteElapsed / time.Second),
		StartedAt:           s.StartedAt,
	}
	if !s.Finished() {
		m.Turn = s.Turn.String()
	} else {
		finished := s.FinishedAt
		m.FinishedAt = &finished
	}
	if s.LastMove != nil {
		m.LastMove = s.LastMove.String()
	}
	return m
}

// MatchesFromModel converts a list of snapshots
func MatchesFromModel(snaps []model.MatchSnapshot) []Match {
	matches := make([]Match, len(snaps))
	for i, s := range snaps {
		matches[i] = MatchFromModel(s)
	}
	return matches
}

// MatchDetail is a match with its board. Each row is a string of cell
// glyphs, top row first.
type MatchDetail struct {
	Match
	Board []string `json:"board"`
}

// MatchDetailFromModel converts a snapshot including its board
func MatchDetailFromModel(s model.MatchSnapshot) MatchDetail {
	rows := make([]string, model.BoardSize)
	for r := range model.BoardSize {
		row := make([]byte, model.BoardSize)
		for c := range model.BoardSize {
			row[c] = s.Board[r][c].Symbol()
		}
		rows[r] = string(row)
	}
	return MatchDetail{Match: MatchFromModel(s), Board: rows}
}

// Presence represents an online user
type Presence struct {
	Name     string `json:"name"`
	Activity string `json:"activity"`
	MatchID  int    `json:"match_id,omitempty"`
}

// Who is the online roster; guests are only counted
type Who struct {
	Users  []Presence `json:"users"`
	Guests int        `json:"guests"`
}

// WhoFromModel converts a roster
func WhoFromModel(r model.Roster) Who {
	users := make([]Presence, len(r.Users))
	for i, u := range r.Users {
		users[i] = Presence{
			Name:     u.Name,
			Activity: string(activityKind(u.Activity)),
			MatchID:  int(u.Activity.MatchID),
		}
	}
	return Who{Users: users, Guests: r.Guests}
}

// Account represents an account's public profile. Credentials are never exposed.
type Account struct {
	Name       string `json:"name"`
	Info       string `json:"info,omitempty"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Rating     int    `json:"rating"`
	Online     bool   `json:"online"`
	Activity   string `json:"activity"`
	MatchID    int    `json:"match_id,omitempty"`
	UnreadMail int    `json:"unread_mail,omitempty"`
}

// AccountFromModel converts a model.Account
func AccountFromModel(a model.Account) Account {
	return Account{
		Name:     a.Name,
		Info:     a.Info,
		Wins:     a.Wins,
		Losses:   a.Losses,
		Rating:   a.Rating,
		Online:   a.Online(),
		Activity: string(activityKind(a.Activity)),
		MatchID:  int(a.Activity.MatchID),
	}
}

func activityKind(a model.Activity) model.ActivityKind {
	if a.IsIdle() {
		return model.ActivityIdle
	}
	return a.Kind
}
