package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mcoot/gomoku-server/internal/api/response"
	"github.com/mcoot/gomoku-server/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == OutputJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		o.printHealth(v)
	case response.Account:
		o.printAccount(v)
	case []response.Account:
		o.printAccounts(v)
	case response.Match:
		fmt.Fprintln(o.w, matchLabel(v))
	case []response.Match:
		o.printMatches(v)
	case response.MatchDetail:
		o.printMatchDetail(v)
	case response.Who:
		o.printWho(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printHealth(h response.Health) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Connections: %d\n", h.Connections)
	fmt.Fprintf(o.w, "Matches: %d\n", h.Matches)
}

func (o *Output) printAccount(a response.Account) {
	fmt.Fprintf(o.w, "Account: %s\n", a.Name)
	fmt.Fprintf(o.w, "Wins: %d\n", a.Wins)
	fmt.Fprintf(o.w, "Losses: %d\n", a.Losses)
	fmt.Fprintf(o.w, "Rating: %d\n", a.Rating)
	if a.Info != "" {
		fmt.Fprintf(o.w, "Info: %s\n", a.Info)
	}
	if a.UnreadMail > 0 {
		fmt.Fprintf(o.w, "Unread mail: %d\n", a.UnreadMail)
	}
}

func (o *Output) printAccounts(accounts []response.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(o.w, "No accounts.")
		return
	}
	fmt.Fprintf(o.w, "%-20s %6s %6s %6s\n", "NAME", "WINS", "LOSSES", "RATING")
	for _, a := range accounts {
		fmt.Fprintf(o.w, "%-20s %6d %6d %6d\n", a.Name, a.Wins, a.Losses, a.Rating)
	}
}

func (o *Output) printMatches(matches []response.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(o.w, "No matches.")
		return
	}
	for _, m := range matches {
		fmt.Fprintln(o.w, matchLabel(m))
	}
}

func (o *Output) printMatchDetail(d response.MatchDetail) {
	fmt.Fprintln(o.w, matchLabel(d.Match))
	fmt.Fprintf(o.w, "Time used: Black %ds, White %ds (limit %ds)\n",
		d.BlackElapsedSeconds, d.WhiteElapsedSeconds, d.TimeLimitSeconds)
	if d.LastMove != "" {
		fmt.Fprintf(o.w, "Last move: %s\n", d.LastMove)
	}
	fmt.Fprintln(o.w)
	for _, row := range d.Board {
		fmt.Fprintln(o.w, row)
	}
}

func (o *Output) printWho(w response.Who) {
	if len(w.Users) == 0 && w.Guests == 0 {
		fmt.Fprintln(o.w, "No users online.")
		return
	}
	for _, u := range w.Users {
		switch {
		case u.MatchID != 0 && u.Activity == string(model.ActivityPlaying):
			fmt.Fprintf(o.w, "- %s (playing in game %d)\n", u.Name, u.MatchID)
		case u.MatchID != 0:
			fmt.Fprintf(o.w, "- %s (observing game %d)\n", u.Name, u.MatchID)
		default:
			fmt.Fprintf(o.w, "- %s\n", u.Name)
		}
	}
	if w.Guests > 0 {
		fmt.Fprintf(o.w, "- %d guest(s)\n", w.Guests)
	}
}
