// Package components holds the HTML views for web spectators
package components

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/mcoot/gomoku-server/internal/model"
)

const style = `body{font-family:sans-serif;margin:2rem}
table.board{border-collapse:collapse}
table.board th{width:1.6rem;color:#666;font-weight:normal}
table.board td{width:1.6rem;height:1.6rem;text-align:center;background:#dcb35c;border:1px solid #8a6d2f}
td.black{color:#000;font-weight:bold}
td.white{color:#fff;font-weight:bold}
td.last{outline:2px solid #c00}
.finished{color:#c00}`

// write renders a sequence of string fragments, stopping at the first error
func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

// Layout wraps body in the page shell
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		err := write(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`,
			templ.EscapeString(title), ` - Gomoku</title><style>`, style, `</style></head><body>`,
			`<header><a href="/">Gomoku Server</a></header><main>`)
		if err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</main></body></html>`)
	})
}

// Status is the one-line match state shown above the board
func Status(s model.MatchSnapshot) string {
	if s.Finished() {
		return "FINISHED - Winner: " + s.Winner + " (" + reasonText(s.Reason) + ")"
	}
	return s.Turn.String() + " to move"
}

func reasonText(r model.EndReason) string {
	switch r {
	case model.EndFiveInARow:
		return "five in a row"
	case model.EndResignation:
		return "resignation"
	case model.EndDisconnect:
		return "disconnect"
	case model.EndTimeout:
		return "timeout"
	default:
		return string(r)
	}
}

func cellClass(c model.Color) string {
	switch c {
	case model.Black:
		return "black"
	case model.White:
		return "white"
	default:
		return "empty"
	}
}

func seconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}

// Board renders the grid with status and clocks. The root element has id
// "board" so live updates can replace it whole.
func Board(s model.MatchSnapshot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var sb strings.Builder

		statusClass := "status"
		if s.Finished() {
			statusClass += " finished"
		}
		sb.WriteString(`<div id="board"><p id="match-status" class="` + statusClass + `">`)
		sb.WriteString(templ.EscapeString(Status(s)))
		sb.WriteString(`</p><table class="board"><thead><tr><th></th>`)
		for col := range model.BoardSize {
			sb.WriteString(`<th>` + string(rune('A'+col)) + `</th>`)
		}
		sb.WriteString(`</tr></thead><tbody>`)

		for row := range model.BoardSize {
			sb.WriteString(`<tr><th>` + strconv.Itoa(row+1) + `</th>`)
			for col := range model.BoardSize {
				pos := model.Position{Row: row, Col: col}
				class := "cell " + cellClass(s.Board[row][col])
				if s.LastMove != nil && *s.LastMove == pos {
					class += " last"
				}
				sb.WriteString(`<td class="` + class + `" data-pos="` + pos.String() + `">`)
				sb.WriteByte(s.Board[row][col].Symbol())
				sb.WriteString(`</td>`)
			}
			sb.WriteString(`</tr>`)
		}

		sb.WriteString(`</tbody></table>`)
		sb.WriteString(`<p class="clock" id="black-clock">Black time used: ` + seconds(s.BlackElapsed) + ` seconds</p>`)
		sb.WriteString(`<p class="clock" id="white-clock">White time used: ` + seconds(s.WhiteElapsed) + ` seconds</p>`)
		sb.WriteString(`</div>`)

		return write(w, sb.String())
	})
}

// liveScript swaps the board on every "board" event and stops listening
// once the match finishes
const liveScript = `<script>
(function(){
  var src = new EventSource(window.location.pathname + "/events");
  src.addEventListener("board", function(e){
    document.getElementById("board").outerHTML = e.data;
  });
  src.addEventListener("finished", function(){ src.close(); });
})();
</script>`

// MatchPage is the spectator page for one match
func MatchPage(s model.MatchSnapshot) templ.Component {
	title := "Game " + s.ID.String()
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		err := write(w,
			`<h1>`, templ.EscapeString(title), `</h1>`,
			`<p class="players"><span class="player black">`, templ.EscapeString(s.Black),
			`</span> (Black) vs <span class="player white">`, templ.EscapeString(s.White),
			`</span> (White)</p>`)
		if err != nil {
			return err
		}
		if err := Board(s).Render(ctx, w); err != nil {
			return err
		}
		if s.Finished() {
			return nil
		}
		return write(w, liveScript)
	})
	return Layout(title, body)
}

// MatchList is the index of live matches and recent results
func MatchList(live, recent []model.MatchSnapshot) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString(`<h1>Current games</h1>`)
		writeMatchList(&sb, "live-matches", live, "No games in progress.")
		sb.WriteString(`<h2>Recent results</h2>`)
		writeMatchList(&sb, "recent-results", recent, "No recent results.")
		return write(w, sb.String())
	})
	return Layout("Games", body)
}

func writeMatchList(sb *strings.Builder, id string, snaps []model.MatchSnapshot, empty string) {
	if len(snaps) == 0 {
		sb.WriteString(`<p id="` + id + `" class="empty">` + empty + `</p>`)
		return
	}
	sb.WriteString(`<ul id="` + id + `">`)
	for _, s := range snaps {
		sb.WriteString(`<li><a href="/matches/` + s.ID.String() + `">`)
		sb.WriteString(templ.EscapeString(s.Summary()))
		sb.WriteString(`</a></li>`)
	}
	sb.WriteString(`</ul>`)
}

// NotFound is the page for an unknown match id
func NotFound(message string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w, `<h1>Not found</h1><p class="error">`, templ.EscapeString(message),
			`</p><p><a href="/">Back to games</a></p>`)
	})
	return Layout("Not found", body)
}

// ServerError is the page shown when rendering failed
func ServerError() templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w, `<h1>Internal Server Error</h1>`,
			`<p class="error">Something went wrong while rendering this page.</p>`,
			`<p><a href="/">Back to games</a></p>`)
	})
	return Layout("Error", body)
}
