package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gomoku-server/internal/dependencies/mocks"
	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/services/account"
	"github.com/mcoot/gomoku-server/internal/services/match"
	"github.com/mcoot/gomoku-server/internal/testutil"
	"github.com/mcoot/gomoku-server/internal/web"
	"github.com/mcoot/gomoku-server/internal/web/sse"
)

// webTestServer provides a test server for spectator page testing
type webTestServer struct {
	t           *testing.T
	handler     http.Handler
	accounts    *account.Directory
	matches     *match.Registry
	hubs        *sse.HubManager
	broadcaster *sse.Broadcaster
}

// newWebTestServer creates a new test server with two online players
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	logger := testutil.NopLogger()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	accounts := account.New(logger)
	matches := match.NewRegistry(accounts, clk, match.DefaultConfig(), logger)
	hubs := sse.NewHubManager(logger)

	accounts.Load([]model.Account{
		*model.NewAccount("alice", "pw"),
		*model.NewAccount("bob", "pw"),
	})
	require.NoError(t, accounts.Login("c-alice", "alice", "pw"))
	require.NoError(t, accounts.Login("c-bob", "bob", "pw"))

	router := web.NewRouter(web.RouterConfig{
		Logger:     logger,
		Matches:    matches,
		HubManager: hubs,
	})

	return &webTestServer{
		t:           t,
		handler:     router,
		accounts:    accounts,
		matches:     matches,
		hubs:        hubs,
		broadcaster: sse.NewBroadcaster(hubs, logger),
	}
}

// get makes a GET request and returns the response
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// startMatch creates alice (Black) vs bob (White)
func (ts *webTestServer) startMatch() *match.Match {
	ts.t.Helper()
	m, err := ts.matches.Create("alice", "bob", 0)
	require.NoError(ts.t, err)
	return m
}

func parseHTML(t *testing.T, r io.Reader) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(r)
	require.NoError(t, err)
	return doc
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}

func TestIndex_Empty(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	doc := parseHTML(t, rr.Body)
	assertContainsText(t, doc, "#live-matches.empty", "No games in progress.")
	assertContainsText(t, doc, "#recent-results.empty", "No recent results.")
}

func TestIndex_ListsLiveAndRecent(t *testing.T) {
	ts := newWebTestServer(t)
	finished := ts.startMatch()
	_, err := finished.Resign("bob")
	require.NoError(t, err)
	require.Equal(t, 1, ts.matches.Cleanup())
	ts.startMatch()

	doc := parseHTML(t, ts.get("/").Body)

	live := doc.Find("#live-matches li a")
	require.Equal(t, 1, live.Length())
	href, _ := live.Attr("href")
	assert.Equal(t, "/matches/2", href)
	assert.Equal(t, "2: alice (Black) vs bob (White) [Black to move]", live.Text())

	assertContainsText(t, doc, "#recent-results li a", "1: alice (Black) vs bob (White) [FINISHED - Winner: alice]")
}

func TestMatchPage_RendersBoard(t *testing.T) {
	ts := newWebTestServer(t)
	m := ts.startMatch()
	_, err := m.ApplyMove("alice", model.Position{Row: 7, Col: 7})
	require.NoError(t, err)

	rr := ts.get("/matches/1")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(t, rr.Body)

	assertContainsText(t, doc, "title", "Game 1")
	assertContainsText(t, doc, ".player.black", "alice")
	assertContainsText(t, doc, ".player.white", "bob")
	assertContainsText(t, doc, "#match-status", "White to move")

	assert.Equal(t, model.BoardSize, doc.Find("table.board tbody tr").Length())
	assert.Equal(t, model.BoardSize+1, doc.Find("table.board thead th").Length())
	assert.Equal(t, model.BoardSize*model.BoardSize, doc.Find("td.cell").Length())

	h8 := doc.Find(`td[data-pos="H8"]`)
	assert.True(t, h8.HasClass("black"))
	assert.True(t, h8.HasClass("last"))
	assert.Equal(t, "X", h8.Text())
	assert.Equal(t, 1, doc.Find("td.black").Length())

	assert.Contains(t, doc.Find("script").Text(), "EventSource")
}

func TestMatchPage_FinishedHasNoLiveFeed(t *testing.T) {
	ts := newWebTestServer(t)
	m := ts.startMatch()
	_, err := m.Resign("alice")
	require.NoError(t, err)

	doc := parseHTML(t, ts.get("/matches/1").Body)

	assert.True(t, doc.Find("#match-status").HasClass("finished"))
	assertContainsText(t, doc, "#match-status", "FINISHED - Winner: bob (resignation)")
	assert.Equal(t, 0, doc.Find("script").Length())
}

func TestMatchPage_NotFound(t *testing.T) {
	ts := newWebTestServer(t)

	tests := []struct {
		path    string
		message string
	}{
		{path: "/matches/3", message: "Game not found: 3"},
		{path: "/matches/zero", message: "Invalid game number."},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := ts.get(tt.path)
			assert.Equal(t, http.StatusNotFound, rr.Code)
			assertContainsText(t, parseHTML(t, rr.Body), "p.error", tt.message)
		})
	}
}
