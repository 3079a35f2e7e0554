package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gomoku-server/internal/api"
	"github.com/mcoot/gomoku-server/internal/api/apierr"
	"github.com/mcoot/gomoku-server/internal/api/response"
	"github.com/mcoot/gomoku-server/internal/dependencies/mocks"
	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/services/account"
	"github.com/mcoot/gomoku-server/internal/services/mail"
	"github.com/mcoot/gomoku-server/internal/services/match"
	"github.com/mcoot/gomoku-server/internal/testutil"
)

type fixedConnections int

func (f fixedConnections) Connections() int {
	return int(f)
}

// testServer wires the API over real services
type testServer struct {
	handler  http.Handler
	accounts *account.Directory
	matches  *match.Registry
	mail     *mail.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testutil.NopLogger()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	accounts := account.New(logger)
	matches := match.NewRegistry(accounts, clk, match.DefaultConfig(), logger)
	mailbox := mail.New(clk, logger)

	accounts.Load([]model.Account{
		*model.NewAccount("alice", "secret"),
		*model.NewAccount("bob", "secret"),
	})
	require.NoError(t, accounts.Login("c-alice", "alice", "secret"))
	require.NoError(t, accounts.Login("c-bob", "bob", "secret"))

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Accounts:    accounts,
		Matches:     matches,
		Mail:        mailbox,
		Connections: fixedConnections(3),
	})

	return &testServer{handler: router, accounts: accounts, matches: matches, mail: mailbox}
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.matches.Create("alice", "bob", 0)
	require.NoError(t, err)

	rr := ts.get("/api/v1/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	health := decode[response.Health](t, rr)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, health.Connections)
	assert.Equal(t, 1, health.Matches)
}

func TestListMatches(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get("/api/v1/matches")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	_, err := ts.matches.Create("alice", "bob", 30*time.Second)
	require.NoError(t, err)

	matches := decode[[]response.Match](t, ts.get("/api/v1/matches"))
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].ID)
	assert.Equal(t, "alice", matches[0].Black)
	assert.Equal(t, "bob", matches[0].White)
	assert.Equal(t, string(model.MatchInProgress), matches[0].Status)
	assert.Equal(t, "Black", matches[0].Turn)
	assert.Equal(t, 30, matches[0].TimeLimitSeconds)
	assert.Nil(t, matches[0].FinishedAt)
}

func TestGetMatchIncludesBoard(t *testing.T) {
	ts := newTestServer(t)
	m, err := ts.matches.Create("alice", "bob", 0)
	require.NoError(t, err)
	_, err = m.ApplyMove("alice", model.Position{Row: 7, Col: 7})
	require.NoError(t, err)

	rr := ts.get("/api/v1/matches/1")
	require.Equal(t, http.StatusOK, rr.Code)

	detail := decode[response.MatchDetail](t, rr)
	assert.Equal(t, "H8", detail.LastMove)
	assert.Equal(t, 1, detail.Moves)
	assert.Equal(t, "White", detail.Turn)
	require.Len(t, detail.Board, model.BoardSize)
	assert.Equal(t, ".......X.......", detail.Board[7])
	assert.Equal(t, "...............", detail.Board[0])
}

func TestGetMatchErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{name: "not a number", path: "/api/v1/matches/abc", status: http.StatusBadRequest, code: apierr.CodeInvalidRequest},
		{name: "zero", path: "/api/v1/matches/0", status: http.StatusBadRequest, code: apierr.CodeInvalidRequest},
		{name: "unknown", path: "/api/v1/matches/3", status: http.StatusNotFound, code: apierr.CodeMatchNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.get(tt.path)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, decode[apierr.Body](t, rr).Error.Code)
		})
	}
}

func TestResultsAfterEviction(t *testing.T) {
	ts := newTestServer(t)
	m, err := ts.matches.Create("alice", "bob", 0)
	require.NoError(t, err)
	_, err = m.Resign("bob")
	require.NoError(t, err)
	require.Equal(t, 1, ts.matches.Cleanup())

	assert.JSONEq(t, `[]`, ts.get("/api/v1/matches").Body.String())

	results := decode[[]response.Match](t, ts.get("/api/v1/results"))
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].Winner)
	assert.Equal(t, string(model.EndResignation), results[0].Reason)
	assert.NotNil(t, results[0].FinishedAt)
	assert.Empty(t, results[0].Turn)

	rr := ts.get("/api/v1/matches/1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(model.MatchFinished), decode[response.MatchDetail](t, rr).Status)
}

func TestWho(t *testing.T) {
	ts := newTestServer(t)
	ts.accounts.LoginGuest("c-guest-1")
	ts.accounts.LoginGuest("c-guest-2")
	_, err := ts.matches.Create("alice", "bob", 0)
	require.NoError(t, err)

	who := decode[response.Who](t, ts.get("/api/v1/who"))

	assert.Equal(t, 2, who.Guests)
	assert.Equal(t, []response.Presence{
		{Name: "alice", Activity: string(model.ActivityPlaying), MatchID: 1},
		{Name: "bob", Activity: string(model.ActivityPlaying), MatchID: 1},
	}, who.Users)
}

func TestGetAccount(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.accounts.SetInfo("alice", "likes corners"))

	rr := ts.get("/api/v1/accounts/alice")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret")

	a := decode[response.Account](t, rr)
	assert.Equal(t, response.Account{
		Name:     "alice",
		Info:     "likes corners",
		Rating:   model.InitialRating,
		Online:   true,
		Activity: string(model.ActivityIdle),
	}, a)

	rr = ts.get("/api/v1/accounts/nobody")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeAccountNotFound, decode[apierr.Body](t, rr).Error.Code)
}

func TestGetAccountCountsUnreadMail(t *testing.T) {
	ts := newTestServer(t)
	first := ts.mail.Send("bob", "alice", "rematch", "tomorrow?")
	ts.mail.Send("bob", "alice", "again", "still up for it?")
	_, err := ts.mail.Read("alice", first.ID)
	require.NoError(t, err)

	a := decode[response.Account](t, ts.get("/api/v1/accounts/alice"))
	assert.Equal(t, 1, a.UnreadMail)

	rr := ts.get("/api/v1/accounts/bob")
	assert.NotContains(t, rr.Body.String(), "unread_mail")
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.get("/api/v1/lobbies")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decode[apierr.Body](t, rr).Error.Code)
}
