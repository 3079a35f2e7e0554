package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gomoku-server/internal/api/response"
	"github.com/mcoot/gomoku-server/internal/factory"
	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/storage/file"
	"github.com/mcoot/gomoku-server/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedAccounts(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	store, err := file.New(dir)
	require.NoError(t, err)

	bob := model.NewAccount("bob", "secret")
	bob.Wins = 3
	bob.Rating = 1545
	bob.Info = "plays black"
	alice := model.NewAccount("alice", "secret")
	alice.Losses = 1

	require.NoError(t, store.SaveAccounts(context.Background(), []model.Account{*bob, *alice}))
	sent := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveMail(context.Background(), []model.Mail{
		{ID: 1, Sender: "alice", Recipient: "bob", Subject: "hi", Body: "rematch?", SentAt: sent},
		{ID: 2, Sender: "alice", Recipient: "bob", Subject: "again", Body: "well?", SentAt: sent, Read: true},
	}))
	return dir
}

func TestAccountsList_JSON(t *testing.T) {
	dir := seedAccounts(t)

	out, err := run(t, "accounts", "list", "--data-dir", dir, "-o", "json")
	require.NoError(t, err)

	var accounts []response.Account
	require.NoError(t, json.Unmarshal([]byte(out), &accounts))
	require.Len(t, accounts, 2)
	assert.Equal(t, "alice", accounts[0].Name)
	assert.Equal(t, 1, accounts[0].Losses)
	assert.Equal(t, "bob", accounts[1].Name)
	assert.Equal(t, 1545, accounts[1].Rating)
	assert.NotContains(t, out, "secret")
}

func TestAccountsList_Empty(t *testing.T) {
	out, err := run(t, "accounts", "list", "--data-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts.")
}

func TestAccountsShow(t *testing.T) {
	dir := seedAccounts(t)

	out, err := run(t, "accounts", "show", "bob", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Account: bob\n")
	assert.Contains(t, out, "Wins: 3\n")
	assert.Contains(t, out, "Rating: 1545\n")
	assert.Contains(t, out, "Info: plays black\n")
	assert.Contains(t, out, "Unread mail: 1\n")

	out, err = run(t, "accounts", "show", "alice", "--data-dir", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "Unread mail")
}

func TestAccountsShow_Unknown(t *testing.T) {
	dir := seedAccounts(t)

	_, err := run(t, "accounts", "show", "zed", "--data-dir", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}

func TestAccounts_InvalidStorage(t *testing.T) {
	_, err := run(t, "accounts", "list", "--storage", "postgres")
	assert.Error(t, err)
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := run(t, "accounts", "list", "--data-dir", t.TempDir(), "-o", "yaml")
	assert.ErrorContains(t, err, "invalid output format")
}

func newAPIServer(t *testing.T) *factory.TestApp {
	t.Helper()

	app := factory.NewTestApp()
	srv := httptest.NewServer(app.HTTPHandler(testutil.NopLogger()))
	t.Cleanup(srv.Close)
	t.Setenv("GOMOKU_SERVER", srv.URL)
	return app
}

func TestHealth(t *testing.T) {
	newAPIServer(t)

	out, err := run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: ok\n")
	assert.Contains(t, out, "Matches: 0\n")
}

func TestMatches(t *testing.T) {
	app := newAPIServer(t)
	app.Accounts.Load([]model.Account{
		*model.NewAccount("alice", "pw"),
		*model.NewAccount("bob", "pw"),
	})
	require.NoError(t, app.Accounts.Login("c1", "alice", "pw"))
	require.NoError(t, app.Accounts.Login("c2", "bob", "pw"))
	m, err := app.Matches.Create("alice", "bob", 0)
	require.NoError(t, err)

	out, err := run(t, "matches")
	require.NoError(t, err)
	assert.Equal(t, "1: alice (Black) vs bob (White) [Black to move, 0 moves]\n", out)

	out, err = run(t, "matches", "1", "-o", "json")
	require.NoError(t, err)
	var detail response.MatchDetail
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Equal(t, int(m.ID()), detail.ID)
	assert.Len(t, detail.Board, model.BoardSize)

	_, err = run(t, "matches", "99")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "MATCH_NOT_FOUND", apiErr.Code)
}

func TestWho(t *testing.T) {
	app := newAPIServer(t)

	out, err := run(t, "who")
	require.NoError(t, err)
	assert.Equal(t, "No users online.\n", out)

	app.Accounts.Load([]model.Account{*model.NewAccount("alice", "pw")})
	require.NoError(t, app.Accounts.Login("c1", "alice", "pw"))
	app.Accounts.LoginGuest("c2")

	out, err = run(t, "who")
	require.NoError(t, err)
	assert.Equal(t, "- alice\n- 1 guest(s)\n", out)
}
