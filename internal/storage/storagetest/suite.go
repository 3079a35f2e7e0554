// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/storage"
)

// ConformanceSuite runs the common save/load contract against a backend.
// New is called once per test and must return an empty store.
type ConformanceSuite struct {
	suite.Suite
	New func(t *testing.T) storage.Storage

	store storage.Storage
	ctx   context.Context
}

func (s *ConformanceSuite) SetupTest() {
	s.store = s.New(s.T())
	s.ctx = context.Background()
}

func (s *ConformanceSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// SampleAccounts returns two accounts with non-default stats, a block set and quiet flag
func SampleAccounts() []model.Account {
	alice := model.NewAccount("alice", "secret")
	alice.Info = "likes the centre"
	alice.Wins = 3
	alice.Losses = 1
	alice.Rating = 1530
	alice.Blocked["mallory"] = true
	alice.Blocked["trent"] = true

	bob := model.NewAccount("bob_2", "hunter2")
	bob.Quiet = true
	bob.Losses = 4
	bob.Rating = model.MinRating

	return []model.Account{alice.Clone(), bob.Clone()}
}

// SampleMail returns mail with a multi-line body and mixed read flags
func SampleMail() []model.Mail {
	sent := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return []model.Mail{
		{ID: 1, Sender: "alice", Recipient: "bob_2", Subject: "rematch?", Body: "tomorrow at noon\nbring coffee\n", SentAt: sent, Read: true},
		{ID: 4, Sender: "bob_2", Recipient: "alice", Subject: "re: rematch?", Body: "sure\n", SentAt: sent.Add(time.Hour)},
	}
}

func (s *ConformanceSuite) TestEmptyStoreLoadsNothing() {
	accounts, err := s.store.LoadAccounts(s.ctx)
	s.Require().NoError(err)
	s.Empty(accounts)

	mail, err := s.store.LoadMail(s.ctx)
	s.Require().NoError(err)
	s.Empty(mail)
}

func (s *ConformanceSuite) TestAccountsRoundTrip() {
	want := SampleAccounts()
	s.Require().NoError(s.store.SaveAccounts(s.ctx, want))

	got, err := s.store.LoadAccounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, len(want))
	sortAccounts(got)

	for i := range want {
		s.Equal(want[i].Name, got[i].Name)
		s.Equal(want[i].Password, got[i].Password)
		s.Equal(want[i].Info, got[i].Info)
		s.Equal(want[i].Wins, got[i].Wins)
		s.Equal(want[i].Losses, got[i].Losses)
		s.Equal(want[i].Rating, got[i].Rating)
		s.Equal(want[i].Quiet, got[i].Quiet)
		s.Equal(want[i].BlockedNames(), got[i].BlockedNames())
	}
}

func (s *ConformanceSuite) TestSaveAccountsReplacesPreviousState() {
	accounts := SampleAccounts()
	s.Require().NoError(s.store.SaveAccounts(s.ctx, accounts))

	accounts[0].Wins = 10
	delete(accounts[0].Blocked, "trent")
	s.Require().NoError(s.store.SaveAccounts(s.ctx, accounts))

	got, err := s.store.LoadAccounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	sortAccounts(got)
	s.Equal(10, got[0].Wins)
	s.Equal([]string{"mallory"}, got[0].BlockedNames())
}

func (s *ConformanceSuite) TestMailRoundTrip() {
	want := SampleMail()
	s.Require().NoError(s.store.SaveMail(s.ctx, want))

	got, err := s.store.LoadMail(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, len(want))
	sortMail(got)

	for i := range want {
		s.Equal(want[i].ID, got[i].ID)
		s.Equal(want[i].Sender, got[i].Sender)
		s.Equal(want[i].Recipient, got[i].Recipient)
		s.Equal(want[i].Subject, got[i].Subject)
		s.Equal(want[i].Body, got[i].Body)
		s.Equal(want[i].Read, got[i].Read)
		s.True(want[i].SentAt.Equal(got[i].SentAt), "sent at %v, got %v", want[i].SentAt, got[i].SentAt)
	}
}

func (s *ConformanceSuite) TestSaveMailDropsDeletedMessages() {
	mail := SampleMail()
	s.Require().NoError(s.store.SaveMail(s.ctx, mail))
	s.Require().NoError(s.store.SaveMail(s.ctx, mail[1:]))

	got, err := s.store.LoadMail(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(model.MailID(4), got[0].ID)
}

func sortAccounts(accounts []model.Account) {
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
}

func sortMail(mail []model.Mail) {
	sort.Slice(mail, func(i, j int) bool { return mail[i].ID < mail[j].ID })
}
