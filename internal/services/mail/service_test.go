package mail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gomoku-server/internal/dependencies/mocks"
	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.clock, testutil.NopLogger())
}

func (s *ServiceSuite) TestSendAssignsGlobalIDs() {
	m1 := s.service.Send("alice", "bob", "hi", "hello")
	m2 := s.service.Send("bob", "alice", "re: hi", "hey")
	m3 := s.service.Send("carol", "bob", "yo", "")

	s.Equal(model.MailID(1), m1.ID)
	s.Equal(model.MailID(2), m2.ID)
	s.Equal(model.MailID(3), m3.ID)
	s.Equal(s.clock.Now(), m1.SentAt)
	s.False(m1.Read)

	box := s.service.List("bob")
	s.Require().Len(box, 2)
	s.Equal(model.MailID(1), box[0].ID)
	s.Equal(model.MailID(3), box[1].ID)
}

func (s *ServiceSuite) TestReadMarksRead() {
	sent := s.service.Send("alice", "bob", "hi", "line one\nline two")
	s.Equal(1, s.service.Unread("bob"))

	m, err := s.service.Read("bob", sent.ID)
	s.Require().NoError(err)
	s.Equal("line one\nline two", m.Body)
	s.True(m.Read)
	s.Equal(0, s.service.Unread("bob"))
	s.True(s.service.List("bob")[0].Read)
}

func (s *ServiceSuite) TestReadOtherMailboxNotFound() {
	sent := s.service.Send("alice", "bob", "hi", "")

	_, err := s.service.Read("carol", sent.ID)
	s.ErrorIs(err, model.ErrMailNotFound)
	s.ErrorIs(s.service.Delete("carol", sent.ID), model.ErrMailNotFound)
}

func (s *ServiceSuite) TestDelete() {
	first := s.service.Send("alice", "bob", "one", "")
	s.service.Send("alice", "bob", "two", "")

	s.Require().NoError(s.service.Delete("bob", first.ID))
	s.ErrorIs(s.service.Delete("bob", first.ID), model.ErrMailNotFound)

	box := s.service.List("bob")
	s.Require().Len(box, 1)
	s.Equal("two", box[0].Subject)
}

func (s *ServiceSuite) TestLoadContinuesIDs() {
	s.service.Load([]model.Mail{
		{ID: 7, Sender: "alice", Recipient: "bob", Subject: "later"},
		{ID: 4, Sender: "alice", Recipient: "bob", Subject: "earlier", Read: true},
	})

	box := s.service.List("bob")
	s.Require().Len(box, 2)
	s.Equal("earlier", box[0].Subject)

	next := s.service.Send("bob", "alice", "new", "")
	s.Equal(model.MailID(8), next.ID)
	s.Len(s.service.All(), 3)
}

func (s *ServiceSuite) TestEmptyMailbox() {
	s.Empty(s.service.List("nobody"))
	s.Equal(0, s.service.Unread("nobody"))
}
