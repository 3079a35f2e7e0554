package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/storage"
	"github.com/mcoot/gomoku-server/internal/storage/storagetest"
)

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mini.Addr(),
	})
	return NewWithClient(client, DefaultConfig()), mini
}

func TestConformanceSuite(t *testing.T) {
	suite.Run(t, &storagetest.ConformanceSuite{
		New: func(t *testing.T) storage.Storage {
			store, _ := newTestStorage(t)
			return store
		},
	})
}

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage, s.mini = newTestStorage(s.T())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestAccountsAreIndexed() {
	s.Require().NoError(s.storage.SaveAccounts(s.ctx, storagetest.SampleAccounts()))

	members, err := s.mini.Members(s.storage.accountIndexKey())
	s.Require().NoError(err)
	s.ElementsMatch([]string{"alice", "bob_2"}, members)
	s.True(s.mini.Exists(s.storage.accountKey("alice")))
}

func (s *StorageSuite) TestRemovedAccountKeyIsDeleted() {
	accounts := storagetest.SampleAccounts()
	s.Require().NoError(s.storage.SaveAccounts(s.ctx, accounts))
	s.Require().NoError(s.storage.SaveAccounts(s.ctx, accounts[:1]))

	s.False(s.mini.Exists(s.storage.accountKey("bob_2")))
	members, err := s.mini.Members(s.storage.accountIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"alice"}, members)
}

func (s *StorageSuite) TestDanglingIndexEntryIsSkipped() {
	s.Require().NoError(s.storage.SaveMail(s.ctx, storagetest.SampleMail()))
	s.mini.Del(s.storage.mailKey(model.MailID(1)))

	mail, err := s.storage.LoadMail(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(mail, 1)
	s.Equal(model.MailID(4), mail[0].ID)
}

func (s *StorageSuite) TestKeyPrefix() {
	cfg := DefaultConfig()
	cfg.KeyPrefix = "other:"
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	other := NewWithClient(client, cfg)
	defer other.Close()

	s.Require().NoError(other.SaveAccounts(s.ctx, storagetest.SampleAccounts()))
	s.True(s.mini.Exists("other:account:alice"))

	// Stores with different prefixes do not see each other's data
	accounts, err := s.storage.LoadAccounts(s.ctx)
	s.Require().NoError(err)
	s.Empty(accounts)
}

func (s *StorageSuite) TestLoadFailsWhenServerIsDown() {
	s.mini.Close()

	_, err := s.storage.LoadAccounts(s.ctx)
	s.Error(err)
}
