package memory

import (
	"context"
	"sync"

	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/storage"
)

// Storage is an in-memory implementation of the storage interface. Nothing
// survives a restart; it backs tests and throwaway servers.
type Storage struct {
	mu sync.RWMutex

	accounts []model.Account
	mail     []model.Mail
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) LoadAccounts(ctx context.Context) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Account, 0, len(s.accounts))
	for i := range s.accounts {
		result = append(result, s.accounts[i].Clone())
	}
	return result, nil
}

func (s *Storage) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make([]model.Account, 0, len(accounts))
	for i := range accounts {
		s.accounts = append(s.accounts, accounts[i].Clone())
	}
	return nil
}

// Mail operations

func (s *Storage) LoadMail(ctx context.Context) ([]model.Mail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Mail, len(s.mail))
	copy(result, s.mail)
	return result, nil
}

func (s *Storage) SaveMail(ctx context.Context, mail []model.Mail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mail = make([]model.Mail, len(mail))
	copy(s.mail, mail)
	return nil
}

func (s *Storage) Close() error {
	return nil
}
