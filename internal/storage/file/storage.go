package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/storage"
)

// Default file names inside the data directory
const (
	AccountsFile = "users_data.txt"
	MailFile     = "messages_data.txt"
)

// Storage keeps accounts and mail in two flat key=value text files
type Storage struct {
	mu  sync.Mutex
	dir string
}

// New creates a flat-file store rooted at dir, creating the directory if needed
func New(dir string) (*Storage, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) LoadAccounts(ctx context.Context) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accounts []model.Account
	err := s.read(AccountsFile, func(r io.Reader) error {
		var err error
		accounts, err = decodeAccounts(r)
		return err
	})
	return accounts, err
}

func (s *Storage) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := encodeAccounts(&buf, accounts); err != nil {
		return err
	}
	return s.write(AccountsFile, buf.Bytes())
}

// Mail operations

func (s *Storage) LoadMail(ctx context.Context) ([]model.Mail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mail []model.Mail
	err := s.read(MailFile, func(r io.Reader) error {
		var err error
		mail, err = decodeMail(r)
		return err
	})
	return mail, err
}

func (s *Storage) SaveMail(ctx context.Context, mail []model.Mail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := encodeMail(&buf, mail); err != nil {
		return err
	}
	return s.write(MailFile, buf.Bytes())
}

// Close is a no-op; files are opened per operation
func (s *Storage) Close() error {
	return nil
}

// read opens name and hands it to decode. A missing file is an empty store.
func (s *Storage) read(name string, decode func(io.Reader) error) error {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	if err := decode(f); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write replaces name atomically via a temp file and rename
func (s *Storage) write(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(s.dir, name))
}
