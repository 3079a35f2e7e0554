package storage

import (
	"context"

	"github.com/mcoot/gomoku-server/internal/model"
)

// Storage persists accounts and mail between runs. Saves replace the whole
// stored set; the in-memory registries stay authoritative while the process
// runs, so callers treat save failures as non-fatal.
type Storage interface {
	// Account operations
	LoadAccounts(ctx context.Context) ([]model.Account, error)
	SaveAccounts(ctx context.Context, accounts []model.Account) error

	// Mail operations
	LoadMail(ctx context.Context) ([]model.Mail, error)
	SaveMail(ctx context.Context, mail []model.Mail) error

	// Close releases any underlying connection or file handle
	Close() error
}
