package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/storage"
)

// accountRow is the accounts table. Blocked names are stored newline-joined.
type accountRow struct {
	Name     string `gorm:"primaryKey"`
	Password string `gorm:"not null"`
	Info     string
	Wins     int
	Losses   int
	Rating   int
	Quiet    bool `gorm:"default:false"`
	Blocked  string
}

func (accountRow) TableName() string { return "accounts" }

// mailRow is the mail table
type mailRow struct {
	ID        int    `gorm:"primaryKey;autoIncrement:false"`
	Sender    string `gorm:"not null"`
	Recipient string `gorm:"index;not null"`
	Subject   string
	Body      string
	SentAt    time.Time
	Read      bool `gorm:"default:false"`
}

func (mailRow) TableName() string { return "mail" }

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// New opens (or creates) the database at path and migrates the schema
func New(path string, debug bool) (*Storage, error) {
	// By default only log errors but enable full SQL query logging in debug mode
	log := logger.Default.LogMode(logger.Error)
	if debug {
		log = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.AutoMigrate(&accountRow{}, &mailRow{}); err != nil {
		return nil, fmt.Errorf("error auto migrating db: %w", err)
	}

	return &Storage{db: db}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) LoadAccounts(ctx context.Context) ([]model.Account, error) {
	var rows []accountRow
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(rows))
	for _, row := range rows {
		account := model.NewAccount(row.Name, row.Password)
		account.Info = row.Info
		account.Wins = row.Wins
		account.Losses = row.Losses
		account.Rating = row.Rating
		account.Quiet = row.Quiet
		for _, name := range strings.Split(row.Blocked, "\n") {
			if name != "" {
				account.Blocked[name] = true
			}
		}
		accounts = append(accounts, account.Clone())
	}
	return accounts, nil
}

func (s *Storage) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	rows := make([]accountRow, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		rows = append(rows, accountRow{
			Name:     a.Name,
			Password: a.Password,
			Info:     a.Info,
			Wins:     a.Wins,
			Losses:   a.Losses,
			Rating:   a.Rating,
			Quiet:    a.Quiet,
			Blocked:  strings.Join(a.BlockedNames(), "\n"),
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&accountRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// Mail operations

func (s *Storage) LoadMail(ctx context.Context) ([]model.Mail, error) {
	var rows []mailRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	mail := make([]model.Mail, 0, len(rows))
	for _, row := range rows {
		mail = append(mail, model.Mail{
			ID:        model.MailID(row.ID),
			Sender:    row.Sender,
			Recipient: row.Recipient,
			Subject:   row.Subject,
			Body:      row.Body,
			SentAt:    row.SentAt,
			Read:      row.Read,
		})
	}
	return mail, nil
}

func (s *Storage) SaveMail(ctx context.Context, mail []model.Mail) error {
	rows := make([]mailRow, 0, len(mail))
	for _, m := range mail {
		rows = append(rows, mailRow{
			ID:        int(m.ID),
			Sender:    m.Sender,
			Recipient: m.Recipient,
			Subject:   m.Subject,
			Body:      m.Body,
			SentAt:    m.SentAt,
			Read:      m.Read,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&mailRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// Close closes the underlying database handle
func (s *Storage) Close() error {
	database, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("error while getting current connection: %w", err)
	}
	if err := database.Close(); err != nil {
		return fmt.Errorf("error while closing database connection: %w", err)
	}
	return nil
}
