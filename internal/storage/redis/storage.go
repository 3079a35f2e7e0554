package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each account and mail message is a JSON blob under its own key, with a SET
// index listing the live keys.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

type accountRecord struct {
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Info     string   `json:"info"`
	Wins     int      `json:"wins"`
	Losses   int      `json:"losses"`
	Rating   int      `json:"rating"`
	Quiet    bool     `json:"quiet"`
	Blocked  []string `json:"blocked"`
}

type mailRecord struct {
	ID        model.MailID `json:"id"`
	Sender    string       `json:"sender"`
	Recipient string       `json:"recipient"`
	Subject   string       `json:"subject"`
	Body      string       `json:"body"`
	SentAt    time.Time    `json:"sent_at"`
	Read      bool         `json:"read"`
}

// Account operations

func (s *Storage) LoadAccounts(ctx context.Context) ([]model.Account, error) {
	names, err := s.client.SMembers(ctx, s.accountIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = s.accountKey(name)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(values))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			// Index entry without a blob; skip it
			continue
		}
		var rec accountRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		account := model.NewAccount(rec.Name, rec.Password)
		account.Info = rec.Info
		account.Wins = rec.Wins
		account.Losses = rec.Losses
		account.Rating = rec.Rating
		account.Quiet = rec.Quiet
		for _, blocked := range rec.Blocked {
			account.Blocked[blocked] = true
		}
		accounts = append(accounts, account.Clone())
	}
	return accounts, nil
}

func (s *Storage) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	existing, err := s.client.SMembers(ctx, s.accountIndexKey()).Result()
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(accounts))

	// Use a transaction so readers never see a half-written set
	pipe := s.client.TxPipeline()
	for i := range accounts {
		a := &accounts[i]
		data, err := json.Marshal(accountRecord{
			Name:     a.Name,
			Password: a.Password,
			Info:     a.Info,
			Wins:     a.Wins,
			Losses:   a.Losses,
			Rating:   a.Rating,
			Quiet:    a.Quiet,
			Blocked:  a.BlockedNames(),
		})
		if err != nil {
			return err
		}
		keep[a.Name] = true
		pipe.Set(ctx, s.accountKey(a.Name), data, 0)
		pipe.SAdd(ctx, s.accountIndexKey(), a.Name)
	}
	for _, name := range existing {
		if !keep[name] {
			pipe.Del(ctx, s.accountKey(name))
			pipe.SRem(ctx, s.accountIndexKey(), name)
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Mail operations

func (s *Storage) LoadMail(ctx context.Context) ([]model.Mail, error) {
	ids, err := s.client.SMembers(ctx, s.mailIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		keys = append(keys, s.mailKey(model.MailID(id)))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	mail := make([]model.Mail, 0, len(values))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		var rec mailRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		mail = append(mail, model.Mail{
			ID:        rec.ID,
			Sender:    rec.Sender,
			Recipient: rec.Recipient,
			Subject:   rec.Subject,
			Body:      rec.Body,
			SentAt:    rec.SentAt,
			Read:      rec.Read,
		})
	}
	return mail, nil
}

func (s *Storage) SaveMail(ctx context.Context, mail []model.Mail) error {
	existing, err := s.client.SMembers(ctx, s.mailIndexKey()).Result()
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(mail))

	pipe := s.client.TxPipeline()
	for _, m := range mail {
		data, err := json.Marshal(mailRecord{
			ID:        m.ID,
			Sender:    m.Sender,
			Recipient: m.Recipient,
			Subject:   m.Subject,
			Body:      m.Body,
			SentAt:    m.SentAt,
			Read:      m.Read,
		})
		if err != nil {
			return err
		}
		member := strconv.Itoa(int(m.ID))
		keep[member] = true
		pipe.Set(ctx, s.mailKey(m.ID), data, 0)
		pipe.SAdd(ctx, s.mailIndexKey(), member)
	}
	for _, member := range existing {
		if keep[member] {
			continue
		}
		pipe.SRem(ctx, s.mailIndexKey(), member)
		if id, err := strconv.Atoi(member); err == nil {
			pipe.Del(ctx, s.mailKey(model.MailID(id)))
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}
