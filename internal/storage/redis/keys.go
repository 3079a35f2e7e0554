package redis

import (
	"strconv"

	"github.com/mcoot/gomoku-server/internal/model"
)

// Key layout under the configured prefix:
//
//	<prefix>account:<name>   JSON account record
//	<prefix>idx:accounts     SET of account names
//	<prefix>mail:<id>        JSON mail record
//	<prefix>idx:mail         SET of mail ids
func (s *Storage) accountKey(name string) string {
	return s.cfg.KeyPrefix + "account:" + name
}

func (s *Storage) accountIndexKey() string {
	return s.cfg.KeyPrefix + "idx:accounts"
}

func (s *Storage) mailKey(id model.MailID) string {
	return s.cfg.KeyPrefix + "mail:" + strconv.FormatInt(int64(id), 10)
}

func (s *Storage) mailIndexKey() string {
	return s.cfg.KeyPrefix + "idx:mail"
}
