package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8023, cfg.Telnet.Port)
	assert.Equal(t, 10*time.Second, cfg.Telnet.ReadTimeout)
	assert.Equal(t, 64, cfg.Telnet.SendBuffer)
	assert.Equal(t, 0, cfg.Telnet.MaxConnections)
	assert.Equal(t, 60*time.Second, cfg.Telnet.MailTimeout)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 600*time.Second, cfg.Game.DefaultTimeLimit)
	assert.Equal(t, 300*time.Second, cfg.Sweep.AutosaveInterval)
	assert.Equal(t, time.Second, cfg.Sweep.TimeoutInterval)
	assert.Equal(t, time.Hour, cfg.Sweep.RecentResultsTTL)
	assert.Equal(t, StorageFile, cfg.Storage.Type)
	assert.Equal(t, ".", cfg.Storage.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gomoku.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telnet:
  port: 9000
  mail_timeout: 2m
storage:
  type: sqlite
  sqlite_path: /tmp/g.db
`), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Telnet.Port)
	assert.Equal(t, 2*time.Minute, cfg.Telnet.MailTimeout)
	assert.Equal(t, StorageSQLite, cfg.Storage.Type)
	assert.Equal(t, "/tmp/g.db", cfg.Storage.SQLitePath)
	// Untouched keys keep their defaults
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("GOMOKU_TELNET_PORT", "7000")
	t.Setenv("GOMOKU_SWEEP_AUTOSAVE_INTERVAL", "45s")
	t.Setenv("GOMOKU_STORAGE_TYPE", "memory")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Telnet.Port)
	assert.Equal(t, 45*time.Second, cfg.Sweep.AutosaveInterval)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("GOMOKU_TELNET_PORT", "7000")
	t.Setenv("GOMOKU_HTTP_PORT", "7001")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("telnet-port", 8023, "")
	flags.Int("http-port", 8080, "")
	require.NoError(t, flags.Parse([]string{"--telnet-port", "6000"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Telnet.Port)
	// An unset flag does not shadow the environment
	assert.Equal(t, 7001, cfg.HTTP.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "storage type", key: "GOMOKU_STORAGE_TYPE", val: "postgres"},
		{name: "telnet port", key: "GOMOKU_TELNET_PORT", val: "70000"},
		{name: "max connections", key: "GOMOKU_TELNET_MAX_CONNECTIONS", val: "-1"},
		{name: "log level", key: "GOMOKU_LOG_LEVEL", val: "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load("", nil)
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
