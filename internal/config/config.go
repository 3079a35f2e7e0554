package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. GOMOKU_TELNET_PORT
const EnvPrefix = "GOMOKU"

// Storage backends
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the full server configuration
type Config struct {
	Telnet  TelnetConfig  `mapstructure:"telnet"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Game    GameConfig    `mapstructure:"game"`
	Sweep   SweepConfig   `mapstructure:"sweep"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// TelnetConfig configures the line protocol listener
type TelnetConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	MaxConnections int           `mapstructure:"max_connections"`
	MailTimeout    time.Duration `mapstructure:"mail_timeout"`
}

// HTTPConfig configures the admin API and spectator pages
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

type GameConfig struct {
	DefaultTimeLimit time.Duration `mapstructure:"default_time_limit"`
}

// SweepConfig holds the background task intervals
type SweepConfig struct {
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
	TimeoutInterval     time.Duration `mapstructure:"timeout_interval"`
	AutosaveInterval    time.Duration `mapstructure:"autosave_interval"`
	ShutdownTimeout     time.Duration `mapstructure:"shutdown_timeout"`
	RecentResultsTTL    time.Duration `mapstructure:"recent_results_ttl"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Type       string `mapstructure:"type"`
	Dir        string `mapstructure:"dir"`
	RedisURL   string `mapstructure:"redis_url"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var defaults = map[string]any{
	"telnet.host":            "",
	"telnet.port":            8023,
	"telnet.read_timeout":    10 * time.Second,
	"telnet.write_timeout":   10 * time.Second,
	"telnet.send_buffer":     64,
	"telnet.max_connections": 0,
	"telnet.mail_timeout":    60 * time.Second,

	"http.enabled": true,
	"http.host":    "",
	"http.port":    8080,

	"game.default_time_limit": 600 * time.Second,

	"sweep.maintenance_interval": 30 * time.Second,
	"sweep.timeout_interval":     time.Second,
	"sweep.autosave_interval":    300 * time.Second,
	"sweep.shutdown_timeout":     10 * time.Second,
	"sweep.recent_results_ttl":   time.Hour,

	"storage.type":        StorageFile,
	"storage.dir":         ".",
	"storage.redis_url":   "redis://localhost:6379/0",
	"storage.sqlite_path": "gomoku.db",

	"log.level": "info",
}

// flagKeys maps command line flags onto config keys
var flagKeys = map[string]string{
	"telnet-port":  "telnet.port",
	"http-port":    "http.port",
	"storage":      "storage.type",
	"data-dir":     "storage.dir",
	"redis-url":    "storage.redis_url",
	"sqlite-path":  "storage.sqlite_path",
	"log-level":    "log.level",
	"http-enabled": "http.enabled",
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	var cfg Config
	// The defaults table always decodes
	_ = withDefaults().Unmarshal(&cfg)
	return cfg
}

func withDefaults() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// Load reads configuration from, in increasing precedence: defaults, the
// YAML file at path (optional), GOMOKU_* environment variables, and any of
// flags that were set explicitly.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := withDefaults()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageFile, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("invalid storage.type %q: must be memory, file, redis or sqlite", c.Storage.Type)
	}
	if c.Telnet.Port < 0 || c.Telnet.Port > 65535 {
		return fmt.Errorf("invalid telnet.port %d", c.Telnet.Port)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http.port %d", c.HTTP.Port)
	}
	if c.Telnet.MaxConnections < 0 {
		return errors.New("telnet.max_connections must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
