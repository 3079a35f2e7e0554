package redis

import "time"

// Config holds Redis connection settings
type Config struct {
	// URL is a redis:// connection URL; pool settings here override any
	// given as URL query parameters
	URL          string
	PoolSize     int
	MinIdleConns int
	// DialTimeout bounds the ping New issues before returning
	DialTimeout time.Duration
	// KeyPrefix namespaces every key the store writes
	KeyPrefix string
}

// DefaultConfig returns the settings used when only a URL is configured
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379/0",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		KeyPrefix:    "gomoku:",
	}
}
