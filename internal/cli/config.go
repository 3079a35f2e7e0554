package cli

import (
	"fmt"
	"os"
	"strings"
)

// Output formats accepted by --output
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds the CLI's own settings. Server settings live in
// config.Config and are loaded per command.
type Config struct {
	// ConfigPath is the server YAML config file, used by serve and accounts
	ConfigPath string
	// ServerURL is the admin API base URL, used by the remote commands
	ServerURL string
	Output    string
	Verbose   bool
}

// DefaultConfig reads GOMOKU_CONFIG and GOMOKU_SERVER from the environment
func DefaultConfig() *Config {
	server := os.Getenv("GOMOKU_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}
	return &Config{
		ConfigPath: os.Getenv("GOMOKU_CONFIG"),
		ServerURL:  server,
		Output:     OutputText,
	}
}

// Validate rejects unknown output formats and normalises the server URL
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("invalid output format %q (want %s or %s)", c.Output, OutputText, OutputJSON)
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	return nil
}
