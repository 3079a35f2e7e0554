package factory

import (
	"time"

	"github.com/mcoot/gomoku-server/internal/config"
	"github.com/mcoot/gomoku-server/internal/dependencies/mocks"
	"github.com/mcoot/gomoku-server/internal/storage/memory"
	"github.com/mcoot/gomoku-server/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
	Store     *memory.Storage
}

// TestConfig returns defaults that bind loopback on ephemeral ports
func TestConfig() config.Config {
	cfg := config.Default()
	cfg.Telnet.Host = "127.0.0.1"
	cfg.Telnet.Port = 0
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = 0
	cfg.Storage.Type = config.StorageMemory
	return cfg
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(TestConfig())
}

// NewTestAppWithConfig is NewTestApp with explicit settings. Storage is
// always in memory.
func NewTestAppWithConfig(cfg config.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	app := newWithDependencies(cfg, store, mockClock, mockIDs, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
		Store:     store,
	}
}
