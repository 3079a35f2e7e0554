package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-server/internal/api"
	"github.com/mcoot/gomoku-server/internal/config"
	"github.com/mcoot/gomoku-server/internal/dependencies/clock"
	"github.com/mcoot/gomoku-server/internal/dependencies/idgen"
	"github.com/mcoot/gomoku-server/internal/server"
	"github.com/mcoot/gomoku-server/internal/services/account"
	"github.com/mcoot/gomoku-server/internal/services/mail"
	"github.com/mcoot/gomoku-server/internal/services/match"
	"github.com/mcoot/gomoku-server/internal/session"
	"github.com/mcoot/gomoku-server/internal/storage"
	"github.com/mcoot/gomoku-server/internal/storage/file"
	"github.com/mcoot/gomoku-server/internal/storage/memory"
	redisstorage "github.com/mcoot/gomoku-server/internal/storage/redis"
	"github.com/mcoot/gomoku-server/internal/storage/sqlite"
	"github.com/mcoot/gomoku-server/internal/web"
	"github.com/mcoot/gomoku-server/internal/web/sse"
)

// App contains all wired application components
type App struct {
	Config config.Config

	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator

	// Services
	Accounts   *account.Directory
	Matches    *match.Registry
	Mail       *mail.Service
	Sessions   *session.Manager
	Hub        *server.Hub
	HubManager *sse.HubManager
	Server     *server.Server

	logger *slog.Logger
}

// New creates a new application with all dependencies wired. A nil logger
// discards everything.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := OpenStorage(cfg.Storage, cfg.Log.Level == "debug")
	if err != nil {
		return nil, err
	}

	return newWithDependencies(cfg, store, clock.New(), idgen.New(), logger), nil
}

// OpenStorage opens the configured persistence backend
func OpenStorage(cfg config.StorageConfig, debug bool) (storage.Storage, error) {
	switch cfg.Type {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageFile:
		return file.New(cfg.Dir)
	case config.StorageRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("storage.redis_url required when storage.type is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		return redisstorage.New(redisCfg)
	case config.StorageSQLite:
		return sqlite.New(cfg.SQLitePath, debug)
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.Type)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	cfg config.Config,
	store storage.Storage,
	clk clock.Clock,
	ids idgen.Generator,
	logger *slog.Logger,
) *App {
	app := &App{
		Config:  cfg,
		Storage: store,
		Clock:   clk,
		IDs:     ids,
		logger:  logger.With(slog.String("component", "app")),
	}

	app.Accounts = account.New(logger)
	app.Matches = match.NewRegistry(app.Accounts, clk, match.Config{
		DefaultTimeLimit: cfg.Game.DefaultTimeLimit,
		RecentResultsTTL: cfg.Sweep.RecentResultsTTL,
	}, logger)
	app.Mail = mail.New(clk, logger)
	app.Hub = server.NewHub(cfg.Telnet.SendBuffer, logger)
	app.HubManager = sse.NewHubManager(logger)

	app.Sessions = session.NewManager(
		app.Accounts,
		app.Matches,
		app.Mail,
		app.Hub,
		sse.NewBroadcaster(app.HubManager, logger),
		app,
		clk,
		session.Config{MailTimeout: cfg.Telnet.MailTimeout},
		logger,
	)

	app.Server = server.New(serverConfig(cfg), app.Hub, app.Sessions, app.Accounts, app.Matches,
		app, ids, logger)

	return app
}

func serverConfig(cfg config.Config) server.Config {
	return server.Config{
		Host:                cfg.Telnet.Host,
		Port:                cfg.Telnet.Port,
		ReadTimeout:         cfg.Telnet.ReadTimeout,
		WriteTimeout:        cfg.Telnet.WriteTimeout,
		SendBuffer:          cfg.Telnet.SendBuffer,
		MaxConnections:      cfg.Telnet.MaxConnections,
		MaintenanceInterval: cfg.Sweep.MaintenanceInterval,
		TimeoutInterval:     cfg.Sweep.TimeoutInterval,
		AutosaveInterval:    cfg.Sweep.AutosaveInterval,
		ShutdownTimeout:     cfg.Sweep.ShutdownTimeout,
	}
}

// HTTPHandler combines the admin API and the spectator pages on one router
func (a *App) HTTPHandler(logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	api.Mount(r, api.RouterConfig{
		Logger:      logger,
		Accounts:    a.Accounts,
		Matches:     a.Matches,
		Mail:        a.Mail,
		Connections: a.Server,
	})
	web.Mount(r, web.RouterConfig{
		Logger:     logger,
		Matches:    a.Matches,
		HubManager: a.HubManager,
	})
	return r
}

// HTTPServer builds the HTTP server for the admin API and spectator pages
func (a *App) HTTPServer(logger *slog.Logger) *api.Server {
	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = a.Config.HTTP.Host
	serverCfg.Port = a.Config.HTTP.Port
	serverCfg.ShutdownTimeout = a.Config.Sweep.ShutdownTimeout
	return api.NewServer(a.HTTPHandler(logger), serverCfg, logger)
}

// Load restores accounts and mail from storage
func (a *App) Load(ctx context.Context) error {
	accounts, err := a.Storage.LoadAccounts(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	messages, err := a.Storage.LoadMail(ctx)
	if err != nil {
		return fmt.Errorf("load mail: %w", err)
	}

	loaded := a.Accounts.Load(accounts)
	a.Mail.Load(messages)
	a.logger.Info("state loaded",
		slog.Int("accounts", loaded),
		slog.Int("mail", len(messages)))
	return nil
}

// Save writes accounts and mail to storage. Both are attempted even if the
// first fails.
func (a *App) Save(ctx context.Context) error {
	accountsErr := a.SaveAccounts(ctx)

	messages := a.Mail.All()
	var mailErr error
	if err := a.Storage.SaveMail(ctx, messages); err != nil {
		mailErr = fmt.Errorf("save mail: %w", err)
	} else {
		a.logger.Debug("mail saved", slog.Int("mail", len(messages)))
	}
	return errors.Join(accountsErr, mailErr)
}

// SaveAccounts writes every account to storage
func (a *App) SaveAccounts(ctx context.Context) error {
	accounts := a.Accounts.Accounts()
	if err := a.Storage.SaveAccounts(ctx, accounts); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	a.logger.Debug("accounts saved", slog.Int("accounts", len(accounts)))
	return nil
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}

var (
	_ session.Persister = (*App)(nil)
	_ server.Saver      = (*App)(nil)
)
