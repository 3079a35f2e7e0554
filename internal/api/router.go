package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-server/internal/api/handler"
	"github.com/mcoot/gomoku-server/internal/api/middleware"
	"github.com/mcoot/gomoku-server/internal/api/response"
	logging "github.com/mcoot/gomoku-server/internal/middleware"
	"github.com/mcoot/gomoku-server/internal/services/account"
	"github.com/mcoot/gomoku-server/internal/services/match"
)

// ConnectionCounter reports the number of live telnet connections
type ConnectionCounter interface {
	Connections() int
}

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Accounts *account.Directory
	Matches  *match.Registry
	// Mail is optional; account profiles omit the unread count without it
	Mail handler.MailCounter
	// Connections is optional; health reports 0 connections without it
	Connections ConnectionCounter
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Mount(r, cfg)
	return r
}

// Mount registers the API routes under /api/v1 on an existing router
func Mount(r *mux.Router, cfg RouterConfig) {
	matchHandler := handler.NewMatchHandler(cfg.Matches)
	accountHandler := handler.NewAccountHandler(cfg.Accounts, cfg.Mail)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(logging.Logging(cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))
	api.NotFoundHandler = middleware.NotFound()

	api.HandleFunc("/health", healthHandler(cfg)).Methods(http.MethodGet)

	api.HandleFunc("/matches", matchHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", matchHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/results", matchHandler.Results).Methods(http.MethodGet)

	api.HandleFunc("/who", accountHandler.Who).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{name}", accountHandler.Get).Methods(http.MethodGet)
}

func healthHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		health := response.Health{
			Status:  "ok",
			Matches: cfg.Matches.Count(),
		}
		if cfg.Connections != nil {
			health.Connections = cfg.Connections.Connections()
		}
		response.OK(w, health)
	}
}
