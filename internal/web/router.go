package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	logging "github.com/mcoot/gomoku-server/internal/middleware"
	"github.com/mcoot/gomoku-server/internal/services/match"
	"github.com/mcoot/gomoku-server/internal/web/handler"
	"github.com/mcoot/gomoku-server/internal/web/middleware"
	"github.com/mcoot/gomoku-server/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger     *slog.Logger
	Matches    *match.Registry
	HubManager *sse.HubManager
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Mount(r, cfg)
	return r
}

// Mount registers the spectator routes on an existing router
func Mount(r *mux.Router, cfg RouterConfig) {
	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}
	matchHandler := handler.NewMatchHandler(cfg.Matches, hubManager, cfg.Logger)

	pages := r.NewRoute().Subrouter()
	pages.Use(logging.Logging(cfg.Logger))
	pages.Use(middleware.Recovery(cfg.Logger))

	pages.HandleFunc("/", matchHandler.Index).Methods(http.MethodGet)
	pages.HandleFunc("/matches/{id}", matchHandler.View).Methods(http.MethodGet)
	pages.HandleFunc("/matches/{id}/events", matchHandler.Events).Methods(http.MethodGet)
}
