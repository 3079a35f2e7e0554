package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-server/internal/model"
	"github.com/mcoot/gomoku-server/internal/services/match"
	"github.com/mcoot/gomoku-server/internal/web/components"
	"github.com/mcoot/gomoku-server/internal/web/sse"
)

// MatchHandler serves the spectator pages
type MatchHandler struct {
	matches    *match.Registry
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(matches *match.Registry, hubManager *sse.HubManager, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		matches:    matches,
		hubManager: hubManager,
		logger:     logger,
	}
}

// Index lists live matches and recent results
func (h *MatchHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, components.MatchList(h.matches.List(), h.matches.Recent()))
}

// View renders one match's board
func (h *MatchHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		h.render(w, r, http.StatusNotFound, components.NotFound("Invalid game number."))
		return
	}

	snap, err := h.matches.Result(id)
	if err != nil {
		h.render(w, r, http.StatusNotFound, components.NotFound("Game not found: "+id.String()))
		return
	}

	h.render(w, r, http.StatusOK, components.MatchPage(snap))
}

// Events streams board updates for one match
func (h *MatchHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, err := h.matches.Result(id); err != nil {
		http.NotFound(w, r)
		return
	}

	hub := h.hubManager.GetOrCreateHub(id)
	defer h.hubManager.Release(id)

	sse.ServeSSE(w, r, hub, func() ([]sse.Event, bool) {
		snap, err := h.matches.Result(id)
		if err != nil {
			return nil, true
		}
		return sse.MatchEvents(snap), snap.Finished()
	})
}

func (h *MatchHandler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
}

func matchID(r *http.Request) (model.MatchID, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return model.MatchID(id), true
}
