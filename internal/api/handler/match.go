package handler

import (
	"net/http"

	"github.com/mcoot/gomoku-server/internal/api/request"
	"github.com/mcoot/gomoku-server/internal/api/response"
	"github.com/mcoot/gomoku-server/internal/services/match"
)

// MatchHandler handles match endpoints
type MatchHandler struct {
	matches *match.Registry
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matches *match.Registry) *MatchHandler {
	return &MatchHandler{
		matches: matches,
	}
}

// List handles GET /api/v1/matches
func (h *MatchHandler) List(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, response.MatchesFromModel(h.matches.List()))
}

// Get handles GET /api/v1/matches/{id}
// Matches evicted from the registry are served from recent results.
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.MatchID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	snap, err := h.matches.Result(id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, response.MatchDetailFromModel(snap))
}

// Results handles GET /api/v1/results
func (h *MatchHandler) Results(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, response.MatchesFromModel(h.matches.Recent()))
}
