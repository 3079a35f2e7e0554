package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gomoku-server/internal/middleware"
	"github.com/mcoot/gomoku-server/internal/web/components"
)

// Recovery renders the HTML error page when a spectator handler panics
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, _ any) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_ = components.ServerError().Render(r.Context(), w)
	})
}
