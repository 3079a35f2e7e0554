package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mcoot/gomoku-server/internal/api/apierr"
	"github.com/mcoot/gomoku-server/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, err any) {
	apierr.Write(w, apierr.Internal(fmt.Errorf("panic: %v", err)))
}

// NotFound answers unknown API routes with a JSON error
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.Write(w, apierr.NotFound())
	})
}
