package handler

import (
	"errors"
	"net/http"

	"github.com/mcoot/gomoku-server/internal/api/apierr"
	"github.com/mcoot/gomoku-server/internal/api/request"
)

// writeError reports err, treating bad path parameters as invalid requests
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, request.ErrInvalidMatchID) {
		err = apierr.InvalidRequest(err)
	}
	apierr.Write(w, err)
}
