package request

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/gomoku-server/internal/model"
)

// ErrInvalidMatchID is returned when the {id} path variable is not a positive integer
var ErrInvalidMatchID = errors.New("match id must be a positive integer")

// MatchID parses the {id} path variable
func MatchID(r *http.Request) (model.MatchID, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, ErrInvalidMatchID
	}
	return model.MatchID(id), nil
}

// Name returns the {name} path variable
func Name(r *http.Request) string {
	return mux.Vars(r)["name"]
}
