package response

import (
	"encoding/json"
	"net/http"
)

// OK writes data as a 200 JSON response. Every body describes live server
// state, so none of it may be cached.
func OK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(data)
}
