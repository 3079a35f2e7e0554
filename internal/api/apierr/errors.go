package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/gomoku-server/internal/model"
)

// Error codes carried in the JSON body
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeMatchNotFound   = "MATCH_NOT_FOUND"
	CodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Body is the JSON shape of an error: {"error":{"code":...,"message":...}}
type Body struct {
	Error Detail `json:"error"`
}

// Detail is the code and human readable message of an error
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error is a failure with the status and code it is reported as
type Error struct {
	Status int
	Detail Detail
	cause  error
}

func (e *Error) Error() string {
	return e.Detail.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(status int, code, message string, cause error) *Error {
	return &Error{Status: status, Detail: Detail{Code: code, Message: message}, cause: cause}
}

// InvalidRequest reports a malformed request; cause supplies the message
func InvalidRequest(cause error) *Error {
	return newError(http.StatusBadRequest, CodeInvalidRequest, cause.Error(), cause)
}

// NotFound reports an unknown route
func NotFound() *Error {
	return newError(http.StatusNotFound, CodeNotFound, "Not found", nil)
}

// Internal reports an unexpected failure without leaking its detail
func Internal(cause error) *Error {
	return newError(http.StatusInternalServerError, CodeInternalError, "Internal server error", cause)
}

// From classifies err. Domain lookups that miss become 404s; anything
// unrecognised is an internal error.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, model.ErrMatchNotFound):
		return newError(http.StatusNotFound, CodeMatchNotFound, "Match not found", err)
	case errors.Is(err, model.ErrAccountNotFound):
		return newError(http.StatusNotFound, CodeAccountNotFound, "Account not found", err)
	default:
		return Internal(err)
	}
}

// Write classifies err and writes it as the response
func Write(w http.ResponseWriter, err error) {
	e := From(err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(Body{Error: e.Detail})
}
