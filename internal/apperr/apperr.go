// Package apperr defines the error taxonomy shared by the record accessor,
// the auth flow, and the HTTP handlers. Handlers wrap these sentinels with
// context and translate them to status codes exactly once, at the edge.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidTable   = errors.New("invalid table name")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrQueryFailed    = errors.New("query failed")
	ErrNotImplemented = errors.New("not implemented")
)

// Status maps an error to its HTTP status code. Unknown errors are treated
// as store failures.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidTable), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
