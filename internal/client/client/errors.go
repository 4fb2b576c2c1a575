package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable means no usable response arrived: the request failed in
	// transport, timed out, or the body could not be decoded.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized means the backend rejected the bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedResponse means the backend reported success but left out
	// fields the operation needs (for example a token after login).
	ErrMalformedResponse = errors.New("malformed response")
)

// BackendError is a failure reported by the backend itself, usually a
// {"success": false, "error": "..."} body. Message is meant for the user.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 and 403 responses.
func (e *BackendError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}
