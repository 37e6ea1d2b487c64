package client

import (
	"fmt"
	"net/http"
)

// ErrUnexpectedStatus is returned when the media server answers with anything
// other than 200 OK.
type ErrUnexpectedStatus struct {
	StatusCode int
	Path       string
}

// Error implements the error interface
func (e *ErrUnexpectedStatus) Error() string {
	return fmt.Sprintf("unexpected status %d (%s) for %s", e.StatusCode, http.StatusText(e.StatusCode), e.Path)
}

// Is allows for error checking with errors.Is()
func (e *ErrUnexpectedStatus) Is(target error) bool {
	_, ok := target.(*ErrUnexpectedStatus)
	return ok
}

// Unauthorized reports whether the server rejected the token.
func (e *ErrUnexpectedStatus) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ErrPayloadTooLarge is returned when a document exceeds the read limit. The
// document is rejected whole rather than parsed from a truncated prefix.
type ErrPayloadTooLarge struct {
	Limit int64
	Path  string
}

// Error implements the error interface
func (e *ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("payload for %s exceeds %d bytes", e.Path, e.Limit)
}

// Is allows for error checking with errors.Is()
func (e *ErrPayloadTooLarge) Is(target error) bool {
	_, ok := target.(*ErrPayloadTooLarge)
	return ok
}
