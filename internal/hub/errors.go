package hub

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusTextLoginRedirect marks responses that require signing in again.
// The hub answers 401 for an expired or missing session.
const StatusTextLoginRedirect = "ErrLoginRedirect"

// Sentinel errors matched with errors.Is against an *Error
var (
	ErrLoginRedirect    = errors.New("login required")
	ErrNotFound         = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrBadRequest       = errors.New("bad request")
	ErrServerError      = errors.New("server error")
	ErrNetworkError     = errors.New("network error occurred")
)

// Error is returned for every non-2xx hub response
type Error struct {
	StatusCode int
	StatusText string
	Message    string
}

func newError(statusCode int, message string) *Error {
	statusText := http.StatusText(statusCode)
	if statusCode == http.StatusUnauthorized {
		statusText = StatusTextLoginRedirect
	}
	return &Error{
		StatusCode: statusCode,
		StatusText: statusText,
		Message:    message,
	}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hub: %s (status code: %d)", e.StatusText, e.StatusCode)
	}
	return fmt.Sprintf("hub: %s: %s (status code: %d)", e.StatusText, e.Message, e.StatusCode)
}

// Is maps the status onto the package sentinels
func (e *Error) Is(target error) bool {
	switch target {
	case ErrLoginRedirect:
		return e.StatusText == StatusTextLoginRedirect
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrPermissionDenied:
		return e.StatusCode == http.StatusForbidden
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrServerError:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// IsLoginRedirect reports whether err means the user must sign in again.
// It compares the status marker by exact match.
func IsLoginRedirect(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusText == StatusTextLoginRedirect
	}
	return false
}
