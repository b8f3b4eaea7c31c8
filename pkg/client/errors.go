package client

import (
	"errors"
	"fmt"
)

// HTTPError represents a non-2xx HTTP response from the API.
// Message holds the server-provided "message" (or "error") field when the
// body was JSON; Body holds the raw body text otherwise.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsHTTP reports whether err came back from the server, as opposed to a
// request that never completed.
func IsHTTP(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// ServerMessage returns the message the server attached to a rejected
// request. ok is false when err is not an HTTPError or carried no message.
func ServerMessage(err error) (msg string, ok bool) {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Message == "" {
		return "", false
	}
	return httpErr.Message, true
}
