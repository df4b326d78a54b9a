package llm

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a request is attempted without a
// configured credential. It is distinct from generic transport failures
// so callers can tell the user to fix their settings.
var ErrMissingAPIKey = errors.New("API key is not configured")

// ErrInvalidEndpoint is returned when the configured base URL cannot be
// parsed into a usable request URL.
var ErrInvalidEndpoint = errors.New("invalid API endpoint URL")

// ErrEmptyResponse is returned when the server replied successfully but
// produced no content at all.
var ErrEmptyResponse = errors.New("server returned no data")

// StatusError reports a non-2xx HTTP response, carrying the
// server-supplied error message verbatim when one was present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (status %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP error: status %d", e.Code)
}
