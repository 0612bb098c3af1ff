package api

import (
	"errors"
	"fmt"
)

// HTTPError indicates a non-200 response from the fallback service.
type HTTPError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Step names the protocol step that failed ("download" or "stream").
	Step string
}

// Error returns a string representation of the HTTP error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("fallback %s: status %d", e.Step, e.StatusCode)
}

// Sentinel errors for fallback service fetches.
var (
	// ErrNoToken indicates the download-token response carried no token;
	// the tier cannot serve this request.
	ErrNoToken = errors.New("no download token issued")

	// ErrUnavailable indicates the fallback service could not be reached.
	ErrUnavailable = errors.New("fallback service unavailable")
)
