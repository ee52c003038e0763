package client

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a package is not known to an upstream.
var ErrNotFound = errors.New("not found")

// HTTPError represents a non-success HTTP response from an upstream.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}

func (e *HTTPError) Unwrap() error {
	if e.IsNotFound() {
		return ErrNotFound
	}
	return nil
}
