package board

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBoardNotFound is returned when no board matches the requested
// name.
var ErrBoardNotFound = errors.New("board not found")

// APIError describes a non-success response from the board service.
// It carries enough context to identify the failing operation and
// entity in logs.
type APIError struct {
	// Op is the logical operation, e.g. "create story".
	Op string

	// StatusCode is the HTTP status returned by the service.
	StatusCode int

	// URL is the request URL.
	URL string

	// Body is a truncated copy of the response body.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("board API: %s: status %d (%s): %s",
		e.Op, e.StatusCode, e.URL, e.Body)
}

// IsNotFound reports whether err is an APIError with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
