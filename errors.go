package hubclient

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures that happened below HTTP: connection refused,
	// timeouts, DNS. Application-level statuses (404, 409, ...) are never errors.
	ErrTransport = errors.New("transport failure")

	// ErrInvalidRange is returned by RandomNumberBetweenInclusive when min > max.
	ErrInvalidRange = errors.New("invalid range")

	// ErrUnsupportedBody is returned when a structured body is sent without a
	// JSON Content-Type.
	ErrUnsupportedBody = errors.New("unsupported request body")
)

// TransportError carries the request that failed to reach the hub.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}
