package inference

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamStatus is wrapped by *StatusError for non-2xx replies.
	ErrUpstreamStatus = errors.New("emotion api returned non-success status")

	// ErrUpstreamUnavailable covers dial failures, resets and timeouts.
	ErrUpstreamUnavailable = errors.New("emotion api unavailable")

	// ErrBadResponse is returned when the body cannot be decoded or fails
	// schema validation.
	ErrBadResponse = errors.New("emotion api returned an invalid response")
)

// maxErrorBody caps how much of an upstream error body is retained.
const maxErrorBody = 512

// StatusError reports a non-2xx reply from the inference endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("emotion api status %d", e.StatusCode)
	}
	return fmt.Sprintf("emotion api status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUpstreamStatus }
