package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoSources is returned when Search is called with an empty source set.
	ErrNoSources = errors.New("at least one source must be selected")
	// ErrTimeout is a fatal failure raised when Config.Timeout elapses.
	ErrTimeout = errors.New("search timed out")
	// ErrCanceled marks a call abandoned by its caller. It is not a failure.
	ErrCanceled = errors.New("search canceled")
)

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	text := e.Body
	if text == "" {
		text = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, text)
}

// IsCanceled reports whether err is the outcome of caller cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}
