package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrFetch is matched by every *FetchError via errors.Is.
var ErrFetch = errors.New("fetch failed")

// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
var ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

// FetchError describes a failed retrieval: a transport error, a timeout,
// or a response with a non-2xx status.
type FetchError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFetch.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// Temporary reports whether retrying the request may succeed.
// Transport errors, 429 and 5xx responses are temporary; other statuses are not.
func (e *FetchError) Temporary() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
