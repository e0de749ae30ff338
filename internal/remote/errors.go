package remote

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned without contacting the API while an endpoint's
// breaker is open.
var ErrCircuitOpen = errors.New("remote: circuit breaker is open")

// NetworkError is a transport failure: DNS, refused connection, timeout or a
// body that could not be read or decoded.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("remote: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a response outside 2xx.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("remote: %s %s: status %d", e.Method, e.URL, e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
