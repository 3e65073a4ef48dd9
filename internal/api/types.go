// Package api provides the Garmin Connect client: the HTTP transport, the
// credential material format, typed response records and the Upstream
// interface the curation layer depends on.
package api

import (
	"context"
	"errors"
	"fmt"
)

// Transport performs one request against Garmin Connect and returns the raw
// response body. An empty body (HTTP 204) is returned as nil.
type Transport interface {
	Do(ctx context.Context, method, endpoint string, params map[string]string, body any) ([]byte, error)
}

// RequestLogEntry records a request made to a transport.
type RequestLogEntry struct {
	Method   string
	Endpoint string
	Params   map[string]string
	Body     any
}

// APIError is returned when Garmin Connect answers with an error status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// Login failures.
var (
	ErrMFARequired        = errors.New("multi-factor authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRateLimited        = errors.New("too many login attempts, try again later")
	ErrMalformedTokens    = errors.New("malformed token material")
)

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
