package api

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"sync"
)

// MockTransport is an in-memory fake suitable for deterministic unit tests.
// Fixtures and Errors are keyed by "METHOD /endpoint"; query parameters are
// not part of the key.
type MockTransport struct {
	Fixtures map[string]string
	Errors   map[string]error

	mu         sync.Mutex
	RequestLog []RequestLogEntry
}

var _ Transport = (*MockTransport)(nil)

// NewMockTransport creates a mock transport with the given GET fixtures.
func NewMockTransport(fixtures map[string]string) *MockTransport {
	t := &MockTransport{
		Fixtures: make(map[string]string),
		Errors:   make(map[string]error),
	}
	for endpoint, body := range fixtures {
		t.Fixtures[key(http.MethodGet, endpoint)] = body
	}
	return t
}

func key(method, endpoint string) string {
	return method + " " + endpoint
}

// Set registers a raw JSON response for method and endpoint.
func (t *MockTransport) Set(method, endpoint, body string) *MockTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Fixtures[key(method, endpoint)] = body
	return t
}

// Fail makes method and endpoint return err.
func (t *MockTransport) Fail(method, endpoint string, err error) *MockTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Errors[key(method, endpoint)] = err
	return t
}

// Do answers from the fixtures. Unknown endpoints return a 404 APIError.
func (t *MockTransport) Do(ctx context.Context, method, endpoint string, params map[string]string, body any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.RequestLog = append(t.RequestLog, RequestLogEntry{
		Method:   method,
		Endpoint: endpoint,
		Params:   maps.Clone(params),
		Body:     body,
	})

	k := key(method, endpoint)
	if err, ok := t.Errors[k]; ok {
		return nil, err
	}
	data, ok := t.Fixtures[k]
	if !ok {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("no fixture for %s", k)}
	}
	if data == "" {
		return nil, nil
	}
	return []byte(data), nil
}

// RequestsMade returns the number of requests made to this transport.
func (t *MockTransport) RequestsMade() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.RequestLog)
}

// Requests returns the recorded requests for method and endpoint.
func (t *MockTransport) Requests(method, endpoint string) []RequestLogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []RequestLogEntry
	for _, r := range t.RequestLog {
		if r.Method == method && r.Endpoint == endpoint {
			out = append(out, r)
		}
	}
	return out
}
