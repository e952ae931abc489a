package testutil

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/brendan.keane/callout/internal/errors"
	"github.com/brendan.keane/callout/pkg/callout"
)

// MockHTTPClient returns a canned response and records the requests it
// received. It satisfies callout.Doer.
type MockHTTPClient struct {
	Response *http.Response
	Error    error
	Requests []*http.Request
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	return m.Response, m.Error
}

// NewMockHTTPClient creates a mock HTTP client with the given response and error
func NewMockHTTPClient(body string, statusCode int, headers map[string]string, err error) *MockHTTPClient {
	var resp *http.Response
	if err == nil {
		resp = &http.Response{
			StatusCode: statusCode,
			Status:     http.StatusText(statusCode),
			Proto:      "HTTP/1.1",
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}
		for key, value := range headers {
			resp.Header.Set(key, value)
		}
	}

	return &MockHTTPClient{Response: resp, Error: err}
}

// StaticResolver resolves every alias in bases to its base URL and returns
// a resolution error for anything else.
func StaticResolver(bases map[string]string) callout.Resolver {
	return callout.ResolverFunc(func(_ context.Context, alias string) (callout.Endpoint, error) {
		base, ok := bases[alias]
		if !ok {
			return callout.Endpoint{}, errors.New(errors.ErrorTypeResolution, "unknown alias").
				WithContext("alias", alias)
		}
		return callout.Endpoint{Alias: alias, BaseURL: base}, nil
	})
}

// MockTransport records outgoing requests and answers with Response or Err.
type MockTransport struct {
	Response *callout.Response
	Err      error
	Requests []*http.Request
}

func (m *MockTransport) Send(req *http.Request) (*callout.Response, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// MockError is a plain error for tests
type MockError struct {
	Message string
}

func (e *MockError) Error() string {
	return e.Message
}

// NewMockError creates a new mock error
func NewMockError(message string) *MockError {
	return &MockError{Message: message}
}
