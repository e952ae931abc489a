package callout

import (
	"io"
	"net/http"
)

// Doer is the subset of *http.Client a transport needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPTransport sends requests through a Doer and reads the whole body.
type HTTPTransport struct {
	Client Doer
}

// NewHTTPTransport returns a transport backed by client, or by
// http.DefaultClient when client is nil.
func NewHTTPTransport(client Doer) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{Client: client}
}

// Send performs the round trip. Errors from the Doer and from reading the
// body are returned as-is.
func (t *HTTPTransport) Send(req *http.Request) (*Response, error) {
	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Header:     resp.Header,
		Body:       string(body),
	}, nil
}
