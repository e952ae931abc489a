package http

import (
	"net/http"
)

// Transport implements http.RoundTripper with Lambda support, so clients
// that only accept a RoundTripper can still reach lambda:// endpoints.
type Transport struct {
	*Client
}

// NewTransport wraps client as a RoundTripper.
func NewTransport(client *Client) *Transport {
	return &Transport{Client: client}
}

// RoundTrip implements the http.RoundTripper interface
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.Do(req)
}
