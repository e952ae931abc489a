package http

import (
	"io"
	"net/http"

	"github.com/brendan.keane/callout/pkg/callout"
)

// HTTPClientProvider defines interface for the underlying HTTP client
// Enables testing with mock HTTP clients
type HTTPClientProvider interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResponseHandler renders a callout outcome for the command line.
type ResponseHandler interface {
	HandleResponse(req *http.Request, resp *callout.Response) error
}

// Output holds the writers a ResponseHandler prints to.
type Output struct {
	Stdout io.Writer
	Stderr io.Writer
}
