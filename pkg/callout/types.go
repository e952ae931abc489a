package callout

import (
	"context"
	"net/http"
)

// Request describes one logical callout. Query is an opaque string that is
// percent-encoded as a whole; Body is sent only for POST, PUT and PATCH.
// A nil Headers map selects the default header table, a non-nil map (even an
// empty one) replaces it entirely.
type Request struct {
	Verb    Verb
	Path    string
	Query   string
	Body    string
	Headers map[string]string
}

// Response is the raw outcome of a callout.
type Response struct {
	StatusCode int
	Status     string
	Proto      string
	Header     http.Header
	Body       string
}

// Endpoint is a resolved alias.
type Endpoint struct {
	Alias      string
	BaseURL    string
	Authorizer Authorizer
}

// Resolver maps an alias to its endpoint.
type Resolver interface {
	Resolve(ctx context.Context, alias string) (Endpoint, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, alias string) (Endpoint, error)

func (f ResolverFunc) Resolve(ctx context.Context, alias string) (Endpoint, error) {
	return f(ctx, alias)
}

// Authorizer attaches transport-level credentials to an assembled request.
type Authorizer interface {
	Authorize(ctx context.Context, req *http.Request) error
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, req *http.Request) error

func (f AuthorizerFunc) Authorize(ctx context.Context, req *http.Request) error {
	return f(ctx, req)
}

// Transport performs a single round trip.
type Transport interface {
	Send(req *http.Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(req *http.Request) (*Response, error)

func (f TransportFunc) Send(req *http.Request) (*Response, error) {
	return f(req)
}
