package callout

import (
	"context"
	"net/http"
)

// Client is a façade bound to a single alias. It is immutable after
// construction and safe for concurrent use.
type Client struct {
	alias     string
	resolver  Resolver
	transport Transport
	opts      options
}

// NewClient returns a Client for alias. The alias is not validated until the
// first call.
func NewClient(alias string, resolver Resolver, transport Transport, opts ...Option) *Client {
	return &Client{
		alias:     alias,
		resolver:  resolver,
		transport: transport,
		opts:      newOptions(opts),
	}
}

// Alias returns the alias this client was constructed with.
func (c *Client) Alias() string {
	return c.alias
}

// Call is the omnibus entry point: every convenience method delegates here.
// Resolver and transport errors are returned unchanged, and a non-2xx status
// is not an error.
func (c *Client) Call(ctx context.Context, req Request) (*Response, error) {
	httpReq, endpoint, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if endpoint.Authorizer != nil {
		if err := endpoint.Authorizer.Authorize(ctx, httpReq); err != nil {
			return nil, err
		}
	}

	return c.transport.Send(httpReq)
}

// Prepare resolves the alias and assembles the request without
// authorizing or sending it.
func (c *Client) Prepare(ctx context.Context, req Request) (*http.Request, error) {
	httpReq, _, err := c.prepare(ctx, req)
	return httpReq, err
}

func (c *Client) prepare(ctx context.Context, req Request) (*http.Request, Endpoint, error) {
	// Malformed input fails before the registry is consulted.
	if err := validate(req); err != nil {
		return nil, Endpoint{}, err
	}

	endpoint, err := c.resolver.Resolve(ctx, c.alias)
	if err != nil {
		return nil, Endpoint{}, err
	}

	httpReq, err := BuildRequest(ctx, endpoint.BaseURL, req, c.opts.patchPolicy, c.opts.defaultHeaders)
	if err != nil {
		return nil, Endpoint{}, err
	}
	return httpReq, endpoint, nil
}

// Get issues a GET for path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.GetQuery(ctx, path, "")
}

// GetQuery issues a GET for path with an opaque query string.
func (c *Client) GetQuery(ctx context.Context, path, query string) (*Response, error) {
	return c.Call(ctx, Request{Verb: GET, Path: path, Query: query})
}

// Head issues a HEAD for path.
func (c *Client) Head(ctx context.Context, path string) (*Response, error) {
	return c.Call(ctx, Request{Verb: HEAD, Path: path})
}

// Delete issues a DELETE for path.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.DeleteQuery(ctx, path, "")
}

// DeleteQuery issues a DELETE for path with an opaque query string.
func (c *Client) DeleteQuery(ctx context.Context, path, query string) (*Response, error) {
	return c.Call(ctx, Request{Verb: DELETE, Path: path, Query: query})
}

// Post issues a POST with body.
func (c *Client) Post(ctx context.Context, path, body string) (*Response, error) {
	return c.PostQuery(ctx, path, "", body)
}

// PostQuery issues a POST with a query string and body.
func (c *Client) PostQuery(ctx context.Context, path, query, body string) (*Response, error) {
	return c.Call(ctx, Request{Verb: POST, Path: path, Query: query, Body: body})
}

// Put issues a PUT with body.
func (c *Client) Put(ctx context.Context, path, body string) (*Response, error) {
	return c.PutQuery(ctx, path, "", body)
}

// PutQuery issues a PUT with a query string and body.
func (c *Client) PutQuery(ctx context.Context, path, query, body string) (*Response, error) {
	return c.Call(ctx, Request{Verb: PUT, Path: path, Query: query, Body: body})
}

// Patch issues a PATCH with body, subject to the client's PatchPolicy.
func (c *Client) Patch(ctx context.Context, path, body string) (*Response, error) {
	return c.PatchQuery(ctx, path, "", body)
}

// PatchQuery issues a PATCH with a query string and body.
func (c *Client) PatchQuery(ctx context.Context, path, query, body string) (*Response, error) {
	return c.Call(ctx, Request{Verb: PATCH, Path: path, Query: query, Body: body})
}
