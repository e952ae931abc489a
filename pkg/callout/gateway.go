package callout

import "context"

// Gateway holds the resolver, transport and options shared by every Client it
// hands out, and offers one-shot calls that need no Client of their own.
type Gateway struct {
	resolver  Resolver
	transport Transport
	opts      []Option
}

// NewGateway returns a Gateway. opts apply to every Client it creates.
func NewGateway(resolver Resolver, transport Transport, opts ...Option) *Gateway {
	return &Gateway{
		resolver:  resolver,
		transport: transport,
		opts:      opts,
	}
}

// Client returns a façade bound to alias.
func (g *Gateway) Client(alias string) *Client {
	return NewClient(alias, g.resolver, g.transport, g.opts...)
}

// ClientWith returns a façade bound to alias with extra options applied
// after the gateway's own.
func (g *Gateway) ClientWith(alias string, opts ...Option) *Client {
	all := make([]Option, 0, len(g.opts)+len(opts))
	all = append(all, g.opts...)
	all = append(all, opts...)
	return NewClient(alias, g.resolver, g.transport, all...)
}

// Call builds a transient Client for alias and forwards req to it.
func (g *Gateway) Call(ctx context.Context, alias string, req Request) (*Response, error) {
	return g.Client(alias).Call(ctx, req)
}
