package http

import (
	"net/http"

	"github.com/brendan.keane/callout/internal/config"
	"github.com/brendan.keane/callout/internal/errors"
	calloutHTTP "github.com/brendan.keane/callout/pkg/http"
	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ClientFactory centralizes transport creation so the CLI, the jobs and the
// MCP server build their clients the same way.
type ClientFactory struct {
	logger zerolog.Logger
	lambda *calloutHTTP.Client
}

// NewClientFactory creates a new client factory
func NewClientFactory(logger zerolog.Logger) *ClientFactory {
	return &ClientFactory{
		logger: logger,
		lambda: calloutHTTP.NewClient(),
	}
}

// NewClientFactoryWithClient uses client for every transport it builds.
func NewClientFactoryWithClient(logger zerolog.Logger, client *calloutHTTP.Client) *ClientFactory {
	return &ClientFactory{logger: logger, lambda: client}
}

// HTTPClient returns a standard client that also understands lambda:// URLs.
// The registry uses it for OpenAPI documents and OAuth2 token requests.
func (f *ClientFactory) HTTPClient() *http.Client {
	return &http.Client{Transport: calloutHTTP.NewTransport(f.lambda)}
}

// CreateExecutor builds the transport selected by cfg.Transport.
func (f *ClientFactory) CreateExecutor(cfg *config.Config) (*Executor, error) {
	var doer HTTPClientProvider

	switch cfg.Transport {
	case "", config.TransportNet:
		doer = f.lambda
	case config.TransportResty:
		doer = NewRestyDoer(resty.New(), calloutHTTP.NewTransport(f.lambda))
	default:
		return nil, errors.New(errors.ErrorTypeConfig, "unknown transport").
			WithContext("transport", cfg.Transport)
	}

	f.logger.Debug().Str("transport", cfg.Transport).Msg("transport created")
	return NewExecutor(f.logger, doer), nil
}

// CreateGateway wires a resolver and the configured transport into a
// callout gateway.
func (f *ClientFactory) CreateGateway(cfg *config.Config, resolver callout.Resolver, opts ...callout.Option) (*callout.Gateway, error) {
	executor, err := f.CreateExecutor(cfg)
	if err != nil {
		return nil, err
	}
	return callout.NewGateway(resolver, executor, opts...), nil
}
