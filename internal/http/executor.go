package http

import (
	"net/http"
	"time"

	"github.com/brendan.keane/callout/internal/errors"
	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/rs/zerolog"
)

// Executor is the callout.Transport used by the CLI, the jobs and the MCP
// server. It performs exactly one round trip per Send, logs its timing and
// classifies failures as network errors. Status codes are not interpreted.
type Executor struct {
	logger    zerolog.Logger
	transport *callout.HTTPTransport
}

// NewExecutor creates an executor around an HTTP client.
func NewExecutor(logger zerolog.Logger, httpClient HTTPClientProvider) *Executor {
	return &Executor{
		logger:    logger.With().Str("component", "http_executor").Logger(),
		transport: callout.NewHTTPTransport(httpClient),
	}
}

// Send implements callout.Transport.
func (e *Executor) Send(req *http.Request) (*callout.Response, error) {
	logger := e.logger.With().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Logger()

	logger.Debug().Msg("executing HTTP request")

	startTime := time.Now()
	resp, err := e.transport.Send(req)
	duration := time.Since(startTime)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("HTTP request failed")
		return nil, errors.Wrap(err, errors.ErrorTypeNetwork, "HTTP request failed").
			WithContext("url", req.URL.Redacted()).
			WithContext("method", req.Method).
			WithContext("duration", duration)
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Int("body_length", len(resp.Body)).
		Dur("duration", duration).
		Msg("HTTP request completed")

	return resp, nil
}
