package cli

import (
	"context"
	"time"

	"github.com/brendan.keane/callout/internal/config"
	"github.com/brendan.keane/callout/internal/errors"
	internalhttp "github.com/brendan.keane/callout/internal/http"
	"github.com/brendan.keane/callout/internal/logger"
	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RequestTimeout bounds a single CLI callout.
const RequestTimeout = 30 * time.Second

// HTTPHandler handles the root callout command
type HTTPHandler struct {
	logger  zerolog.Logger
	factory *internalhttp.ClientFactory
}

// NewHTTPHandler creates a new HTTP command handler
func NewHTTPHandler(logger zerolog.Logger) *HTTPHandler {
	return NewHTTPHandlerWithFactory(logger, internalhttp.NewClientFactory(logger))
}

// NewHTTPHandlerWithFactory uses factory for every transport it builds.
func NewHTTPHandlerWithFactory(logger zerolog.Logger, factory *internalhttp.ClientFactory) *HTTPHandler {
	return &HTTPHandler{
		logger:  logger.With().Str("handler", "http").Logger(),
		factory: factory,
	}
}

// Execute performs one callout and writes the response to the command output.
func (h *HTTPHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	call, err := config.LoadCallFromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	if err := call.Validate(); err != nil {
		h.logger.Error().Err(err).Msg("call validation failed")
		return err
	}

	if len(args) == 0 || args[0] == "" {
		return errors.New(errors.ErrorTypeValidation, "path is required").
			WithContext("field", "path").
			WithContext("suggestion", "pass the path relative to the alias base URL, e.g. 'callout --alias Books volumes'")
	}
	path := args[0]

	headers, err := call.HeaderMap()
	if err != nil {
		return err
	}

	reg, err := loadRegistry(h.logger, cfg, h.factory)
	if err != nil {
		return err
	}

	gateway, err := h.factory.CreateGateway(cfg, reg, callout.WithPatchPolicy(call.PatchPolicy()))
	if err != nil {
		return err
	}
	client := gateway.Client(call.Alias)

	req := callout.Request{
		Verb:    call.Verb(),
		Path:    path,
		Query:   call.Query,
		Body:    call.Data,
		Headers: headers,
	}

	log := logger.ForRequest(h.logger, call.Alias, call.Method, path)
	log.Debug().Str("patch_policy", call.PatchPolicy().String()).Msg("processing callout")

	ctx, cancel := context.WithTimeout(commandContext(cmd), RequestTimeout)
	defer cancel()

	// Prepared separately so verbose output shows the request as assembled,
	// before any credentials are attached.
	prepared, err := client.Prepare(ctx, req)
	if err != nil {
		return err
	}

	resp, err := client.Call(ctx, req)
	if err != nil {
		return err
	}

	handler := internalhttp.NewResponseHandlerWithOutput(log, output(cmd), call.Verbose, call.IncludeHeaders)
	return handler.HandleResponse(prepared, resp)
}
