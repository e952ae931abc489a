package cli

import (
	"github.com/brendan.keane/callout/internal/config"
	internalhttp "github.com/brendan.keane/callout/internal/http"
	"github.com/brendan.keane/callout/internal/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// MCPHandler handles MCP server commands
type MCPHandler struct {
	logger  zerolog.Logger
	factory *internalhttp.ClientFactory
}

// NewMCPHandler creates a new MCP command handler
func NewMCPHandler(logger zerolog.Logger) *MCPHandler {
	return &MCPHandler{
		logger:  logger.With().Str("handler", "mcp").Logger(),
		factory: internalhttp.NewClientFactory(logger),
	}
}

// Build assembles the MCP server without serving it.
func (h *MCPHandler) Build(cmd *cobra.Command) (*mcp.Server, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load configuration")
		return nil, err
	}

	mcpCfg, err := config.LoadMCPFromFlags(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := mcpCfg.Validate(); err != nil {
		return nil, err
	}

	reg, err := loadRegistry(h.logger, cfg, h.factory)
	if err != nil {
		return nil, err
	}

	gateway, err := h.factory.CreateGateway(cfg, reg)
	if err != nil {
		return nil, err
	}

	h.logger.Debug().
		Strs("allowed_aliases", mcpCfg.AllowedAliases).
		Strs("allowed_methods", mcpCfg.AllowedMethods).
		Str("transport", cfg.Transport).
		Msg("starting MCP server")

	return mcp.NewServer(h.logger, mcpCfg, gateway, reg), nil
}

// Execute serves MCP over stdio until the client disconnects.
func (h *MCPHandler) Execute(cmd *cobra.Command, args []string) error {
	server, err := h.Build(cmd)
	if err != nil {
		return err
	}
	return server.Serve()
}
