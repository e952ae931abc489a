// Package mcp exposes the callout gateway to agents as Model Context
// Protocol tools served over stdio.
package mcp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/brendan.keane/callout/internal/config"
	"github.com/brendan.keane/callout/internal/errors"
	"github.com/brendan.keane/callout/internal/logger"
	"github.com/brendan.keane/callout/internal/registry"
	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/brendan.keane/callout/pkg/openapi"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

const (
	serverName    = "callout"
	serverVersion = "1.0.0"

	defaultContextLines = 5
)

// Catalog is the alias information the tools expose.
type Catalog interface {
	Names() []string
	Entry(alias string) (registry.Entry, bool)
	Operations(ctx context.Context, alias, pathFilter, methodFilter string) ([]openapi.Operation, error)
}

// Server serves the callout, aliases and operations tools.
type Server struct {
	logger  zerolog.Logger
	config  config.MCPConfig
	gateway *callout.Gateway
	catalog Catalog
	mcp     *server.MCPServer
}

// NewServer builds the MCP server and registers its tools.
func NewServer(log zerolog.Logger, cfg config.MCPConfig, gateway *callout.Gateway, catalog Catalog) *Server {
	s := &Server{
		logger:  logger.ForComponent(log, "mcp_server"),
		config:  cfg,
		gateway: gateway,
		catalog: catalog,
	}

	opts := []server.ServerOption{server.WithToolCapabilities(false)}
	if cfg.Description != "" {
		opts = append(opts, server.WithInstructions(cfg.Description))
	}
	s.mcp = server.NewMCPServer(serverName, serverVersion, opts...)

	s.mcp.AddTool(s.calloutTool(), s.handleCallout)
	s.mcp.AddTool(s.aliasesTool(), s.handleAliases)
	s.mcp.AddTool(s.operationsTool(), s.handleOperations)
	return s
}

// Serve runs the stdio transport until stdin closes.
func (s *Server) Serve() error {
	s.logger.Debug().Strs("aliases", s.aliases()).Msg("MCP server started")
	if err := server.ServeStdio(s.mcp); err != nil {
		return errors.Wrap(err, errors.ErrorTypeMCP, "MCP stdio server failed")
	}
	return nil
}

// aliases returns the aliases the tools may use.
func (s *Server) aliases() []string {
	names := s.catalog.Names()
	if len(s.config.AllowedAliases) == 0 {
		return names
	}
	allowed := make([]string, 0, len(names))
	for _, name := range names {
		if slices.Contains(s.config.AllowedAliases, name) {
			allowed = append(allowed, name)
		}
	}
	return allowed
}

func (s *Server) methods() []string {
	if len(s.config.AllowedMethods) == 0 {
		return []string{string(callout.GET)}
	}
	return s.config.AllowedMethods
}

func (s *Server) calloutTool() mcp.Tool {
	return mcp.NewTool("callout",
		mcp.WithDescription("Send one HTTP request to a registered alias. The query is percent-encoded as a whole and "+
			"appended directly after the trailing slash of the path. "+
			"Non-2xx statuses are returned, not raised. "+
			"Use 'regex' to return only matching excerpts of large responses."),
		mcp.WithString("alias", mcp.Required(), mcp.Description("Registered alias"), mcp.Enum(s.aliases()...)),
		mcp.WithString("method", mcp.Description("HTTP method (default GET)"), mcp.Enum(s.methods()...)),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the alias base URL")),
		mcp.WithString("query", mcp.Description("Opaque query text, encoded as a whole")),
		mcp.WithString("body", mcp.Description("Request body, sent for POST, PUT and PATCH")),
		mcp.WithObject("headers", mcp.Description("Headers replacing the defaults (Content-Type and Accept application/json)")),
		mcp.WithBoolean("patch_native", mcp.Description("Send PATCH as PATCH instead of POST with the method override marker")),
		mcp.WithString("regex", mcp.Description("Regex to search the response body; returns matches with context")),
		mcp.WithNumber("context_lines", mcp.Description("Context around regex matches, in ~80 character units"), mcp.DefaultNumber(defaultContextLines)),
	)
}

func (s *Server) aliasesTool() mcp.Tool {
	return mcp.NewTool("aliases",
		mcp.WithDescription("List the registered aliases with their base URL source and auth policy."),
	)
}

func (s *Server) operationsTool() mcp.Tool {
	return mcp.NewTool("operations",
		mcp.WithDescription("List operations documented by an OpenAPI-backed alias."),
		mcp.WithString("alias", mcp.Required(), mcp.Description("Registered alias with an OpenAPI document")),
		mcp.WithString("path", mcp.Description("Path filter; '*' or a trailing '*' matches by prefix")),
		mcp.WithString("method", mcp.Description("Method filter, comma separated, or ANY")),
	)
}

func (s *Server) handleCallout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alias, err := request.RequireString("alias")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !slices.Contains(s.aliases(), alias) {
		return mcp.NewToolResultError(fmt.Sprintf("Alias %q not allowed. Allowed aliases: %v", alias, s.aliases())), nil
	}

	method := strings.ToUpper(request.GetString("method", string(callout.GET)))
	verb, ok := callout.ParseVerb(method)
	if !ok || !slices.Contains(s.methods(), string(verb)) {
		return mcp.NewToolResultError(fmt.Sprintf("Method %s not allowed. Allowed methods: %v", method, s.methods())), nil
	}

	req := callout.Request{
		Verb:    verb,
		Path:    path,
		Query:   request.GetString("query", ""),
		Body:    request.GetString("body", ""),
		Headers: headersArg(request.GetArguments()["headers"]),
	}

	client := s.gateway.Client(alias)
	if request.GetBool("patch_native", false) {
		client = s.gateway.ClientWith(alias, callout.WithPatchPolicy(callout.PatchNative))
	}

	s.logger.Debug().
		Str("alias", alias).
		Str("method", method).
		Str("path", path).
		Bool("has_body", req.Body != "").
		Msg("executing callout via MCP")

	resp, err := client.Call(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Msg("callout failed via MCP")
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	text := resp.Body
	if pattern := strings.TrimSpace(request.GetString("regex", "")); pattern != "" {
		contextLines := int(request.GetFloat("context_lines", defaultContextLines))
		filtered, err := filterRegex(resp.Body, pattern, contextLines)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text = filtered.Content + "\n\n" + filtered.Summary()
	}

	return mcp.NewToolResultText(fmt.Sprintf("HTTP Status: %d\n\n%s", resp.StatusCode, text)), nil
}

// headersArg converts a JSON object argument into a header map. A missing
// argument yields nil so the default headers apply.
func headersArg(raw any) map[string]string {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	headers := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			headers[k] = s
		} else {
			headers[k] = fmt.Sprint(v)
		}
	}
	return headers
}

func (s *Server) handleAliases(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, name := range s.aliases() {
		entry, _ := s.catalog.Entry(name)
		fmt.Fprintf(&b, "%s\t%s\tauth=%s", name, entry.Source(), entry.Auth.Kind())
		if entry.Description != "" {
			fmt.Fprintf(&b, "\t%s", entry.Description)
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("No aliases registered"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleOperations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alias, err := request.RequireString("alias")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !slices.Contains(s.aliases(), alias) {
		return mcp.NewToolResultError(fmt.Sprintf("Alias %q not allowed", alias)), nil
	}

	ops, err := s.catalog.Operations(ctx, alias, request.GetString("path", "*"), request.GetString("method", "ANY"))
	if err != nil {
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	allowed := s.methods()
	var lines []string
	for _, op := range ops {
		if !slices.Contains(allowed, op.Method) {
			continue
		}
		line := fmt.Sprintf("%-6s %s", op.Method, op.Path)
		if op.Summary != "" {
			line += "  " + op.Summary
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("No operations found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
