package cli

import (
	"strings"

	"github.com/brendan.keane/callout/internal/config"
	"github.com/brendan.keane/callout/internal/jobs"
	"github.com/brendan.keane/callout/internal/logger"
	"github.com/brendan.keane/callout/internal/registry"
	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the callout command tree. Global settings are
// loaded once in the persistent pre-run and stored on the command context.
func NewRootCommand() *cobra.Command {
	log := zerolog.Nop()

	root := &cobra.Command{
		Use:   "callout [path]",
		Short: "Call HTTP APIs by alias",
		Long: `callout sends HTTP requests to APIs registered under an alias.
The alias registry holds each API's base URL (or OpenAPI document) and auth
policy, so a call only names the alias, the verb and a relative path.`,
		Example: `  callout --alias Books volumes -q 'q=salesforce'
  callout --alias CRM -X PATCH accounts/001 -d '{"Name":"Acme"}'
  callout aliases`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}

			cfg, err := config.LoadFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log = logger.SetupFromFlags(cfg.LogLevel, false, cfg.Debug)
			zlog.Logger = log
			cmd.SetContext(config.WithConfig(commandContext(cmd), cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return NewHTTPHandler(log).Execute(cmd, args)
		},
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	defaults := config.NewConfig()

	pf := root.PersistentFlags()
	pf.String("registry", defaults.RegistryPath, "Alias registry file (YAML)")
	pf.String("store", defaults.StorePath, "Record store used by the jobs (bbolt file)")
	pf.String("transport", defaults.Transport, "HTTP transport: net or resty")
	pf.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	pf.Bool("debug", false, "Debug logging with caller information")

	f := root.Flags()
	f.StringP("alias", "a", "", "Alias of the API to call")
	f.StringP("request", "X", defaults.Call.Method, "HTTP method (GET, POST, PUT, PATCH, DELETE, HEAD)")
	f.StringP("query", "q", "", "Query text, encoded as a whole and appended to the path")
	f.StringP("data", "d", "", "Request body for POST, PUT and PATCH")
	f.StringArrayP("header", "H", nil, "Header 'Name: value'; any -H replaces the default headers")
	f.Bool("patch-native", false, "Send PATCH as PATCH instead of POST with ?_HttpMethod=PATCH")
	f.BoolP("verbose", "v", false, "Show request and response details on stderr")
	f.BoolP("include", "i", false, "Include status line and response headers in output")

	_ = root.RegisterFlagCompletionFunc("alias", aliasCompletion)
	_ = root.RegisterFlagCompletionFunc("request", methodCompletion)

	root.AddCommand(
		newAliasesCommand(&log),
		newMCPCommand(&log),
		newJobCommand(&log),
		newRecordsCommand(&log),
	)
	return root
}

func newAliasesCommand(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "aliases",
		Short: "List registered aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewAliasesHandler(*log).Execute(cmd, args)
		},
	}
}

func newMCPCommand(log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the callout tools over MCP stdio",
		Long: `Starts a Model Context Protocol server on stdin/stdout exposing the
callout, aliases and operations tools.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewMCPHandler(*log).Execute(cmd, args)
		},
	}
	cmd.Flags().String("desc", "", "Instructions sent to the MCP client")
	cmd.Flags().StringSlice("allow-aliases", nil, "Aliases the tools may call (default all)")
	cmd.Flags().StringSlice("allow-methods", nil, "Methods the tools may use (default all)")
	_ = cmd.RegisterFlagCompletionFunc("allow-aliases", aliasCompletion)
	_ = cmd.RegisterFlagCompletionFunc("allow-methods", methodCompletion)
	return cmd
}

func newJobCommand(log *zerolog.Logger) *cobra.Command {
	job := &cobra.Command{
		Use:   "job",
		Short: "Run callout jobs against the record store",
	}

	queueable := &cobra.Command{
		Use:   "queueable",
		Short: "Call GET path on an alias and record the outcome on a record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewJobHandler(*log).Queueable(cmd, args)
		},
	}
	queueable.Flags().String("alias", "", "Alias to call")
	queueable.Flags().String("path", "", "Path to GET")
	queueable.Flags().String("record", "", "Record ID to update")
	_ = queueable.RegisterFlagCompletionFunc("alias", aliasCompletion)

	batch := &cobra.Command{
		Use:   "batch",
		Short: "Append a suffix to every record name in scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewJobHandler(*log).Batch(cmd, args)
		},
	}
	batch.Flags().String("suffix", " (updated)", "Suffix appended to each name")
	batch.Flags().Int("scope-size", jobs.DefaultScopeSize, "Records per scope")

	job.AddCommand(queueable, batch)
	return job
}

func newRecordsCommand(log *zerolog.Logger) *cobra.Command {
	records := &cobra.Command{
		Use:   "records",
		Short: "Manage the local record store",
	}

	put := &cobra.Command{
		Use:   "put ID NAME",
		Short: "Create or replace a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewRecordsHandler(*log).Put(cmd, args)
		},
	}
	put.Flags().String("status", "", "Record status")

	list := &cobra.Command{
		Use:   "list",
		Short: "List records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewRecordsHandler(*log).List(cmd, args)
		},
	}

	records.AddCommand(put, list)
	return records
}

func methodCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var methods []string
	for _, v := range callout.Verbs() {
		if strings.HasPrefix(string(v), strings.ToUpper(toComplete)) {
			methods = append(methods, string(v))
		}
	}
	return methods, cobra.ShellCompDirectiveNoFileComp
}

// aliasCompletion reads the registry directly; completion runs without the
// persistent pre-run.
func aliasCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.LoadFromFlags(cmd.Flags())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	reg, err := registry.LoadFile(cfg.RegistryPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, name := range reg.Names() {
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
