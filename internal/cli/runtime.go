package cli

import (
	"context"

	"github.com/brendan.keane/callout/internal/config"
	"github.com/brendan.keane/callout/internal/errors"
	internalhttp "github.com/brendan.keane/callout/internal/http"
	"github.com/brendan.keane/callout/internal/registry"
	"github.com/brendan.keane/callout/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// commandContext returns the command's context, which is nil when a handler
// runs outside cobra's Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig returns the config stored by the root command, or loads it from
// the global flags when the handler runs on its own.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg, ok := config.FromContext(commandContext(cmd)); ok {
		return cfg, nil
	}

	cfg, err := config.LoadFromFlags(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRegistry(logger zerolog.Logger, cfg *config.Config, factory *internalhttp.ClientFactory) (*registry.Registry, error) {
	reg, err := registry.LoadFile(cfg.RegistryPath,
		registry.WithHTTPClient(factory.HTTPClient()),
		registry.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", cfg.RegistryPath).Int("aliases", len(reg.Names())).Msg("registry loaded")
	return reg, nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StorePath == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "store path is required").
			WithContext("suggestion", "set CALLOUT_STORE or use --store")
	}
	return storage.NewStore("bbolt", cfg.StorePath)
}

func output(cmd *cobra.Command) internalhttp.Output {
	return internalhttp.Output{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
}
