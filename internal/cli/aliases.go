package cli

import (
	"fmt"

	internalhttp "github.com/brendan.keane/callout/internal/http"
	"github.com/brendan.keane/callout/internal/registry"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5C6370"))
)

// AliasesHandler lists the registry.
type AliasesHandler struct {
	logger  zerolog.Logger
	factory *internalhttp.ClientFactory
}

func NewAliasesHandler(logger zerolog.Logger) *AliasesHandler {
	return &AliasesHandler{
		logger:  logger.With().Str("handler", "aliases").Logger(),
		factory: internalhttp.NewClientFactory(logger),
	}
}

func (h *AliasesHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reg, err := loadRegistry(h.logger, cfg, h.factory)
	if err != nil {
		return err
	}

	if len(reg.Names()) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No aliases registered in", cfg.RegistryPath)
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), aliasTable(reg))
	return err
}

func aliasTable(reg *registry.Registry) string {
	rows := make([][]string, 0, len(reg.Names()))
	for _, name := range reg.Names() {
		entry, _ := reg.Entry(name)
		source := entry.Source()
		if entry.OpenAPI != "" {
			source = "openapi: " + source
		}
		rows = append(rows, []string{name, source, entry.Auth.Kind(), entry.Description})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ALIAS", "BASE", "AUTH", "DESCRIPTION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}
