package cli

import (
	"fmt"

	"github.com/brendan.keane/callout/internal/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RecordsHandler manages the local record store used by the jobs.
type RecordsHandler struct {
	logger zerolog.Logger
}

func NewRecordsHandler(logger zerolog.Logger) *RecordsHandler {
	return &RecordsHandler{logger: logger.With().Str("handler", "records").Logger()}
}

// Put creates or replaces the record named by args: ID NAME.
func (h *RecordsHandler) Put(cmd *cobra.Command, args []string) error {
	status, err := cmd.Flags().GetString("status")
	if err != nil {
		return err
	}

	store, err := h.store(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := storage.Record{ID: args[0], Name: args[1], Status: status}
	if err := store.Put(rec); err != nil {
		return err
	}

	h.logger.Debug().Str("record_id", rec.ID).Msg("record saved")
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", rec.ID)
	return err
}

// List prints every record ordered by ID.
func (h *RecordsHandler) List(cmd *cobra.Command, args []string) error {
	store, err := h.store(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.List()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No records")
		return err
	}

	rows := make([][]string, len(recs))
	for i, rec := range recs {
		rows[i] = []string{rec.ID, rec.Name, rec.Status, rec.UpdatedAt.Format("2006-01-02 15:04:05")}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "NAME", "STATUS", "UPDATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return err
}

func (h *RecordsHandler) store(cmd *cobra.Command) (storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openStore(cfg)
}
