package cli

import (
	"fmt"

	"github.com/brendan.keane/callout/internal/errors"
	internalhttp "github.com/brendan.keane/callout/internal/http"
	"github.com/brendan.keane/callout/internal/jobs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// JobHandler runs the queueable callout job and the record update batch.
type JobHandler struct {
	logger  zerolog.Logger
	factory *internalhttp.ClientFactory
}

func NewJobHandler(logger zerolog.Logger) *JobHandler {
	return NewJobHandlerWithFactory(logger, internalhttp.NewClientFactory(logger))
}

func NewJobHandlerWithFactory(logger zerolog.Logger, factory *internalhttp.ClientFactory) *JobHandler {
	return &JobHandler{
		logger:  logger.With().Str("handler", "job").Logger(),
		factory: factory,
	}
}

// Queueable enqueues one CalloutJob, waits for it and reports the record's
// resulting status.
func (h *JobHandler) Queueable(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	alias, _ := flags.GetString("alias")
	path, _ := flags.GetString("path")
	recordID, _ := flags.GetString("record")
	if alias == "" || path == "" || recordID == "" {
		return errors.New(errors.ErrorTypeValidation, "--alias, --path and --record are required").
			WithContext("field", "job")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(h.logger, cfg, h.factory)
	if err != nil {
		return err
	}
	gateway, err := h.factory.CreateGateway(cfg, reg)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	queue := jobs.NewQueue(h.logger, 1)
	id := queue.Enqueue(commandContext(cmd), &jobs.CalloutJob{
		Client:   gateway.Client(alias),
		Store:    store,
		RecordID: recordID,
		Path:     path,
	})
	queue.Wait()

	result, _ := queue.Result(id)
	if result.Err != nil {
		return result.Err
	}

	rec, err := store.Get(recordID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "job %s %s: %s\n", id, result.State, rec.Status)
	return err
}

// Batch appends --suffix to every record name in scopes of --scope-size.
func (h *JobHandler) Batch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	suffix, _ := flags.GetString("suffix")
	scopeSize, _ := flags.GetInt("scope-size")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	batch := &jobs.RecordUpdateBatch{
		Store:     store,
		Suffix:    suffix,
		ScopeSize: scopeSize,
		Logger:    h.logger,
	}
	if _, err := jobs.RunBatch(commandContext(cmd), batch); err != nil {
		return err
	}

	s := batch.Summary()
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "scopes=%d succeeded=%d failed=%d\n", s.Scopes, s.Succeeded, s.Failed)
	return err
}
