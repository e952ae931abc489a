package jobs

import (
	"context"
	"fmt"

	"github.com/brendan.keane/callout/internal/errors"
	"github.com/brendan.keane/callout/internal/storage"
	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/rs/zerolog"
)

// Queueable is a unit of work the Queue runs asynchronously.
type Queueable interface {
	Kind() string
	Run(ctx context.Context, logger zerolog.Logger) error
}

// CalloutJob issues GET Path through Client and records the outcome on the
// record RecordID. Callout failures are recorded, not returned and not
// retried; only storage failures make Run fail.
type CalloutJob struct {
	Client   *callout.Client
	Store    storage.Store
	RecordID string
	Path     string
}

func (j *CalloutJob) Kind() string {
	return "callout"
}

func (j *CalloutJob) Run(ctx context.Context, logger zerolog.Logger) error {
	rec, err := j.Store.Get(j.RecordID)
	if err != nil {
		return err
	}

	logger = logger.With().Str("alias", j.Client.Alias()).Str("path", j.Path).Logger()

	resp, err := j.Client.Get(ctx, j.Path)
	switch {
	case err != nil:
		rec.Status = "Callout failed: " + errors.UserMessage(err)
		logger.Warn().Err(err).Msg("callout failed")
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		rec.Status = "Synced via " + j.Client.Alias()
		logger.Info().Int("status", resp.StatusCode).Msg("callout succeeded")
	default:
		rec.Status = fmt.Sprintf("Callout returned %d", resp.StatusCode)
		logger.Warn().Int("status", resp.StatusCode).Msg("callout returned non-success status")
	}

	if err := j.Store.Put(rec); err != nil {
		return err
	}
	return nil
}
