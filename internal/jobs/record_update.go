package jobs

import (
	"context"

	"github.com/brendan.keane/callout/internal/errors"
	"github.com/brendan.keane/callout/internal/storage"
	"github.com/rs/zerolog"
)

// DefaultScopeSize is the number of records per scope.
const DefaultScopeSize = 200

// Summary totals a finished batch.
type Summary struct {
	Scopes    int
	Succeeded int
	Failed    int
}

// RecordUpdateBatch appends Suffix to every record name and saves each scope
// in bulk. A record that fails to save is counted and the rest continue.
type RecordUpdateBatch struct {
	Store     storage.Store
	Suffix    string
	ScopeSize int
	Logger    zerolog.Logger

	summary Summary
}

func (b *RecordUpdateBatch) Start(ctx context.Context) ([][]storage.Record, error) {
	recs, err := b.Store.List()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "failed to list records for batch")
	}
	scopes := chunk(recs, b.ScopeSize)

	b.Logger.Info().
		Int("records", len(recs)).
		Int("scopes", len(scopes)).
		Msg("batch started")
	return scopes, nil
}

func (b *RecordUpdateBatch) Execute(_ context.Context, scope []storage.Record) Outcome {
	updated := make([]storage.Record, len(scope))
	for i, rec := range scope {
		rec.Name += b.Suffix
		updated[i] = rec
	}

	var outcome Outcome
	for _, result := range b.Store.SaveAll(updated) {
		if result.OK() {
			outcome.Succeeded++
			continue
		}
		outcome.Failed++
		outcome.Errors = append(outcome.Errors, result.Err)
		b.Logger.Warn().Err(result.Err).Str("record_id", result.ID).Msg("record update failed")
	}
	return outcome
}

func (b *RecordUpdateBatch) Finish(_ context.Context, outcomes []Outcome) error {
	b.summary = Summary{Scopes: len(outcomes)}
	for _, o := range outcomes {
		b.summary.Succeeded += o.Succeeded
		b.summary.Failed += o.Failed
	}

	b.Logger.Info().
		Int("scopes", b.summary.Scopes).
		Int("succeeded", b.summary.Succeeded).
		Int("failed", b.summary.Failed).
		Msg("batch finished")
	return nil
}

// Summary returns the totals recorded by Finish.
func (b *RecordUpdateBatch) Summary() Summary {
	return b.summary
}
