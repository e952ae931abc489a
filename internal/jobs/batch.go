// Package jobs runs work that issues callouts or updates stored records
// outside the request path: scoped batches and queued one-off jobs.
package jobs

import (
	"context"

	"github.com/brendan.keane/callout/internal/storage"
)

// Outcome is the result of executing one scope.
type Outcome struct {
	Scope     int
	Succeeded int
	Failed    int
	Errors    []error
}

// Batch is a job split into scopes. Start produces the scopes, Execute runs
// once per scope and Finish sees every outcome.
type Batch interface {
	Start(ctx context.Context) ([][]storage.Record, error)
	Execute(ctx context.Context, scope []storage.Record) Outcome
	Finish(ctx context.Context, outcomes []Outcome) error
}

// RunBatch drives b sequentially. Cancellation stops before the next scope;
// Finish still runs with the outcomes gathered so far.
func RunBatch(ctx context.Context, b Batch) ([]Outcome, error) {
	scopes, err := b.Start(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(scopes))
	for i, scope := range scopes {
		if ctx.Err() != nil {
			break
		}
		outcome := b.Execute(ctx, scope)
		outcome.Scope = i
		outcomes = append(outcomes, outcome)
	}

	if err := b.Finish(ctx, outcomes); err != nil {
		return outcomes, err
	}
	return outcomes, ctx.Err()
}

// chunk splits recs into scopes of at most size records.
func chunk(recs []storage.Record, size int) [][]storage.Record {
	if size <= 0 {
		size = DefaultScopeSize
	}
	var scopes [][]storage.Record
	for start := 0; start < len(recs); start += size {
		end := min(start+size, len(recs))
		scopes = append(scopes, recs[start:end])
	}
	return scopes
}
