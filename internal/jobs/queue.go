package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/brendan.keane/callout/internal/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the lifecycle position of a queued job.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Result describes a queued job.
type Result struct {
	ID       string
	Kind     string
	State    State
	Err      error
	Queued   time.Time
	Started  time.Time
	Finished time.Time
}

// Queue runs Queueable jobs in the background with bounded concurrency.
type Queue struct {
	logger zerolog.Logger
	slots  chan struct{}
	wg     sync.WaitGroup

	mu      sync.RWMutex
	results map[string]*Result
}

// NewQueue creates a queue running at most concurrency jobs at once.
func NewQueue(log zerolog.Logger, concurrency int) *Queue {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Queue{
		logger:  log,
		slots:   make(chan struct{}, concurrency),
		results: make(map[string]*Result),
	}
}

// Enqueue schedules job and returns its ID. The job runs with ctx.
func (q *Queue) Enqueue(ctx context.Context, job Queueable) string {
	id := uuid.New().String()
	result := &Result{ID: id, Kind: job.Kind(), State: StatePending, Queued: time.Now()}

	q.mu.Lock()
	q.results[id] = result
	q.mu.Unlock()

	jobLogger := logger.ForJob(q.logger, job.Kind(), id)
	jobLogger.Debug().Msg("job queued")

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		if err := ctx.Err(); err != nil {
			q.finish(id, err)
			return
		}
		select {
		case q.slots <- struct{}{}:
		case <-ctx.Done():
			q.finish(id, ctx.Err())
			return
		}
		defer func() { <-q.slots }()

		// Both select cases may be ready at once.
		if err := ctx.Err(); err != nil {
			q.finish(id, err)
			return
		}

		q.update(id, func(r *Result) {
			r.State = StateRunning
			r.Started = time.Now()
		})

		err := job.Run(ctx, jobLogger)
		q.finish(id, err)

		if err != nil {
			jobLogger.Error().Err(err).Msg("job failed")
			return
		}
		jobLogger.Debug().Msg("job finished")
	}()

	return id
}

// Wait blocks until every enqueued job has finished.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Result returns a snapshot of the job with the given ID.
func (q *Queue) Result(id string) (Result, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	r, ok := q.results[id]
	if !ok {
		return Result{}, false
	}
	return *r, true
}

func (q *Queue) finish(id string, err error) {
	q.update(id, func(r *Result) {
		r.Finished = time.Now()
		r.Err = err
		if err != nil {
			r.State = StateFailed
			return
		}
		r.State = StateSucceeded
	})
}

func (q *Queue) update(id string, fn func(*Result)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if r, ok := q.results[id]; ok {
		fn(r)
	}
}
