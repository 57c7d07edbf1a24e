package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"photoflow/internal/logging"
	"photoflow/internal/metrics"

	"github.com/oklog/ulid/v2"
)

// Kind identifies what a job does to its asset.
type Kind string

const (
	// KindProcess runs the full ingestion pipeline for an asset.
	KindProcess Kind = "process"
	// KindThumbnail regenerates only the asset's thumbnail.
	KindThumbnail Kind = "thumbnail"
	// KindMetadata re-extracts EXIF metadata and auto tags without
	// touching the thumbnail.
	KindMetadata Kind = "metadata"
)

const (
	// DefaultMaxRetries is how many times a failed job is retried after
	// its initial run.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the fixed delay before each retry.
	DefaultRetryDelay = 60 * time.Second

	defaultQueueSize = 256
)

// Job is a unit of work bound to a single asset.
type Job struct {
	ID      ulid.ULID
	Kind    Kind
	AssetID int64
	// Attempt is 0 for the initial run and counts retries after that.
	Attempt int
}

// Handler processes one job. Returning an error wrapped with Permanent
// fails the job without further retries; any other error schedules a
// retry until the budget is exhausted.
type Handler func(ctx context.Context, job Job) error

// permanentError marks failures that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps an error so the queue fails the job immediately
// instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Config tunes queue behavior. Zero values fall back to defaults.
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	QueueSize  int
}

// Queue dispatches jobs to registered handlers on a fixed worker pool.
type Queue struct {
	maxRetries int
	retryDelay time.Duration

	handlers map[Kind]Handler
	jobs     chan Job
	wg       sync.WaitGroup

	mu      sync.Mutex
	timers  map[ulid.ULID]*time.Timer
	stopped bool
}

// New creates a Queue. Handlers must be registered before Start.
func New(cfg Config) *Queue {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	return &Queue{
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		handlers:   make(map[Kind]Handler),
		jobs:       make(chan Job, cfg.QueueSize),
		timers:     make(map[ulid.ULID]*time.Timer),
	}
}

// Register binds a handler to a job kind. Must be called before Start.
func (q *Queue) Register(kind Kind, h Handler) {
	q.handlers[kind] = h
}

// Start launches the worker pool. Workers run until Stop is called or
// ctx is cancelled.
func (q *Queue) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	logging.Info("Job queue starting with %d workers (retry: %d attempts, %v delay)",
		workers, q.maxRetries, q.retryDelay)

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			metrics.JobQueueDepth.Dec()
			q.dispatch(ctx, job)
		}
	}
}

func (q *Queue) dispatch(ctx context.Context, job Job) {
	h, ok := q.handlers[job.Kind]
	if !ok {
		logging.Error("No handler registered for %s job %s", job.Kind, job.ID)
		return
	}

	err := h(ctx, job)
	if err == nil {
		return
	}

	if IsPermanent(err) {
		logging.Error("Job %s (%s, asset %d) failed permanently: %v",
			job.ID, job.Kind, job.AssetID, err)
		return
	}
	if job.Attempt >= q.maxRetries {
		logging.Error("Job %s (%s, asset %d) failed after %d retries: %v",
			job.ID, job.Kind, job.AssetID, job.Attempt, err)
		return
	}

	retry := job
	retry.Attempt++
	logging.Warn("Job %s (%s, asset %d) failed, retry %d/%d in %v: %v",
		job.ID, job.Kind, job.AssetID, retry.Attempt, q.maxRetries, q.retryDelay, err)
	metrics.JobRetriesTotal.WithLabelValues(string(job.Kind)).Inc()

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.timers[retry.ID] = time.AfterFunc(q.retryDelay, func() {
		q.mu.Lock()
		delete(q.timers, retry.ID)
		stopped := q.stopped
		q.mu.Unlock()
		if stopped {
			return
		}
		q.push(retry)
	})
	q.mu.Unlock()
}

// Enqueue submits a new job for an asset. It fails if the queue is full
// or stopped so callers can fall back to running the work inline.
func (q *Queue) Enqueue(kind Kind, assetID int64) error {
	job := Job{
		ID:      ulid.Make(),
		Kind:    kind,
		AssetID: assetID,
	}
	return q.push(job)
}

func (q *Queue) push(job Job) error {
	// Hold the lock across the send so Stop cannot close the channel
	// between the stopped check and the send.
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return fmt.Errorf("job queue is stopped")
	}

	select {
	case q.jobs <- job:
		metrics.JobsEnqueuedTotal.WithLabelValues(string(job.Kind)).Inc()
		metrics.JobQueueDepth.Inc()
		logging.Debug("Enqueued %s job %s for asset %d (attempt %d)",
			job.Kind, job.ID, job.AssetID, job.Attempt)
		return nil
	default:
		return fmt.Errorf("job queue is full")
	}
}

// Stop cancels pending retries, stops accepting jobs, and waits for
// in-flight work to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.mu.Unlock()

	close(q.jobs)
	q.wg.Wait()
	logging.Info("Job queue stopped")
}
