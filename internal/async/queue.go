// Package async runs document processing jobs on a bounded worker pool.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
	"github.com/joseph-ayodele/port-compliance/internal/pipeline"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document to run through the pipeline.
type Job struct {
	ID           uuid.UUID
	VesselID     string
	DocumentType string
	Upload       pipeline.Upload
	SubmittedAt  time.Time
	TraceID      string
}

// Result is delivered to the result handler once per job.
type Result struct {
	Job     Job
	Result  entity.ProcessingResult
	Err     error
	Elapsed time.Duration
}

// DocumentProcessor is satisfied by *session.Controller.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, vesselID string, up pipeline.Upload, documentType string) (entity.ProcessingResult, error)
}

type ResultHandler func(Result)

type Queue struct {
	proc    DocumentProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  ResultHandler

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithResultHandler registers fn to receive every result. It is called from worker
// goroutines and must be safe for concurrent use.
func WithResultHandler(fn ResultHandler) Option {
	return func(q *Queue) { q.onDone = fn }
}

func NewQueue(proc DocumentProcessor, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if job.TraceID != "" {
		ctx = common.WithRequestID(ctx, job.TraceID)
	}

	start := time.Now()
	res, err := q.proc.ProcessDocument(ctx, job.VesselID, job.Upload, job.DocumentType)
	elapsed := time.Since(start)

	if err != nil {
		q.logger.Error("queue.job.failed",
			"worker_id", workerID,
			"job_id", job.ID,
			"file", job.Upload.Name,
			"err", err,
		)
	} else {
		q.logger.Info("queue.job.done",
			"worker_id", workerID,
			"job_id", job.ID,
			"file", job.Upload.Name,
			"status", res.Status,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	}
	if q.onDone != nil {
		q.onDone(Result{Job: job, Result: res, Err: err, Elapsed: elapsed})
	}
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "job_id", job.ID)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueued", "job_id", job.ID, "file", job.Upload.Name)
		return nil
	default:
	}
	q.logger.Warn("queue.full", "job_id", job.ID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to drain or ctx to end.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
		return ctx.Err()
	case <-done:
		q.logger.Info("queue.shutdown.drained")
		return nil
	}
}
