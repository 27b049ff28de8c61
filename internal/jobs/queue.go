// Package jobs delivers "process this run" triggers to the orchestrator. Jobs
// live in memory; the queue exists so the API can accept a run and return
// immediately while a single dispatcher works through the backlog.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the state of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job tracks one run trigger through the queue.
type Job struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Processor handles one run end to end.
type Processor interface {
	ProcessRun(ctx context.Context, runID string) error
}

const defaultQueueDepth = 64

// Queue is an in-memory run-trigger queue with a single dispatcher.
type Queue struct {
	processor Processor
	logger    *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*Job
	keys []string

	work   chan string
	done   chan struct{}
	closed bool
}

// NewQueue returns a queue that feeds the given processor. Start must be
// called before Enqueue delivers anything.
func NewQueue(processor Processor, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		processor: processor,
		logger:    logger,
		jobs:      make(map[string]*Job),
		work:      make(chan string, defaultQueueDepth),
		done:      make(chan struct{}),
	}
}

// Start launches the dispatcher. It drains until ctx is canceled or Stop is
// called.
func (q *Queue) Start(ctx context.Context) {
	go q.dispatch(ctx)
}

// Stop shuts the dispatcher down after the current job finishes.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	close(q.done)
}

// Enqueue registers a queued job for the run. It fails when the queue is full
// or stopped rather than blocking the caller.
func (q *Queue) Enqueue(runID string) (*Job, error) {
	if q == nil {
		return nil, errors.New("jobs: nil queue")
	}
	if runID == "" {
		return nil, errors.New("jobs: empty run id")
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, errors.New("jobs: queue stopped")
	}
	job := &Job{
		ID:        uuid.NewString(),
		RunID:     runID,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	q.jobs[job.ID] = job
	q.keys = append(q.keys, job.ID)
	q.mu.Unlock()

	select {
	case q.work <- job.ID:
	default:
		q.update(job.ID, func(j *Job) {
			j.Status = StatusFailed
			j.Error = "queue full"
			j.FinishedAt = time.Now().UTC()
		})
		return nil, errors.New("jobs: queue full")
	}

	return cloneJob(job), nil
}

// Get returns a job by id, or nil when unknown.
func (q *Queue) Get(id string) *Job {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.jobs[id]
	if !ok {
		return nil
	}
	return cloneJob(job)
}

// List returns all jobs in insertion order.
func (q *Queue) List() []*Job {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]*Job, 0, len(q.keys))
	for _, id := range q.keys {
		if job, ok := q.jobs[id]; ok {
			out = append(out, cloneJob(job))
		}
	}
	return out
}

func (q *Queue) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.done:
			return
		case jobID := <-q.work:
			q.run(ctx, jobID)
		}
	}
}

func (q *Queue) run(ctx context.Context, jobID string) {
	job := q.Get(jobID)
	if job == nil {
		return
	}

	q.update(jobID, func(j *Job) {
		j.Status = StatusRunning
		j.StartedAt = time.Now().UTC()
	})

	var err error
	if q.processor == nil {
		err = errors.New("jobs: no processor configured")
	} else {
		err = q.processor.ProcessRun(ctx, job.RunID)
	}

	q.update(jobID, func(j *Job) {
		j.FinishedAt = time.Now().UTC()
		if err != nil {
			j.Status = StatusFailed
			j.Error = err.Error()
		} else {
			j.Status = StatusSucceeded
		}
	})

	if err != nil {
		q.logger.Error("run job failed", "job_id", jobID, "run_id", job.RunID, "error", err)
	} else {
		q.logger.Info("run job finished", "job_id", jobID, "run_id", job.RunID)
	}
}

func (q *Queue) update(id string, fn func(*Job)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job, ok := q.jobs[id]; ok {
		fn(job)
	}
}

func cloneJob(job *Job) *Job {
	if job == nil {
		return nil
	}
	copied := *job
	return &copied
}
