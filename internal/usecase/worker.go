package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"AssessmentTracker/internal/domain"
	"AssessmentTracker/internal/ports"
)

// WorkerDeps wires the queue consumer.
type WorkerDeps struct {
	Queue      ports.UpdateQueue
	Reconciler *Reconciler
	Workers    int
	MaxRetries uint64
	Logger     *slog.Logger
}

// Worker consumes project update jobs. Each job runs a full reconciliation
// cycle; independent projects run concurrently, one goroutine per job.
type Worker struct {
	queue      ports.UpdateQueue
	reconciler *Reconciler
	workers    int
	maxRetries uint64
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
}

// NewWorker builds a worker pool; Workers defaults to 1.
func NewWorker(deps WorkerDeps) *Worker {
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		queue:      deps.Queue,
		reconciler: deps.Reconciler,
		workers:    workers,
		maxRetries: deps.MaxRetries,
		logger:     logger,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 0
			return bo
		},
	}
}

// Run blocks consuming the queue until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			return w.loop(ctx)
		})
	}
	return g.Wait()
}

func (w *Worker) loop(ctx context.Context) error {
	retry := w.newBackOff()
	for {
		if ctx.Err() != nil {
			return nil
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			// A broken queue connection fails immediately instead of
			// blocking the poll interval; wait before retrying so an
			// outage does not turn the loop into a hot spin.
			w.logger.Error("dequeue failed", "error", err)
			select {
			case <-time.After(retry.NextBackOff()):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		retry.Reset()
		if job == nil {
			continue
		}

		w.process(ctx, job)
	}
}

// process runs one job with whole-project retry. Database or walk failures
// abort the cycle and are retried from scratch; the cycle is idempotent, so
// partial progress from a failed attempt is corrected by the next one.
func (w *Worker) process(ctx context.Context, job *domain.UpdateJob) {
	w.setStatus(ctx, job.Project, domain.JobStatus{JobID: job.ID, State: domain.JobStateStarted})

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), w.maxRetries), ctx)
	err := backoff.Retry(func() error {
		return w.reconciler.UpdateProject(ctx, job.Project)
	}, policy)

	status := domain.JobStatus{JobID: job.ID, State: domain.JobStateFinished, EndedAt: time.Now().UTC()}
	if err != nil {
		w.logger.Error("project update failed", "project", job.Project, "job_id", job.ID, "error", err)
		status.State = domain.JobStateFailed
	}
	w.setStatus(ctx, job.Project, status)
}

func (w *Worker) setStatus(ctx context.Context, project string, status domain.JobStatus) {
	if err := w.queue.SetJobStatus(ctx, project, status); err != nil {
		w.logger.Error("set job status failed", "project", project, "error", err)
	}
}
