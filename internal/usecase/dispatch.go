package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"AssessmentTracker/internal/domain"
	"AssessmentTracker/internal/ports"
)

// Dispatcher enqueues project update jobs.
type Dispatcher struct {
	queue      ports.UpdateQueue
	reconciler *Reconciler
	logger     *slog.Logger
}

// NewDispatcher wires the queue with project discovery.
func NewDispatcher(queue ports.UpdateQueue, reconciler *Reconciler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{queue: queue, reconciler: reconciler, logger: logger}
}

// EnqueueAll discovers every project on the wiki and enqueues an update for
// each. It refuses to add work while previously enqueued jobs are pending.
func (d *Dispatcher) EnqueueAll(ctx context.Context) error {
	pending, err := d.queue.Pending(ctx)
	if err != nil {
		return fmt.Errorf("check pending jobs: %w", err)
	}
	if pending > 0 {
		d.logger.Error("queue is not empty, refusing to add more work", "pending", pending)
		return nil
	}

	names, err := d.reconciler.ProjectNamesToUpdate(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := d.enqueue(ctx, name, false); err != nil {
			return err
		}
	}
	d.logger.Info("enqueued all projects", "count", len(names))
	return nil
}

// EnqueueProjects enqueues updates for an explicit list of projects.
func (d *Dispatcher) EnqueueProjects(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := d.enqueue(ctx, name, false); err != nil {
			return err
		}
	}
	return nil
}

// EnqueueManual enqueues a user-requested update and records the time before
// which another manual update will be refused.
func (d *Dispatcher) EnqueueManual(ctx context.Context, name string) (string, error) {
	next, err := d.queue.MarkManualUpdateTime(ctx, name)
	if err != nil {
		return "", fmt.Errorf("mark manual update time for %s: %w", name, err)
	}
	if err := d.enqueue(ctx, name, true); err != nil {
		return "", err
	}
	return next, nil
}

func (d *Dispatcher) enqueue(ctx context.Context, name string, manual bool) error {
	job := domain.UpdateJob{
		ID:         uuid.NewString(),
		Project:    name,
		Manual:     manual,
		EnqueuedAt: time.Now().UTC(),
	}
	d.logger.Info("enqueuing update", "project", name, "job_id", job.ID, "manual", manual)
	if err := d.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue %s: %w", name, err)
	}
	return nil
}
