// Package scheduler triggers the recurring enqueue-all run on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"AssessmentTracker/internal/ports"
)

// CronScheduler runs a single job on a cron expression in a fixed location.
type CronScheduler struct {
	spec     string
	location *time.Location
	logger   *slog.Logger
	cron     *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for the given cron spec. A nil location
// falls back to UTC.
func NewCronScheduler(spec string, location *time.Location, logger *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{spec: spec, location: location, logger: logger}
}

// Start registers the job and runs the cron loop in the background. The job
// receives the scheduled fire time.
func (s *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	c := cron.New(cron.WithLocation(s.location))

	if _, err := c.AddFunc(s.spec, func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		job(time.Now().In(s.location))
	}); err != nil {
		return fmt.Errorf("register cron job %q: %w", s.spec, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info("scheduler started", "spec", s.spec, "location", s.location.String())
	return nil
}

// Stop halts the cron loop and waits for a running job to finish, bounded by
// ctx.
func (s *CronScheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}

	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("scheduler stopped")
	return nil
}
