// Package worker runs background jobs: scheduled report generation and rate warm-up.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler runs jobs on cron schedules with seconds precision.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

// NewScheduler creates a Scheduler. Jobs run with a background context until Run is called.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		ctx:  context.Background(),
	}
}

// AddJob registers job on schedule, e.g. "0 0 7 * * *" for 07:00 every day or "@every 1h".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		slog.Debug("Scheduler: running job", "job", job.Name())
		if err := job.Run(s.ctx); err != nil {
			slog.Error("Scheduler: job failed", "job", job.Name(), "error", err)
			return
		}
		slog.Debug("Scheduler: job completed", "job", job.Name())
	})
	if err != nil {
		return fmt.Errorf("scheduling %s on %q: %w", job.Name(), schedule, err)
	}

	slog.Info("Scheduler: job registered", "job", job.Name(), "schedule", schedule)
	return nil
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for running jobs.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	slog.Info("Scheduler: started")

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	slog.Info("Scheduler: stopped")
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	slog.Info("Scheduler: running job immediately", "job", job.Name())
	return job.Run(ctx)
}
