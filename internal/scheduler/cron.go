// Package scheduler runs the newsletter dispatch job on a cron cadence.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"soulthread/internal/ports"
)

// Cron wraps a robfig/cron runner behind the scheduler port.
type Cron struct {
	spec   string
	runner *cron.Cron
	logger *slog.Logger
}

var _ ports.Scheduler = (*Cron)(nil)

// NewCron builds a scheduler for the given cron spec (standard five-field
// syntax, e.g. "0 * * * *" for the top of every hour).
func NewCron(spec string, logger *slog.Logger) *Cron {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cron{spec: spec, logger: logger}
}

// Start registers the job and begins the schedule. The job receives the
// scheduled fire time and runs until it returns; overlapping fires are
// possible if a run outlasts the interval.
func (c *Cron) Start(ctx context.Context, job func(time.Time)) error {
	if c.runner != nil {
		return fmt.Errorf("scheduler already started")
	}

	runner := cron.New()
	if _, err := runner.AddFunc(c.spec, func() {
		job(time.Now())
	}); err != nil {
		return fmt.Errorf("register cron job %q: %w", c.spec, err)
	}

	c.runner = runner
	runner.Start()
	c.logger.Info("scheduler started", "spec", c.spec)

	go func() {
		<-ctx.Done()
		runner.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for any running job, bounded by ctx.
func (c *Cron) Stop(ctx context.Context) error {
	if c.runner == nil {
		return nil
	}

	done := c.runner.Stop().Done()
	select {
	case <-done:
		c.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}
