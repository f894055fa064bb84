package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/example/elia-parkbot/internal/workflow"
)

// Runner executes one booking run. Implemented by the workflow.
type Runner interface {
	Run(ctx context.Context, mode workflow.Mode) workflow.RunReport
}

// Scheduler fires booking runs on cron schedules, one for the short-notice
// executive run and one for the far-out regular run.
type Scheduler struct {
	runner Runner
	log    *slog.Logger

	executiveSpec string
	regularSpec   string

	// afterRun receives every report, normally for notification.
	afterRun func(context.Context, workflow.RunReport)
}

func New(runner Runner, executiveSpec, regularSpec string, afterRun func(context.Context, workflow.RunReport), log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		runner:        runner,
		log:           log,
		executiveSpec: executiveSpec,
		regularSpec:   regularSpec,
		afterRun:      afterRun,
	}
}

// Start blocks until ctx is cancelled, firing runs on schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New()

	if _, err := c.AddFunc(s.executiveSpec, func() { s.fire(ctx, workflow.ModeExecutive) }); err != nil {
		return fmt.Errorf("executive schedule %q: %w", s.executiveSpec, err)
	}
	if _, err := c.AddFunc(s.regularSpec, func() { s.fire(ctx, workflow.ModeRegular) }); err != nil {
		return fmt.Errorf("regular schedule %q: %w", s.regularSpec, err)
	}

	s.log.Info("scheduler started",
		"executive", s.executiveSpec,
		"regular", s.regularSpec)
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	s.log.Info("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) fire(ctx context.Context, mode workflow.Mode) {
	if ctx.Err() != nil {
		return
	}
	report := s.runner.Run(ctx, mode)
	if s.afterRun != nil {
		s.afterRun(ctx, report)
	}
}
