// internal/app/system/tasks/scheduler.go
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule runs a job hourly.
const DefaultSchedule = "@every 1h"

// Job is a named unit of background work run on a cron schedule.
type Job struct {
	Name     string
	Schedule string // standard five-field spec or a descriptor like "@every 1h"
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// ValidateSchedule reports whether spec parses.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Scheduler runs jobs until stopped. Runs of one job never overlap.
type Scheduler struct {
	c   *cron.Cron
	log *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		c:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		log: logger,
	}
}

// Add registers j.
func (s *Scheduler) Add(j Job) error {
	spec := j.Schedule
	if spec == "" {
		spec = DefaultSchedule
	}
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.runOnce(j)
	}))
	if _, err := s.c.AddJob(spec, job); err != nil {
		return fmt.Errorf("schedule %s: %w", j.Name, err)
	}
	s.log.Info("job scheduled", zap.String("job", j.Name), zap.String("schedule", spec))
	return nil
}

func (s *Scheduler) runOnce(j Job) {
	ctx := context.Background()
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	start := time.Now()
	if err := j.Run(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", j.Name), zap.Error(err))
		return
	}
	s.log.Debug("job finished", zap.String("job", j.Name), zap.Duration("took", time.Since(start)))
}

// RunNow runs j synchronously, outside the schedule. Used by the CLI.
func (s *Scheduler) RunNow(j Job) {
	s.runOnce(j)
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.c.Start()
}

// Stop halts the schedule and waits for running jobs or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out; jobs still running")
	}
}
