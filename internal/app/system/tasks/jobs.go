// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper removes expired feed content. *bulletin.Service satisfies it.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// RetentionSweepJob creates a job that deletes regular posts past the
// retention window. Notices are kept for the history view.
func RetentionSweepJob(s Sweeper, schedule string, timeout time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "retention-sweep",
		Schedule: schedule,
		Timeout:  timeout,
		Run: func(ctx context.Context) error {
			n, err := s.Sweep(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("swept expired posts", zap.Int64("count", n))
			}
			return nil
		},
	}
}
