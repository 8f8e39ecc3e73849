package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Job deletes read notifications that are past their retention window.
type Job struct {
	cleaner   notificationCleaner
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

type notificationCleaner interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

func New(cleaner notificationCleaner, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		cleaner:   cleaner,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.cleaner == nil {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	rows, err := j.cleaner.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup read notifications: %w", err)
	}
	if rows > 0 {
		j.logger.Info("cleanup read notifications completed", zap.Int64("deleted", rows))
	}
	return nil
}

// RunEvery runs the job on a fixed interval until the context is canceled.
func (j *Job) RunEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("cleanup run failed", zap.Error(err))
			}
		}
	}
}
