package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// purger removes soft-deleted rows past the retention window.
type purger interface {
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job hard-deletes soft-deleted matches, messages and posts once the
// retention window has elapsed. Soft-deleted rows stay queryable until
// then so moderation and support can still see them.
type Job struct {
	matches   purger
	messages  purger
	posts     purger
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func New(matches, messages, posts purger, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		matches:   matches,
		messages:  messages,
		posts:     posts,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)

	targets := []struct {
		name   string
		purger purger
	}{
		{name: "messages", purger: j.messages},
		{name: "matches", purger: j.matches},
		{name: "posts", purger: j.posts},
	}

	for _, target := range targets {
		if target.purger == nil {
			continue
		}

		rows, err := target.purger.PurgeDeletedBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("purge %s: %w", target.name, err)
		}
		if rows > 0 {
			j.logger.Info("retention purge completed",
				zap.String("target", target.name),
				zap.Int64("purged", rows),
			)
		}
	}

	return nil
}

// RunPeriodically blocks, running the purge on the interval until the
// context is cancelled.
func (j *Job) RunPeriodically(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("retention purge failed", zap.Error(err))
			}
		}
	}
}
