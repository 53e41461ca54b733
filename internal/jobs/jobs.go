// Package jobs implements the evaluation pipeline's scheduled batch jobs:
// the queue builder, the assignment dispatcher, and the digest aggregator.
// Each is triggered externally, idempotent, and serialized across process
// instances by an advisory lock.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seguel/whizzat-backend-sub000/internal/lock"
)

// Job names double as advisory lock names.
const (
	JobQueue    = "evaluation-queue"
	JobDispatch = "evaluation-dispatch"
	JobDigest   = "notification-digest"
)

// Job is a parameterless run-once entry point. The external scheduler
// owns cadence; a Job owns one complete, re-entrant run.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// RunExclusive runs the job under its named advisory lock: try-acquire,
// run, release on every exit path. Contention is not an error; the run is
// skipped with a warning and the holder's run covers this tick.
func RunExclusive(ctx context.Context, locker lock.Locker, job Job, logger *slog.Logger) error {
	held, err := locker.TryAcquire(ctx, job.Name())
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", job.Name(), err)
	}
	if !held {
		logger.Warn("job already running elsewhere, skipping", "job", job.Name())
		return nil
	}
	defer func() {
		// Release even when ctx was cancelled mid-run.
		if err := locker.Release(context.WithoutCancel(ctx), job.Name()); err != nil {
			logger.Error("release lock", "job", job.Name(), "error", err)
		}
	}()

	start := time.Now()
	err = job.Run(ctx)
	if err != nil {
		logger.Error("job failed", "job", job.Name(), "duration", time.Since(start), "error", err)
		return err
	}
	logger.Debug("job done", "job", job.Name(), "duration", time.Since(start))
	return nil
}
