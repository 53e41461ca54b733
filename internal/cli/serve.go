package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/seguel/whizzat-backend-sub000/internal/jobs"
)

// newServeCmd runs the pipeline daemon: all three jobs on their cron
// schedules until interrupted. Every trigger goes through the advisory
// lock, so running serve on several instances is safe.
func newServeCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline daemon with all jobs on their schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := openPipeline(ctx)
			if err != nil {
				return err
			}
			defer p.close()

			c := cron.New()
			schedules := []struct {
				spec string
				job  jobs.Job
			}{
				{cfg.QueueSchedule, p.queue},
				{cfg.DispatchSchedule, p.dispatch},
				{cfg.DigestSchedule, p.digest},
			}
			for _, s := range schedules {
				job := s.job
				if _, err := c.AddFunc(s.spec, func() {
					if err := jobs.RunExclusive(ctx, p.locker, job, logger); err != nil {
						logger.Error("scheduled run failed", "job", job.Name(), "error", err)
					}
				}); err != nil {
					return fmt.Errorf("schedule %s (%q): %w", job.Name(), s.spec, err)
				}
				logger.Info("job scheduled", "job", job.Name(), "cron", s.spec)
			}

			c.Start()
			logger.Info("pipeline daemon started")

			<-ctx.Done()
			logger.Info("shutting down")

			// Wait for any in-flight job to finish before closing the store.
			<-c.Stop().Done()
			logger.Info("pipeline daemon stopped")
			return nil
		},
	}

	serve.Flags().StringVar(&cfg.QueueSchedule, "queue-schedule", cfg.QueueSchedule, "Cron schedule for the queue builder")
	serve.Flags().StringVar(&cfg.DispatchSchedule, "dispatch-schedule", cfg.DispatchSchedule, "Cron schedule for the dispatcher")
	serve.Flags().StringVar(&cfg.DigestSchedule, "digest-schedule", cfg.DigestSchedule, "Cron schedule for the digest aggregator")

	return serve
}
