package cli

import (
	"github.com/spf13/cobra"

	"github.com/seguel/whizzat-backend-sub000/internal/jobs"
)

// newRunCmd fires one job once, under its advisory lock. This is the
// entry point an external cron invokes when the built-in daemon is not
// used.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "run <queue|dispatch|digest>",
		Short:     "Run a single pipeline job once",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"queue", "dispatch", "digest"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer p.close()

			job, err := p.job(args[0])
			if err != nil {
				return err
			}
			return jobs.RunExclusive(cmd.Context(), p.locker, job, logger)
		},
	}
}
