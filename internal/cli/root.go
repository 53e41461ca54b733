package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seguel/whizzat-backend-sub000/internal/config"
	"github.com/seguel/whizzat-backend-sub000/internal/logging"
)

var (
	flagDebug bool

	cfg    config.PipelineConfig
	logger *slog.Logger
)

// defaultDBPath returns the default database path, checking the
// WHIZZAT_DB env var first.
func defaultDBPath() string {
	if p := os.Getenv("WHIZZAT_DB"); p != "" {
		return p
	}
	return "whizzat.db"
}

// NewRootCmd creates the root cobra command for the pipeline.
func NewRootCmd() *cobra.Command {
	cfg = config.DefaultPipelineConfig()
	cfg.DBPath = defaultDBPath()

	root := &cobra.Command{
		Use:   "whizzat-pipeline",
		Short: "Whizzat evaluation-assignment pipeline",
		Long:  "Scheduled batch jobs that queue, dispatch, and digest skill evaluations.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				cfg.LogLevel = "debug"
			}
			logger = logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Database path (or WHIZZAT_DB env)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")

	pf.IntVar(&cfg.MaxPerRun, "queue-max-per-run", cfg.MaxPerRun, "Max evaluation requests created per queue run")
	pf.IntVar(&cfg.InsertChunkSize, "queue-chunk-size", cfg.InsertChunkSize, "Rows per bulk insert")
	pf.IntVar(&cfg.BatchSize, "dispatch-batch-size", cfg.BatchSize, "Requests admitted per dispatch run")
	pf.IntVar(&cfg.MaxPerEvaluator, "max-per-evaluator", cfg.MaxPerEvaluator, "Open-invite ceiling per evaluator")
	pf.IntVar(&cfg.InvitesPerRequest, "invites-per-request", cfg.InvitesPerRequest, "Invite pool size per request")
	pf.DurationVar(&cfg.InviteTTL, "invite-ttl", cfg.InviteTTL, "Invite response deadline")

	pf.StringVar(&cfg.SMTPHost, "smtp-host", cfg.SMTPHost, "SMTP server host")
	pf.IntVar(&cfg.SMTPPort, "smtp-port", cfg.SMTPPort, "SMTP server port")
	pf.StringVar(&cfg.SMTPUser, "smtp-user", cfg.SMTPUser, "SMTP username")
	pf.StringVar(&cfg.SMTPPassword, "smtp-password", cfg.SMTPPassword, "SMTP password")
	pf.StringVar(&cfg.MailFrom, "mail-from", cfg.MailFrom, "Digest sender address")
	pf.StringVar(&cfg.DashboardURL, "dashboard-url", cfg.DashboardURL, "Base URL for digest dashboard links")

	root.AddCommand(
		newServeCmd(),
		newRunCmd(),
		newMigrateCmd(),
	)

	return root
}
