package config

import (
	"time"

	"github.com/seguel/whizzat-backend-sub000/pkg/model"
)

// PipelineConfig holds configuration for the evaluation pipeline jobs.
type PipelineConfig struct {
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite database path (":memory:" for testing)

	// Queue builder.
	Tiers             []model.TierRank // Ordered most-favored first
	MaxPerRun         int              // Global cap on requests created in one run
	InsertChunkSize   int              // Rows per bulk insert statement
	SkillStaleness    time.Duration    // Re-evaluate skills older than this
	CandidateCooldown time.Duration    // Skip candidates registered more recently than this

	// Dispatcher.
	BatchSize         int           // Requests admitted per dispatch run
	MaxPerEvaluator   int           // Open-invite ceiling per evaluator
	InvitesPerRequest int           // Invite pool size per request per pass
	InviteTTL         time.Duration // Invite response deadline

	// Schedules (cron expressions, consumed by serve).
	QueueSchedule    string
	DispatchSchedule string
	DigestSchedule   string

	// Mail.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	DashboardURL string // Base URL for digest dashboard links
}

// DefaultPipelineConfig returns sensible defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		LogLevel:  "info",
		LogFormat: "text",

		Tiers: []model.TierRank{
			{Plan: model.PlanPremium, Rank: 1},
			{Plan: model.PlanStandard, Rank: 2},
			{Plan: model.PlanFree, Rank: 3},
		},
		MaxPerRun:         10000,
		InsertChunkSize:   500,
		SkillStaleness:    365 * 24 * time.Hour,
		CandidateCooldown: 3 * 24 * time.Hour,

		BatchSize:         10,
		MaxPerEvaluator:   3,
		InvitesPerRequest: 3,
		InviteTTL:         48 * time.Hour,

		QueueSchedule:    "0 * * * *",
		DispatchSchedule: "*/5 * * * *",
		DigestSchedule:   "*/15 * * * *",

		SMTPHost:     "localhost",
		SMTPPort:     587,
		MailFrom:     "no-reply@whizzat.com.br",
		DashboardURL: "https://app.whizzat.com.br",
	}
}
