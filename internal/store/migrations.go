package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all pipeline tables.
// Each statement uses IF NOT EXISTS for idempotency.
//
// Timestamps are stored as UTC unix nanoseconds (INTEGER): expiry sweeps
// and admission ordering compare times in SQL, and integer comparison
// keeps that exact.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		language   TEXT NOT NULL DEFAULT 'pt-BR',
		created_at INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS candidates (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		language   TEXT NOT NULL DEFAULT 'pt-BR',
		created_at INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS subscriptions (
		id              TEXT PRIMARY KEY,
		candidate_id    TEXT NOT NULL,
		plan            TEXT NOT NULL,
		active          INTEGER NOT NULL DEFAULT 1,
		payment_pending INTEGER NOT NULL DEFAULT 0,
		created_at      INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS candidate_skills (
		id                TEXT PRIMARY KEY,
		candidate_id      TEXT NOT NULL,
		skill_id          TEXT NOT NULL,
		weight            INTEGER NOT NULL DEFAULT 0,
		last_evaluated_at INTEGER,
		created_at        INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS evaluators (
		id                   TEXT PRIMARY KEY,
		user_id              TEXT NOT NULL,
		active               INTEGER NOT NULL DEFAULT 1,
		accepts_all_skills   INTEGER NOT NULL DEFAULT 0,
		released_to_evaluate INTEGER NOT NULL DEFAULT 0,
		language             TEXT NOT NULL DEFAULT 'pt-BR',
		reputation           INTEGER NOT NULL DEFAULT 0,
		created_at           INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS evaluator_skills (
		evaluator_id TEXT NOT NULL,
		skill_id     TEXT NOT NULL,
		PRIMARY KEY (evaluator_id, skill_id)
	)`,

	`CREATE TABLE IF NOT EXISTS evaluation_requests (
		id                 TEXT PRIMARY KEY,
		candidate_skill_id TEXT NOT NULL,
		priority           INTEGER NOT NULL,
		evaluator_id       TEXT,
		pending            INTEGER NOT NULL DEFAULT 1,
		language           TEXT NOT NULL DEFAULT 'pt-BR',
		created_at         INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS invites (
		id           TEXT PRIMARY KEY,
		evaluator_id TEXT NOT NULL,
		request_id   TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'PENDING',
		created_at   INTEGER NOT NULL,
		expires_at   INTEGER NOT NULL,
		decided_at   INTEGER
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		profile_id   TEXT NOT NULL,
		profile_kind TEXT NOT NULL,
		kind         TEXT NOT NULL,
		reference_id TEXT NOT NULL DEFAULT '',
		email_sent   INTEGER NOT NULL DEFAULT 0,
		created_at   INTEGER NOT NULL
	)`,

	// Advisory locks: one row per held lock. Insert is acquire, delete
	// is release; the primary key is the mutual exclusion.
	`CREATE TABLE IF NOT EXISTS job_locks (
		name        TEXT PRIMARY KEY,
		holder      TEXT NOT NULL,
		acquired_at INTEGER NOT NULL
	)`,

	// At most one open request per candidate skill. INSERT OR IGNORE
	// against this index gives the queue builder its skip-duplicate
	// semantics.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_open_skill
		ON evaluation_requests(candidate_skill_id) WHERE pending = 1`,

	// One invite per (evaluator, request) pair, ever.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_invites_pair
		ON invites(evaluator_id, request_id)`,

	`CREATE INDEX IF NOT EXISTS idx_subscriptions_candidate ON subscriptions(candidate_id)`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_skills_candidate ON candidate_skills(candidate_id)`,
	`CREATE INDEX IF NOT EXISTS idx_evaluator_skills_skill ON evaluator_skills(skill_id)`,
	// Admission scan: pending, unassigned, priority order.
	`CREATE INDEX IF NOT EXISTS idx_requests_admission ON evaluation_requests(pending, priority, created_at)`,
	// Expiry sweep and open-invite counting.
	`CREATE INDEX IF NOT EXISTS idx_invites_status_expiry ON invites(status, expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_invites_evaluator ON invites(evaluator_id, status)`,
	// Digest scan.
	`CREATE INDEX IF NOT EXISTS idx_notifications_unsent ON notifications(email_sent, kind, created_at)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
