package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seguel/whizzat-backend-sub000/pkg/model"

	_ "modernc.org/sqlite"
)

// dbtx is the subset of *sql.DB and *sql.Tx the store uses, so the same
// query methods serve both direct and transactional access.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	q      dbtx
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// SQLite allows one writer at a time; a single pooled connection
	// serializes access instead of surfacing SQLITE_BUSY, and keeps
	// ":memory:" databases on one connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
	s.q = db
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// DB exposes the underlying handle for collaborators that coordinate
// through the same database, such as the advisory lock.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// WithTx runs fn against a transactional view of the store. Any error
// from fn rolls the whole transaction back.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fmt.Errorf("nested transaction")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txStore := &SQLiteStore{db: s.db, q: tx, logger: s.logger}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// --- time and bool helpers ---

// Timestamps are persisted as UTC unix nanoseconds.

func toNano(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func toNanoPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	n := toNano(*t)
	return &n
}

func fromNanoPtr(n *int64) *time.Time {
	if n == nil {
		return nil
	}
	t := fromNano(*n)
	return &t
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- account and profile records ---

func (s *SQLiteStore) CreateUser(ctx context.Context, u *model.User) error {
	s.logger.Debug("sql", "op", "insert", "table", "users", "id", u.ID)

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO users (id, email, name, language, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Language, toNano(u.CreatedAt),
	)
	return err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.logger.Debug("sql", "op", "select", "table", "users", "id", id)

	var u model.User
	var createdAt int64

	err := s.q.QueryRowContext(ctx,
		`SELECT id, email, name, language, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Language, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = fromNano(createdAt)
	return &u, nil
}

func (s *SQLiteStore) CreateCandidate(ctx context.Context, c *model.Candidate) error {
	s.logger.Debug("sql", "op", "insert", "table", "candidates", "id", c.ID)

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO candidates (id, user_id, language, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.UserID, c.Language, toNano(c.CreatedAt),
	)
	return err
}

func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	s.logger.Debug("sql", "op", "insert", "table", "subscriptions", "id", sub.ID)

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO subscriptions (id, candidate_id, plan, active, payment_pending, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.CandidateID, string(sub.Plan), b2i(sub.Active), b2i(sub.PaymentPending), toNano(sub.CreatedAt),
	)
	return err
}

func (s *SQLiteStore) CreateCandidateSkill(ctx context.Context, cs *model.CandidateSkill) error {
	s.logger.Debug("sql", "op", "insert", "table", "candidate_skills", "id", cs.ID)

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO candidate_skills (id, candidate_id, skill_id, weight, last_evaluated_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cs.ID, cs.CandidateID, cs.SkillID, cs.Weight, toNanoPtr(cs.LastEvaluatedAt), toNano(cs.CreatedAt),
	)
	return err
}

func (s *SQLiteStore) CreateEvaluator(ctx context.Context, e *model.Evaluator) error {
	s.logger.Debug("sql", "op", "insert", "table", "evaluators", "id", e.ID)

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO evaluators (id, user_id, active, accepts_all_skills, released_to_evaluate, language, reputation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, b2i(e.Active), b2i(e.AcceptsAllSkills), b2i(e.ReleasedToEvaluate),
		e.Language, e.Reputation, toNano(e.CreatedAt),
	)
	return err
}

func (s *SQLiteStore) AddEvaluatorSkill(ctx context.Context, evaluatorID, skillID string) error {
	s.logger.Debug("sql", "op", "insert", "table", "evaluator_skills", "evaluator_id", evaluatorID, "skill_id", skillID)

	_, err := s.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO evaluator_skills (evaluator_id, skill_id) VALUES (?, ?)`,
		evaluatorID, skillID,
	)
	return err
}

// --- queue builder operations ---

func (s *SQLiteStore) ListEligibleSkills(ctx context.Context, plan model.Plan, staleBefore, registeredBefore time.Time) ([]*EligibleSkill, error) {
	s.logger.Debug("sql", "op", "list_eligible", "plan", plan)

	rows, err := s.q.QueryContext(ctx,
		`SELECT cs.id, c.language
		 FROM candidate_skills cs
		 JOIN candidates c ON c.id = cs.candidate_id
		 JOIN subscriptions sub ON sub.candidate_id = c.id
		 WHERE sub.plan = ? AND sub.active = 1 AND sub.payment_pending = 0
		   AND (cs.last_evaluated_at IS NULL OR cs.last_evaluated_at < ?)
		   AND c.created_at < ?
		   AND NOT EXISTS (
		     SELECT 1 FROM evaluation_requests er
		     WHERE er.candidate_skill_id = cs.id AND er.pending = 1
		   )
		 ORDER BY cs.created_at ASC, cs.id ASC`,
		string(plan), toNano(staleBefore), toNano(registeredBefore),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var eligible []*EligibleSkill
	for rows.Next() {
		var e EligibleSkill
		if err := rows.Scan(&e.CandidateSkillID, &e.Language); err != nil {
			return nil, err
		}
		eligible = append(eligible, &e)
	}
	return eligible, rows.Err()
}

func (s *SQLiteStore) CreateEvaluationRequests(ctx context.Context, reqs []*model.EvaluationRequest) (int64, error) {
	if len(reqs) == 0 {
		return 0, nil
	}
	s.logger.Debug("sql", "op", "bulk_insert", "table", "evaluation_requests", "rows", len(reqs))

	placeholders := make([]string, 0, len(reqs))
	args := make([]any, 0, len(reqs)*6)
	for _, r := range reqs {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?)")
		args = append(args, r.ID, r.CandidateSkillID, r.Priority, b2i(r.Pending), r.Language, toNano(r.CreatedAt))
	}

	// OR IGNORE rides the partial unique index on open requests: a skill
	// that already has one is skipped, not an error.
	res, err := s.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO evaluation_requests (id, candidate_skill_id, priority, pending, language, created_at)
		 VALUES `+strings.Join(placeholders, ", "),
		args...,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- dispatcher operations ---

func (s *SQLiteStore) ExpireInvites(ctx context.Context, now time.Time) (int64, error) {
	s.logger.Debug("sql", "op", "expire", "table", "invites")

	res, err := s.q.ExecContext(ctx,
		`UPDATE invites SET status = ?, decided_at = ?
		 WHERE status = ? AND expires_at < ?`,
		string(model.InviteDeclined), toNano(now), string(model.InvitePending), toNano(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) ListMatchableRequests(ctx context.Context, limit int) ([]*model.MatchableRequest, error) {
	s.logger.Debug("sql", "op", "list_matchable", "limit", limit)

	// Request ids are random, so creation time is the FIFO key within a
	// tier; the id only breaks exact-timestamp ties deterministically.
	rows, err := s.q.QueryContext(ctx,
		`SELECT er.id, er.candidate_skill_id, er.priority, er.evaluator_id, er.pending, er.language, er.created_at, cs.skill_id
		 FROM evaluation_requests er
		 JOIN candidate_skills cs ON cs.id = er.candidate_skill_id
		 WHERE er.pending = 1 AND er.evaluator_id IS NULL
		 ORDER BY er.priority ASC, er.created_at ASC, er.id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*model.MatchableRequest
	for rows.Next() {
		var r model.MatchableRequest
		var pending int
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.CandidateSkillID, &r.Priority, &r.EvaluatorID, &pending, &r.Language, &createdAt, &r.SkillID); err != nil {
			return nil, err
		}
		r.Pending = pending == 1
		r.CreatedAt = fromNano(createdAt)
		reqs = append(reqs, &r)
	}
	return reqs, rows.Err()
}

func (s *SQLiteStore) ListCandidacies(ctx context.Context, skillID, language string) ([]*model.Candidacy, error) {
	s.logger.Debug("sql", "op", "list_candidacies", "skill_id", skillID, "language", language)

	rows, err := s.q.QueryContext(ctx,
		`SELECT e.id, e.user_id, e.active, e.accepts_all_skills, e.released_to_evaluate,
		        e.language, e.reputation, e.created_at,
		        (SELECT COUNT(*) FROM invites i WHERE i.evaluator_id = e.id AND i.status = ?) AS open_invites
		 FROM evaluators e
		 JOIN evaluator_skills es ON es.evaluator_id = e.id
		 WHERE es.skill_id = ? AND e.active = 1 AND e.accepts_all_skills = 1
		   AND e.released_to_evaluate = 1 AND e.language = ?`,
		string(model.InvitePending), skillID, language,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cands []*model.Candidacy
	for rows.Next() {
		var c model.Candidacy
		var active, acceptsAll, released int
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.UserID, &active, &acceptsAll, &released,
			&c.Language, &c.Reputation, &createdAt, &c.OpenInvites); err != nil {
			return nil, err
		}
		c.Active = active == 1
		c.AcceptsAllSkills = acceptsAll == 1
		c.ReleasedToEvaluate = released == 1
		c.CreatedAt = fromNano(createdAt)
		cands = append(cands, &c)
	}
	return cands, rows.Err()
}

func (s *SQLiteStore) CreateInvite(ctx context.Context, inv *model.Invite) (bool, error) {
	s.logger.Debug("sql", "op", "insert", "table", "invites", "evaluator_id", inv.EvaluatorID, "request_id", inv.RequestID)

	res, err := s.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO invites (id, evaluator_id, request_id, status, created_at, expires_at, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.EvaluatorID, inv.RequestID, string(inv.Status),
		toNano(inv.CreatedAt), toNano(inv.ExpiresAt), toNanoPtr(inv.DecidedAt),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	s.logger.Debug("sql", "op", "insert", "table", "notifications", "id", n.ID)

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, profile_id, profile_kind, kind, reference_id, email_sent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.ProfileID, string(n.ProfileKind), string(n.Kind),
		n.ReferenceID, b2i(n.EmailSent), toNano(n.CreatedAt),
	)
	return err
}

// --- invite acceptance ---

func (s *SQLiteStore) GetInvite(ctx context.Context, id string) (*model.Invite, error) {
	s.logger.Debug("sql", "op", "select", "table", "invites", "id", id)

	row := s.q.QueryRowContext(ctx,
		`SELECT id, evaluator_id, request_id, status, created_at, expires_at, decided_at
		 FROM invites WHERE id = ?`, id,
	)
	return scanInvite(row)
}

func (s *SQLiteStore) DecideInvite(ctx context.Context, id string, status model.InviteStatus, now time.Time) error {
	s.logger.Debug("sql", "op", "decide", "table", "invites", "id", id, "status", status)

	inv, err := s.GetInvite(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return fmt.Errorf("invite %s not found", id)
	}
	if !inv.Status.CanTransitionTo(status) {
		return &model.InvalidTransitionError{Entity: "invite", ID: id, From: inv.Status.String(), To: status.String()}
	}

	_, err = s.q.ExecContext(ctx,
		`UPDATE invites SET status = ?, decided_at = ? WHERE id = ? AND status = ?`,
		string(status), toNano(now), id, string(model.InvitePending),
	)
	return err
}

func (s *SQLiteStore) ListInvitesByRequest(ctx context.Context, requestID string) ([]*model.Invite, error) {
	s.logger.Debug("sql", "op", "list", "table", "invites", "request_id", requestID)

	rows, err := s.q.QueryContext(ctx,
		`SELECT id, evaluator_id, request_id, status, created_at, expires_at, decided_at
		 FROM invites WHERE request_id = ? ORDER BY created_at ASC, id ASC`, requestID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*model.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (s *SQLiteStore) CountOpenInvites(ctx context.Context, evaluatorID string) (int, error) {
	s.logger.Debug("sql", "op", "count_open", "table", "invites", "evaluator_id", evaluatorID)

	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invites WHERE evaluator_id = ? AND status = ?`,
		evaluatorID, string(model.InvitePending),
	).Scan(&n)
	return n, err
}

// --- digest aggregator operations ---

func (s *SQLiteStore) ListUnsentNotifications(ctx context.Context, kind model.NotificationKind) ([]*model.Notification, error) {
	s.logger.Debug("sql", "op", "list_unsent", "table", "notifications", "kind", kind)

	rows, err := s.q.QueryContext(ctx,
		`SELECT id, user_id, profile_id, profile_kind, kind, reference_id, email_sent, created_at
		 FROM notifications
		 WHERE email_sent = 0 AND kind = ?
		 ORDER BY created_at ASC, id ASC`,
		string(kind),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []*model.Notification
	for rows.Next() {
		var n model.Notification
		var profileKind, nkind string
		var emailSent int
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.UserID, &n.ProfileID, &profileKind, &nkind,
			&n.ReferenceID, &emailSent, &createdAt); err != nil {
			return nil, err
		}
		n.ProfileKind = model.ProfileKind(profileKind)
		n.Kind = model.NotificationKind(nkind)
		n.EmailSent = emailSent == 1
		n.CreatedAt = fromNano(createdAt)
		notifs = append(notifs, &n)
	}
	return notifs, rows.Err()
}

func (s *SQLiteStore) MarkNotificationsSent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.logger.Debug("sql", "op", "mark_sent", "table", "notifications", "rows", len(ids))

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	_, err := s.q.ExecContext(ctx,
		`UPDATE notifications SET email_sent = 1 WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...,
	)
	return err
}

// --- scan helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func scanInvite(row scanner) (*model.Invite, error) {
	var inv model.Invite
	var status string
	var createdAt, expiresAt int64
	var decidedAt *int64

	err := row.Scan(&inv.ID, &inv.EvaluatorID, &inv.RequestID, &status,
		&createdAt, &expiresAt, &decidedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	inv.Status = model.InviteStatus(status)
	inv.CreatedAt = fromNano(createdAt)
	inv.ExpiresAt = fromNano(expiresAt)
	inv.DecidedAt = fromNanoPtr(decidedAt)
	return &inv, nil
}
