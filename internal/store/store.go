package store

import (
	"context"
	"time"

	"github.com/seguel/whizzat-backend-sub000/pkg/model"
)

// EligibleSkill is a candidate skill the queue builder may enqueue,
// carrying the candidate's language for later mail localization.
type EligibleSkill struct {
	CandidateSkillID string
	Language         string
}

// Store defines the persistence layer for the evaluation pipeline.
type Store interface {
	// Account and profile records (read mostly; writes exist for seeding
	// and the surrounding application).
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	CreateCandidate(ctx context.Context, c *model.Candidate) error
	CreateSubscription(ctx context.Context, s *model.Subscription) error
	CreateCandidateSkill(ctx context.Context, cs *model.CandidateSkill) error
	CreateEvaluator(ctx context.Context, e *model.Evaluator) error
	AddEvaluatorSkill(ctx context.Context, evaluatorID, skillID string) error

	// Queue builder operations.
	ListEligibleSkills(ctx context.Context, plan model.Plan, staleBefore, registeredBefore time.Time) ([]*EligibleSkill, error)
	// CreateEvaluationRequests bulk-inserts with skip-duplicate semantics:
	// a skill that already has a pending request is silently ignored.
	// Returns the number of rows actually inserted.
	CreateEvaluationRequests(ctx context.Context, reqs []*model.EvaluationRequest) (int64, error)

	// Dispatcher operations.
	// ExpireInvites declines every pending invite past its deadline and
	// returns how many rows changed.
	ExpireInvites(ctx context.Context, now time.Time) (int64, error)
	ListMatchableRequests(ctx context.Context, limit int) ([]*model.MatchableRequest, error)
	ListCandidacies(ctx context.Context, skillID, language string) ([]*model.Candidacy, error)
	// CreateInvite inserts an invite; returns false (and no error) when
	// the (evaluator, request) pair already exists.
	CreateInvite(ctx context.Context, inv *model.Invite) (bool, error)
	CreateNotification(ctx context.Context, n *model.Notification) error

	// Invite acceptance (driven by the evaluator-facing application).
	GetInvite(ctx context.Context, id string) (*model.Invite, error)
	DecideInvite(ctx context.Context, id string, status model.InviteStatus, now time.Time) error
	ListInvitesByRequest(ctx context.Context, requestID string) ([]*model.Invite, error)
	CountOpenInvites(ctx context.Context, evaluatorID string) (int, error)

	// Digest aggregator operations.
	ListUnsentNotifications(ctx context.Context, kind model.NotificationKind) ([]*model.Notification, error)
	MarkNotificationsSent(ctx context.Context, ids []string) error

	// WithTx runs fn against a transactional view of the store. fn
	// returning an error rolls everything back. Not reentrant.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle.
	Close() error
	Migrate(ctx context.Context) error
}
