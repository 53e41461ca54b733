package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/seguel/whizzat-backend-sub000/internal/config"
	"github.com/seguel/whizzat-backend-sub000/internal/logging"
	"github.com/seguel/whizzat-backend-sub000/internal/store"
	"github.com/seguel/whizzat-backend-sub000/pkg/model"
)

// testStore creates a migrated in-memory store.
func testStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	st, err := store.NewSQLiteStore(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testConfig() config.PipelineConfig {
	return config.DefaultPipelineConfig()
}

func testLogger() *slog.Logger {
	return logging.Discard()
}

// seedSubscribedSkill creates a user, candidate, subscription, and one
// candidate skill, eligible for queueing unless the options say otherwise.
// Returns the candidate skill id.
func seedSubscribedSkill(t *testing.T, st store.Store, id string, plan model.Plan, candidateAge time.Duration, lastEval *time.Time) string {
	t.Helper()
	ctx := context.Background()
	created := time.Now().UTC().Add(-candidateAge)

	user := &model.User{
		ID: "u_" + id, Email: id + "@example.com", Name: "Candidate " + id,
		Language: "pt-BR", CreatedAt: created,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser(%s): %v", id, err)
	}
	cand := &model.Candidate{ID: "cand_" + id, UserID: user.ID, Language: "pt-BR", CreatedAt: created}
	if err := st.CreateCandidate(ctx, cand); err != nil {
		t.Fatalf("CreateCandidate(%s): %v", id, err)
	}
	sub := &model.Subscription{
		ID: "sub_" + id, CandidateID: cand.ID, Plan: plan,
		Active: true, CreatedAt: created,
	}
	if err := st.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription(%s): %v", id, err)
	}

	csID := "cs_" + id
	cs := &model.CandidateSkill{
		ID: csID, CandidateID: cand.ID, SkillID: "sk_go",
		LastEvaluatedAt: lastEval, CreatedAt: created,
	}
	if err := st.CreateCandidateSkill(ctx, cs); err != nil {
		t.Fatalf("CreateCandidateSkill(%s): %v", csID, err)
	}
	return csID
}

// seedEvaluator creates a fully matchable evaluator (active, accepts-all,
// released) speaking pt-BR, qualified for the given skills.
func seedEvaluator(t *testing.T, st store.Store, id string, reputation int, skills ...string) *model.Evaluator {
	t.Helper()
	ctx := context.Background()

	e := &model.Evaluator{
		ID: id, UserID: "u_" + id, Active: true, AcceptsAllSkills: true,
		ReleasedToEvaluate: true, Language: "pt-BR", Reputation: reputation,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateEvaluator(ctx, e); err != nil {
		t.Fatalf("CreateEvaluator(%s): %v", id, err)
	}
	user := &model.User{
		ID: e.UserID, Email: id + "@example.com", Name: "Evaluator " + id,
		Language: "pt-BR", CreatedAt: e.CreatedAt,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser(%s): %v", e.UserID, err)
	}
	for _, sk := range skills {
		if err := st.AddEvaluatorSkill(ctx, id, sk); err != nil {
			t.Fatalf("AddEvaluatorSkill(%s, %s): %v", id, sk, err)
		}
	}
	return e
}

// seedRequest creates an open evaluation request for a fresh candidate
// skill. Returns the request.
func seedRequest(t *testing.T, st store.Store, priority int, skillID string, createdAt time.Time) *model.EvaluationRequest {
	t.Helper()
	ctx := context.Background()

	csID := "cs_" + uuid.New().String()
	cs := &model.CandidateSkill{
		ID: csID, CandidateID: "cand_" + uuid.New().String(), SkillID: skillID,
		CreatedAt: createdAt,
	}
	if err := st.CreateCandidateSkill(ctx, cs); err != nil {
		t.Fatalf("CreateCandidateSkill: %v", err)
	}

	req := &model.EvaluationRequest{
		ID:               "req_" + uuid.New().String(),
		CandidateSkillID: csID,
		Priority:         priority,
		Pending:          true,
		Language:         "pt-BR",
		CreatedAt:        createdAt,
	}
	if _, err := st.CreateEvaluationRequests(ctx, []*model.EvaluationRequest{req}); err != nil {
		t.Fatalf("CreateEvaluationRequests: %v", err)
	}
	return req
}

// seedOpenInvites gives an evaluator n open invites against synthetic
// requests, simulating load from earlier dispatch runs.
func seedOpenInvites(t *testing.T, st store.Store, evaluatorID string, n int) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < n; i++ {
		inv := &model.Invite{
			ID:          "inv_" + uuid.New().String(),
			EvaluatorID: evaluatorID,
			RequestID:   "req_load_" + uuid.New().String(),
			Status:      model.InvitePending,
			CreatedAt:   now,
			ExpiresAt:   now.Add(48 * time.Hour),
		}
		created, err := st.CreateInvite(ctx, inv)
		if err != nil || !created {
			t.Fatalf("CreateInvite(load %d): created=%v err=%v", i, created, err)
		}
	}
}
