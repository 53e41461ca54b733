package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/seguel/whizzat-backend-sub000/internal/config"
	"github.com/seguel/whizzat-backend-sub000/internal/store"
	"github.com/seguel/whizzat-backend-sub000/pkg/model"
)

// Dispatcher is the matching engine. One run executes two phases inside
// a single transaction: sweep expired invites, then admit a bounded batch
// of pending requests and invite a load-balanced pool of qualified
// evaluators for each.
type Dispatcher struct {
	store  store.Store
	cfg    config.PipelineConfig
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(st store.Store, cfg config.PipelineConfig, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:  st,
		cfg:    cfg,
		logger: logger.With("component", "dispatcher"),
	}
}

// Name returns the job and lock name.
func (d *Dispatcher) Name() string { return JobDispatch }

// Run executes one dispatch pass. Any error other than the idempotent
// duplicate-invite skip rolls the whole pass back; the next tick retries
// from a clean state.
func (d *Dispatcher) Run(ctx context.Context) error {
	return d.store.WithTx(ctx, func(tx store.Store) error {
		now := time.Now().UTC()

		// Phase A: free expired slots before matching.
		expired, err := tx.ExpireInvites(ctx, now)
		if err != nil {
			return fmt.Errorf("expiry sweep: %w", err)
		}
		if expired > 0 {
			d.logger.Info("expired invites declined", "count", expired)
		}

		// Phase B: admission and matching, priority order.
		reqs, err := tx.ListMatchableRequests(ctx, d.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("admit batch: %w", err)
		}

		var invited int
		for _, req := range reqs {
			n, err := d.matchRequest(ctx, tx, req, now)
			if err != nil {
				return err
			}
			invited += n
		}

		d.logger.Info("dispatch run done", "admitted", len(reqs), "invites", invited)
		return nil
	})
}

// matchRequest invites up to the pool size of evaluators for one request.
// Returns the number of invites created.
func (d *Dispatcher) matchRequest(ctx context.Context, tx store.Store, req *model.MatchableRequest, now time.Time) (int, error) {
	cands, err := tx.ListCandidacies(ctx, req.SkillID, req.Language)
	if err != nil {
		return 0, fmt.Errorf("candidacies for request %s: %w", req.ID, err)
	}

	selected := selectEvaluators(cands, d.cfg.MaxPerEvaluator, d.cfg.InvitesPerRequest)
	if len(selected) == 0 {
		// Nobody qualified right now; the request stays pending and is
		// retried on the next run.
		d.logger.Debug("no qualified evaluators", "request_id", req.ID, "skill_id", req.SkillID)
		return 0, nil
	}

	var invited int
	for _, c := range selected {
		inv := &model.Invite{
			ID:          "inv_" + uuid.New().String(),
			EvaluatorID: c.ID,
			RequestID:   req.ID,
			Status:      model.InvitePending,
			CreatedAt:   now,
			ExpiresAt:   now.Add(d.cfg.InviteTTL),
		}
		created, err := tx.CreateInvite(ctx, inv)
		if err != nil {
			return invited, fmt.Errorf("create invite for request %s: %w", req.ID, err)
		}
		if !created {
			// A concurrent run got here first; the pair is unique.
			d.logger.Warn("invite already exists, skipping", "evaluator_id", c.ID, "request_id", req.ID)
			continue
		}

		notif := &model.Notification{
			ID:          "ntf_" + uuid.New().String(),
			UserID:      c.UserID,
			ProfileID:   c.ID,
			ProfileKind: model.ProfileEvaluator,
			Kind:        model.KindNewSkillAvailable,
			ReferenceID: req.ID,
			CreatedAt:   now,
		}
		if err := tx.CreateNotification(ctx, notif); err != nil {
			return invited, fmt.Errorf("notify evaluator %s: %w", c.ID, err)
		}
		invited++
	}

	d.logger.Debug("request matched", "request_id", req.ID, "priority", req.Priority, "invites", invited)
	return invited, nil
}

// selectEvaluators drops evaluators already at the open-invite ceiling,
// ranks the rest by load first and reputation second, and takes up to
// poolSize. Load-balancing beats merit: an idle low-reputation evaluator
// is served before a busy high-reputation one.
func selectEvaluators(cands []*model.Candidacy, maxOpen, poolSize int) []*model.Candidacy {
	fit := make([]*model.Candidacy, 0, len(cands))
	for _, c := range cands {
		if c.OpenInvites < maxOpen {
			fit = append(fit, c)
		}
	}

	sort.SliceStable(fit, func(i, j int) bool {
		if fit[i].OpenInvites != fit[j].OpenInvites {
			return fit[i].OpenInvites < fit[j].OpenInvites
		}
		return fit[i].Reputation > fit[j].Reputation
	})

	if len(fit) > poolSize {
		fit = fit[:poolSize]
	}
	return fit
}
