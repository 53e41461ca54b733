package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seguel/whizzat-backend-sub000/internal/config"
	"github.com/seguel/whizzat-backend-sub000/internal/store"
	"github.com/seguel/whizzat-backend-sub000/pkg/model"
)

// QueueBuilder turns subscription-tier priority into a bounded, ordered
// backlog of evaluation requests. Tiers are scanned most-favored first;
// a skill is enqueued when it is stale (or never evaluated), has no open
// request, and its candidate is past the new-account cooldown.
type QueueBuilder struct {
	store  store.Store
	cfg    config.PipelineConfig
	logger *slog.Logger
}

// NewQueueBuilder creates a queue builder.
func NewQueueBuilder(st store.Store, cfg config.PipelineConfig, logger *slog.Logger) *QueueBuilder {
	return &QueueBuilder{
		store:  st,
		cfg:    cfg,
		logger: logger.With("component", "queue-builder"),
	}
}

// Name returns the job and lock name.
func (b *QueueBuilder) Name() string { return JobQueue }

// Run scans all tiers once and inserts evaluation requests up to the
// per-run cap. A tier whose scan fails is logged and skipped; a failed
// chunk insert aborts the run, since a partial bulk write leaves the
// created count unreliable.
func (b *QueueBuilder) Run(ctx context.Context) error {
	now := time.Now().UTC()
	staleBefore := now.Add(-b.cfg.SkillStaleness)
	registeredBefore := now.Add(-b.cfg.CandidateCooldown)

	var created int64
	for _, tier := range b.cfg.Tiers {
		if created >= int64(b.cfg.MaxPerRun) {
			b.logger.Info("per-run cap reached", "cap", b.cfg.MaxPerRun)
			break
		}

		eligible, err := b.store.ListEligibleSkills(ctx, tier.Plan, staleBefore, registeredBefore)
		if err != nil {
			b.logger.Error("tier scan failed", "plan", tier.Plan, "error", err)
			continue
		}
		if len(eligible) == 0 {
			continue
		}

		remaining := int64(b.cfg.MaxPerRun) - created
		if int64(len(eligible)) > remaining {
			eligible = eligible[:remaining]
		}

		reqs := make([]*model.EvaluationRequest, len(eligible))
		for i, e := range eligible {
			reqs[i] = &model.EvaluationRequest{
				ID:               "req_" + uuid.New().String(),
				CandidateSkillID: e.CandidateSkillID,
				Priority:         tier.Rank,
				Pending:          true,
				Language:         e.Language,
				CreatedAt:        now,
			}
		}

		n, err := b.insertChunked(ctx, reqs)
		created += n
		if err != nil {
			return fmt.Errorf("enqueue tier %s: %w", tier.Plan, err)
		}
		b.logger.Info("tier enqueued", "plan", tier.Plan, "rank", tier.Rank, "eligible", len(eligible), "created", n)
	}

	b.logger.Info("queue run done", "created", created)
	return nil
}

// insertChunked bulk-inserts requests in chunks so one oversized
// statement does not carry the whole tier. Returns rows inserted before
// any failure; duplicates count as skipped, not inserted.
func (b *QueueBuilder) insertChunked(ctx context.Context, reqs []*model.EvaluationRequest) (int64, error) {
	size := b.cfg.InsertChunkSize
	if size <= 0 {
		size = len(reqs)
	}

	var created int64
	for start := 0; start < len(reqs); start += size {
		end := start + size
		if end > len(reqs) {
			end = len(reqs)
		}
		n, err := b.store.CreateEvaluationRequests(ctx, reqs[start:end])
		if err != nil {
			return created, fmt.Errorf("insert chunk %d-%d: %w", start, end, err)
		}
		created += n
	}
	return created, nil
}
