package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seguel/whizzat-backend-sub000/internal/config"
	"github.com/seguel/whizzat-backend-sub000/internal/mail"
	"github.com/seguel/whizzat-backend-sub000/internal/store"
	"github.com/seguel/whizzat-backend-sub000/pkg/model"
)

// DigestAggregator rolls unsent notifications up into one email per
// recipient. Groups are independent units of work: one failed send is
// logged and the remaining groups still go out.
type DigestAggregator struct {
	store  store.Store
	mailer mail.Mailer
	cfg    config.PipelineConfig
	logger *slog.Logger
}

// NewDigestAggregator creates a digest aggregator.
func NewDigestAggregator(st store.Store, mailer mail.Mailer, cfg config.PipelineConfig, logger *slog.Logger) *DigestAggregator {
	return &DigestAggregator{
		store:  st,
		mailer: mailer,
		cfg:    cfg,
		logger: logger.With("component", "digest"),
	}
}

// Name returns the job and lock name.
func (a *DigestAggregator) Name() string { return JobDigest }

// digestGroup collects one recipient's pending notifications. Grouping is
// by (user, profile): the same person evaluating and job-hunting gets two
// role-scoped digests, each linking its own dashboard.
type digestGroup struct {
	UserID      string
	ProfileID   string
	ProfileKind model.ProfileKind
	IDs         []string
	Oldest      time.Time
}

// Run sends one digest per (user, profile) group and marks the group's
// notifications sent. The batch is consumed whether or not the send
// succeeded: delivery is never retried, so leaving failed rows unsent
// would re-mail them on every tick.
func (a *DigestAggregator) Run(ctx context.Context) error {
	notifs, err := a.store.ListUnsentNotifications(ctx, model.KindNewSkillAvailable)
	if err != nil {
		return fmt.Errorf("scan unsent notifications: %w", err)
	}
	if len(notifs) == 0 {
		a.logger.Debug("nothing to send")
		return nil
	}

	groups := groupByRecipient(notifs)
	var sent int
	for _, g := range groups {
		user, err := a.store.GetUser(ctx, g.UserID)
		if err != nil {
			a.logger.Error("recipient lookup failed", "user_id", g.UserID, "error", err)
			continue
		}
		if user == nil {
			a.logger.Error("recipient missing", "user_id", g.UserID, "profile_id", g.ProfileID)
			continue
		}

		subject, body := mail.ComposeDigest(mail.DigestInput{
			Name:        user.Name,
			Language:    user.Language,
			ProfileKind: g.ProfileKind,
			Count:       len(g.IDs),
			Oldest:      g.Oldest,
			Dashboard:   a.cfg.DashboardURL,
		})

		if err := a.mailer.Send(ctx, &mail.Message{
			To:      user.Email,
			ToName:  user.Name,
			Subject: subject,
			Body:    body,
		}); err != nil {
			a.logger.Error("digest send failed", "user_id", g.UserID, "profile_id", g.ProfileID,
				"notifications", len(g.IDs), "error", err)
		} else {
			sent++
		}

		if err := a.store.MarkNotificationsSent(ctx, g.IDs); err != nil {
			a.logger.Error("mark sent failed", "user_id", g.UserID, "error", err)
		}
	}

	a.logger.Info("digest run done", "groups", len(groups), "sent", sent, "notifications", len(notifs))
	return nil
}

// groupByRecipient buckets notifications by (user, profile), preserving
// the first-seen order of the already time-sorted input.
func groupByRecipient(notifs []*model.Notification) []*digestGroup {
	type key struct{ user, profile string }

	index := make(map[key]*digestGroup)
	var ordered []*digestGroup
	for _, n := range notifs {
		k := key{n.UserID, n.ProfileID}
		g, ok := index[k]
		if !ok {
			g = &digestGroup{
				UserID:      n.UserID,
				ProfileID:   n.ProfileID,
				ProfileKind: n.ProfileKind,
				Oldest:      n.CreatedAt,
			}
			index[k] = g
			ordered = append(ordered, g)
		}
		g.IDs = append(g.IDs, n.ID)
		if n.CreatedAt.Before(g.Oldest) {
			g.Oldest = n.CreatedAt
		}
	}
	return ordered
}
