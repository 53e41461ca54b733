package cli

import (
	"context"
	"fmt"

	"github.com/seguel/whizzat-backend-sub000/internal/jobs"
	"github.com/seguel/whizzat-backend-sub000/internal/lock"
	"github.com/seguel/whizzat-backend-sub000/internal/mail"
	"github.com/seguel/whizzat-backend-sub000/internal/store"
)

// pipeline bundles the wired-up jobs and their shared collaborators.
type pipeline struct {
	store  *store.SQLiteStore
	locker *lock.DBLocker

	queue    jobs.Job
	dispatch jobs.Job
	digest   jobs.Job
}

// openPipeline opens the store, runs migrations, and constructs the three
// jobs with their lock and mailer.
func openPipeline(ctx context.Context) (*pipeline, error) {
	st, err := store.NewSQLiteStore(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("database ready", "path", cfg.DBPath)

	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("mailer: %w", err)
	}

	return &pipeline{
		store:    st,
		locker:   lock.NewDBLocker(st.DB(), logger),
		queue:    jobs.NewQueueBuilder(st, cfg, logger),
		dispatch: jobs.NewDispatcher(st, cfg, logger),
		digest:   jobs.NewDigestAggregator(st, mailer, cfg, logger),
	}, nil
}

func (p *pipeline) close() {
	if err := p.store.Close(); err != nil {
		logger.Error("close store", "error", err)
	}
}

// job resolves a job by the name the scheduler invokes it with.
func (p *pipeline) job(name string) (jobs.Job, error) {
	switch name {
	case jobs.JobQueue, "queue":
		return p.queue, nil
	case jobs.JobDispatch, "dispatch":
		return p.dispatch, nil
	case jobs.JobDigest, "digest":
		return p.digest, nil
	default:
		return nil, fmt.Errorf("unknown job %q (want queue, dispatch, or digest)", name)
	}
}
