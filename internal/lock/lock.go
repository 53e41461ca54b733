// Package lock provides a database-backed advisory lock for serializing
// scheduled jobs across process instances that share one database.
package lock

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Locker is a named, non-blocking mutual-exclusion primitive. TryAcquire
// never waits: it reports whether the caller now holds the lock.
type Locker interface {
	TryAcquire(ctx context.Context, name string) (bool, error)
	Release(ctx context.Context, name string) error
}

// DBLocker implements Locker on a job_locks table: inserting the row is
// acquisition, deleting it is release. A hold older than StaleAfter is
// treated as abandoned (crashed holder) and stolen on the next acquire.
type DBLocker struct {
	db         *sql.DB
	holder     string
	staleAfter time.Duration
	logger     *slog.Logger
}

// DefaultStaleAfter is well above any sane job runtime.
const DefaultStaleAfter = time.Hour

// NewDBLocker creates a locker on the given database. The holder token
// identifies this process instance so Release only removes its own holds.
func NewDBLocker(db *sql.DB, logger *slog.Logger) *DBLocker {
	host, _ := os.Hostname()
	return &DBLocker{
		db:         db,
		holder:     fmt.Sprintf("%s-%d-%s", host, os.Getpid(), uuid.New().String()[:8]),
		staleAfter: DefaultStaleAfter,
		logger:     logger.With("component", "lock"),
	}
}

// TryAcquire attempts to take the named lock without blocking.
func (l *DBLocker) TryAcquire(ctx context.Context, name string) (bool, error) {
	now := time.Now().UTC()

	// Steal abandoned holds so a crashed instance cannot wedge a job forever.
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM job_locks WHERE name = ? AND acquired_at < ?`,
		name, now.Add(-l.staleAfter).UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("sweep stale lock %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		l.logger.Warn("stole stale lock", "name", name)
	}

	res, err = l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO job_locks (name, holder, acquired_at) VALUES (?, ?, ?)`,
		name, l.holder, now.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Release frees the named lock if this instance holds it. Releasing a
// lock held by someone else (or by nobody) is a no-op.
func (l *DBLocker) Release(ctx context.Context, name string) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM job_locks WHERE name = ? AND holder = ?`,
		name, l.holder,
	)
	if err != nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}
