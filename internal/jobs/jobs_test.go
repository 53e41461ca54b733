package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/seguel/whizzat-backend-sub000/internal/lock"
	"github.com/seguel/whizzat-backend-sub000/internal/store"
)

type stubJob struct {
	name string
	runs int
	err  error
}

func (j *stubJob) Name() string                  { return j.name }
func (j *stubJob) Run(ctx context.Context) error { j.runs++; return j.err }

func testLocker(t *testing.T, st store.Store) *lock.DBLocker {
	t.Helper()
	sq, ok := st.(*store.SQLiteStore)
	if !ok {
		t.Fatalf("store is %T, want *store.SQLiteStore", st)
	}
	return lock.NewDBLocker(sq.DB(), testLogger())
}

func TestRunExclusive_RunsAndReleases(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	locker := testLocker(t, st)

	job := &stubJob{name: "test-job"}
	if err := RunExclusive(ctx, locker, job, testLogger()); err != nil {
		t.Fatalf("RunExclusive: %v", err)
	}
	if job.runs != 1 {
		t.Errorf("runs = %d, want 1", job.runs)
	}

	// Lock must be free again for the next tick.
	ok, err := locker.TryAcquire(ctx, job.Name())
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if !ok {
		t.Error("lock still held after successful run")
	}
}

func TestRunExclusive_SkipsOnContention(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	holder := testLocker(t, st)
	ok, err := holder.TryAcquire(ctx, "test-job")
	if err != nil || !ok {
		t.Fatalf("pre-acquire: ok=%v err=%v", ok, err)
	}

	job := &stubJob{name: "test-job"}
	// A held lock is a skip, not an error: overlapping ticks are routine.
	if err := RunExclusive(ctx, testLocker(t, st), job, testLogger()); err != nil {
		t.Fatalf("RunExclusive under contention: %v", err)
	}
	if job.runs != 0 {
		t.Errorf("runs = %d, want 0 (lock held elsewhere)", job.runs)
	}
}

func TestRunExclusive_ReleasesAfterJobError(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	locker := testLocker(t, st)

	job := &stubJob{name: "test-job", err: errors.New("boom")}
	if err := RunExclusive(ctx, locker, job, testLogger()); err == nil {
		t.Fatal("RunExclusive returned nil, want job error")
	}

	ok, err := locker.TryAcquire(ctx, job.Name())
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if !ok {
		t.Error("lock still held after failed run")
	}
}

func TestRunExclusive_ReleasesAfterCancel(t *testing.T) {
	st := testStore(t)
	locker := testLocker(t, st)

	ctx, cancel := context.WithCancel(context.Background())
	job := &stubJob{name: "test-job", err: context.Canceled}
	cancel()

	_ = RunExclusive(ctx, locker, job, testLogger())

	// Release uses a detached context so shutdown does not strand the lock.
	ok, err := locker.TryAcquire(context.Background(), job.Name())
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if !ok {
		t.Error("lock still held after cancelled run")
	}
}
