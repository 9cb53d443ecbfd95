package sql_test

import (
	"context"
	"testing"
	"time"

	"github.com/kkroo/qctl"
	"github.com/kkroo/qctl/job"
	qsql "github.com/kkroo/qctl/store/sql"
)

func TestPurgeCompleted(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	enqueueTestJob(t, store, "job-1", 0)
	now := time.Now()
	j, err := store.Claim(ctx, "worker-a", now)
	if err != nil || j == nil {
		t.Fatalf("claim failed: %v", err)
	}
	if err := store.FinalizeSuccess(ctx, j.Id, 0, now); err != nil {
		t.Fatal(err)
	}

	count, err := store.Purge(ctx, qctl.PurgePredicate{State: job.Completed})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 purged job, got %d", count)
	}

	if _, err := store.Get(ctx, j.Id); err == nil {
		t.Fatal("expected job to be gone after purge")
	}
}

func TestPurgeRejectsNonTerminalState(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	if _, err := store.Purge(ctx, qctl.PurgePredicate{State: job.Processing}); err == nil {
		t.Fatal("expected error purging a non-terminal state")
	}
}

func TestPurgeDoesNotTouchProcessing(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	enqueueTestJob(t, store, "job-1", 0)
	now := time.Now()
	if _, err := store.Claim(ctx, "worker-a", now); err != nil {
		t.Fatal(err)
	}

	count, err := store.Purge(ctx, qctl.PurgePredicate{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("expected no rows purged, got %d", count)
	}
}
