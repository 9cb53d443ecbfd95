package sql_test

import (
	"context"
	"testing"
	"time"

	"github.com/kkroo/qctl"
	"github.com/kkroo/qctl/job"
	qsql "github.com/kkroo/qctl/store/sql"
)

func TestEnqueueAndGet(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	enqueueTestJob(t, store, "job-1", 0)

	j, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if j.State != job.Pending {
		t.Fatalf("expected Pending, got %v", j.State)
	}

	if _, err := store.Get(ctx, "missing"); err == nil {
		t.Fatal("expected ErrNotFound for missing job")
	}
}

func TestEnqueueDuplicateId(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	enqueueTestJob(t, store, "job-1", 0)

	_, err := store.Enqueue(ctx, &job.Spec{Id: "job-1", Command: "true"})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestListFiltersByState(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	enqueueTestJob(t, store, "job-1", 0)
	enqueueTestJob(t, store, "job-2", 0)

	now := time.Now()
	_, err := store.Claim(ctx, "worker-a", now)
	if err != nil {
		t.Fatal(err)
	}

	pending, err := store.List(ctx, qctl.ListFilter{State: job.Pending})
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending job, got %d", len(pending))
	}

	processing, err := store.List(ctx, qctl.ListFilter{State: job.Processing})
	if err != nil {
		t.Fatal(err)
	}
	if len(processing) != 1 {
		t.Fatalf("expected 1 processing job, got %d", len(processing))
	}

	all, err := store.List(ctx, qctl.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 jobs total, got %d", len(all))
	}
}

func TestListOrdersByPriorityDesc(t *testing.T) {
	db := newTestDB(t)
	store := qsql.NewStore(db)
	ctx := context.Background()

	if _, err := store.Enqueue(ctx, &job.Spec{Id: "low", Command: "true", Priority: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Enqueue(ctx, &job.Spec{Id: "high", Command: "true", Priority: 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Enqueue(ctx, &job.Spec{Id: "mid", Command: "true", Priority: 3}); err != nil {
		t.Fatal(err)
	}

	jobs, err := store.List(ctx, qctl.ListFilter{State: job.Pending})
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 pending jobs, got %d", len(jobs))
	}
	want := []string{"high", "mid", "low"}
	for i, id := range want {
		if jobs[i].Id != id {
			t.Fatalf("expected jobs[%d]=%s, got %s", i, id, jobs[i].Id)
		}
	}
}
