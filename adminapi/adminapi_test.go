package adminapi_test

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/kkroo/qctl"
	"github.com/kkroo/qctl/adminapi"
	"github.com/kkroo/qctl/executor"
	"github.com/kkroo/qctl/job"
	qsql "github.com/kkroo/qctl/store/sql"
	"github.com/kkroo/qctl/supervisor"

	_ "modernc.org/sqlite"
)

func newAPI(t *testing.T) *adminapi.API {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", "file::memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	require.NoError(t, qsql.InitDB(context.Background(), db))

	store := qsql.NewStore(db)
	exe := executor.New(slog.Default())
	sink := executor.NewFileSink(t.TempDir())
	sv := supervisor.New(store, exe, sink, 10*time.Millisecond, time.Second, slog.Default())
	return adminapi.New(store, sv, time.Second)
}

func TestEnqueueAndList(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	id, err := api.Enqueue(ctx, &job.Spec{Id: "a", Command: "exit 0"})
	require.NoError(t, err)
	require.Equal(t, "a", id)

	jobs, err := api.List(ctx, qctl.ListFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
}

func TestDlqListAndRetry(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	mr := 0
	_, err := api.Enqueue(ctx, &job.Spec{Id: "b", Command: "exit 1", MaxRetries: &mr})
	require.NoError(t, err)

	dlq, err := api.DlqList(ctx)
	require.NoError(t, err)
	require.Empty(t, dlq) // never claimed, still pending

	require.Error(t, api.DlqRetry(ctx, "b")) // not dead yet
}

func TestConfigRoundTrip(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	require.NoError(t, api.ConfigSet(ctx, "max_retries", "9"))
	v, ok, err := api.ConfigGet(ctx, "max_retries")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "9", v)
}

func TestPurgeRejectsNonTerminal(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	_, err := api.Purge(ctx, qctl.PurgePredicate{State: job.Processing})
	require.Error(t, err)
}

func TestStatusBeforeStart(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	st, err := api.Status(ctx)
	require.NoError(t, err)
	require.False(t, st.Running)
}
