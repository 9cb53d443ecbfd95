// Command qctl is the CLI front end for the job queue: enqueue,
// inspect, and administer jobs, and start/stop the worker supervisor.
//
// Exit codes: 0 success, 1 operational failure (a store error, or a
// failed job surfaced through the CLI), 2 usage error (bad flags or
// malformed JSON).
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
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

const (
	usageExit = 2
	failExit  = 1
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return usageExit
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dbPath := envOr("QCTL_DB_PATH", "./qctl.db")
	logDir := envOr("QCTL_LOG_DIR", "./logs")

	store, db, err := openStore(dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		return failExit
	}
	defer db.Close()

	ctx := context.Background()
	interval, stopGrace := timingsFromConfig(ctx, store)

	exe := executor.New(logger)
	sink := executor.NewFileSink(logDir)
	sv := supervisor.New(store, exe, sink, interval, stopGrace, logger)
	api := adminapi.New(store, sv, stopGrace)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "enqueue":
		return cmdEnqueue(ctx, api, rest)
	case "worker":
		return cmdWorker(ctx, sv, api, stopGrace, rest)
	case "status":
		return cmdStatus(ctx, api, rest)
	case "list":
		return cmdList(ctx, api, rest)
	case "dlq":
		return cmdDlq(ctx, api, rest)
	case "config":
		return cmdConfig(ctx, api, rest)
	case "purge":
		return cmdPurge(ctx, api, rest)
	default:
		printUsage()
		return usageExit
	}
}

func openStore(dbPath string) (*qsql.Store, *sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if err := qsql.InitDB(context.Background(), db); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return qsql.NewStore(db), sqlDB, nil
}

// timingsFromConfig derives the worker idle-poll interval and the
// supervisor's bounded shutdown wait from the store's config, falling
// back to the built-in defaults if the store can't be read yet.
func timingsFromConfig(ctx context.Context, store *qsql.Store) (time.Duration, time.Duration) {
	interval := 500 * time.Millisecond
	if raw, ok, err := store.ConfigGet(ctx, "poll_interval_ms"); err == nil && ok {
		if ms, err := parsePositiveInt(raw); err == nil {
			interval = time.Duration(ms) * time.Millisecond
		}
	}

	timeoutSeconds := 30
	if raw, ok, err := store.ConfigGet(ctx, "default_timeout"); err == nil && ok {
		if s, err := parsePositiveInt(raw); err == nil {
			timeoutSeconds = s
		}
	}
	stopGrace := time.Duration(timeoutSeconds)*time.Second + 10*time.Second

	return interval, stopGrace
}

func parsePositiveInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("expected a positive integer, got %q", s)
	}
	return n, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: qctl <command> [flags]

commands:
  enqueue <json>         enqueue a job from a JSON spec
  worker start [--count N]
  worker stop
  status
  list [--state STATE]
  dlq list
  dlq retry <id>
  config get <key>
  config set <key> <value>
  purge --completed`)
}

type jobSpecInput struct {
	Id             string     `json:"id"`
	Command        string     `json:"command"`
	Priority       int        `json:"priority"`
	MaxRetries     *int       `json:"max_retries"`
	TimeoutSeconds *int       `json:"timeout_seconds"`
	RunAt          *time.Time `json:"run_at"`
}

func cmdEnqueue(ctx context.Context, api *adminapi.API, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: qctl enqueue <json>")
		return usageExit
	}

	var in jobSpecInput
	dec := json.NewDecoder(strings.NewReader(args[0]))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		fmt.Fprintln(os.Stderr, "invalid job json:", err)
		return usageExit
	}

	spec := &job.Spec{
		Id:             in.Id,
		Command:        in.Command,
		Priority:       in.Priority,
		MaxRetries:     in.MaxRetries,
		TimeoutSeconds: in.TimeoutSeconds,
		RunAt:          in.RunAt,
	}

	id, err := api.Enqueue(ctx, spec)
	if err != nil {
		fmt.Fprintln(os.Stderr, "enqueue failed:", err)
		if errors.Is(err, qctl.ErrInvalidSpec) {
			return usageExit
		}
		return failExit
	}
	fmt.Println(id)
	return 0
}

func cmdWorker(ctx context.Context, sv *supervisor.Supervisor, api *adminapi.API, stopGrace time.Duration, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: qctl worker start|stop")
		return usageExit
	}

	switch args[0] {
	case "start":
		fs := flag.NewFlagSet("worker start", flag.ContinueOnError)
		count := fs.Int("count", 1, "number of workers to run")
		if err := fs.Parse(args[1:]); err != nil {
			return usageExit
		}
		return runWorkerStart(sv, *count, stopGrace)
	case "stop":
		if err := api.StopSupervisor(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "worker stop failed:", err)
			return failExit
		}
		return 0
	default:
		fmt.Fprintln(os.Stderr, "usage: qctl worker start|stop")
		return usageExit
	}
}

// runWorkerStart runs the supervisor until it receives a shutdown
// signal. The first SIGINT/SIGTERM stops claiming new jobs and lets
// whatever is already running finish naturally; a second signal calls
// sv.Kill to force it to stop instead.
func runWorkerStart(sv *supervisor.Supervisor, count int, stopGrace time.Duration) int {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sv.Start(ctx, count); err != nil {
		fmt.Fprintln(os.Stderr, "worker start failed:", err)
		return failExit
	}

	<-sigCh
	cancel()
	go func() {
		if _, ok := <-sigCh; ok {
			sv.Kill()
		}
	}()

	if err := sv.Stop(context.Background(), stopGrace); err != nil && !errors.Is(err, qctl.ErrStopTimeout) {
		fmt.Fprintln(os.Stderr, "worker stop failed:", err)
		return failExit
	}
	return 0
}

func cmdStatus(ctx context.Context, api *adminapi.API, args []string) int {
	st, err := api.Status(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "status failed:", err)
		return failExit
	}
	fmt.Printf("running=%v pid=%d started_at=%s worker_count=%d\n",
		st.Running, st.Pid, st.StartedAt.Format(time.RFC3339), st.WorkerCount)
	for _, state := range []job.State{job.Pending, job.Processing, job.Completed, job.Dead} {
		fmt.Printf("  %s: %d\n", state, st.Counts[state])
	}
	return 0
}

func cmdList(ctx context.Context, api *adminapi.API, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	stateFlag := fs.String("state", "", "filter by state")
	if err := fs.Parse(args); err != nil {
		return usageExit
	}

	filter := qctl.ListFilter{}
	if *stateFlag != "" {
		state, err := job.ParseState(*stateFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid state:", err)
			return usageExit
		}
		filter.State = state
	}

	jobs, err := api.List(ctx, filter)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list failed:", err)
		return failExit
	}
	printJobs(jobs)
	return 0
}

func cmdDlq(ctx context.Context, api *adminapi.API, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: qctl dlq list|retry <id>")
		return usageExit
	}

	switch args[0] {
	case "list":
		jobs, err := api.DlqList(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "dlq list failed:", err)
			return failExit
		}
		printJobs(jobs)
		return 0
	case "retry":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: qctl dlq retry <id>")
			return usageExit
		}
		if err := api.DlqRetry(ctx, args[1]); err != nil {
			fmt.Fprintln(os.Stderr, "dlq retry failed:", err)
			return failExit
		}
		return 0
	default:
		fmt.Fprintln(os.Stderr, "usage: qctl dlq list|retry <id>")
		return usageExit
	}
}

func cmdConfig(ctx context.Context, api *adminapi.API, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: qctl config get <key>|set <key> <value>")
		return usageExit
	}

	switch args[0] {
	case "get":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: qctl config get <key>")
			return usageExit
		}
		v, ok, err := api.ConfigGet(ctx, args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "config get failed:", err)
			return failExit
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "unknown config key:", args[1])
			return usageExit
		}
		fmt.Println(v)
		return 0
	case "set":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: qctl config set <key> <value>")
			return usageExit
		}
		if err := api.ConfigSet(ctx, args[1], args[2]); err != nil {
			fmt.Fprintln(os.Stderr, "config set failed:", err)
			if errors.Is(err, qctl.ErrUnknownConfig) || errors.Is(err, qctl.ErrInvalidConfigValue) {
				return usageExit
			}
			return failExit
		}
		return 0
	default:
		fmt.Fprintln(os.Stderr, "usage: qctl config get <key>|set <key> <value>")
		return usageExit
	}
}

func cmdPurge(ctx context.Context, api *adminapi.API, args []string) int {
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	completed := fs.Bool("completed", false, "purge completed jobs")
	if err := fs.Parse(args); err != nil {
		return usageExit
	}
	if !*completed {
		fmt.Fprintln(os.Stderr, "usage: qctl purge --completed")
		return usageExit
	}

	n, err := api.Purge(ctx, qctl.PurgePredicate{State: job.Completed})
	if err != nil {
		fmt.Fprintln(os.Stderr, "purge failed:", err)
		return failExit
	}
	fmt.Println(n)
	return 0
}

func printJobs(jobs []*job.Job) {
	for _, j := range jobs {
		fmt.Printf("%s\t%s\t%s\tattempts=%d\tpriority=%d\n", j.Id, j.State, j.Command, j.Attempts, j.Priority)
	}
}
