package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kkroo/qctl"
	"github.com/kkroo/qctl/executor"
	"github.com/kkroo/qctl/internal"
	"github.com/kkroo/qctl/job"
	qsql "github.com/kkroo/qctl/store/sql"
	"github.com/kkroo/qctl/worker"
)

// Store is the persistence contract Supervisor needs: the full
// qctl.Store plus the supervisor-record bookkeeping store/sql exposes
// alongside it.
type Store interface {
	qctl.Store
	GetSupervisorRecord(ctx context.Context) (*qsql.SupervisorRecord, error)
	PutSupervisorRecord(ctx context.Context, pid int, startedAt time.Time, workerCount int) error
	MarkSupervisorShutdown(ctx context.Context) error
}

// Status is a point-in-time snapshot of the supervisor and queue state,
// the payload behind the CLI's "status" command and a future dashboard.
type Status struct {
	Running     bool
	Pid         int
	StartedAt   time.Time
	WorkerCount int
	Counts      map[job.State]int
}

// Supervisor owns a pool of worker.Worker goroutines and the
// persisted record identifying the process running them.
type Supervisor struct {
	qctl.Lifecycle

	store     Store
	executor  *executor.Executor
	sink      executor.LogSink
	interval  time.Duration
	stopGrace time.Duration
	log       *slog.Logger

	pool       *internal.WorkerPool[string]
	killCtx    context.Context
	killCancel context.CancelFunc
}

// New creates a Supervisor. interval is the per-worker idle poll
// interval (config's poll_interval_ms); stopGrace bounds how long each
// worker is given to finish its in-flight job once shutdown begins.
// Stop's own wait is bounded by its timeout argument.
func New(store Store, exec *executor.Executor, sink executor.LogSink, interval, stopGrace time.Duration, log *slog.Logger) *Supervisor {
	killCtx, killCancel := context.WithCancel(context.Background())
	return &Supervisor{
		store:      store,
		executor:   exec,
		sink:       sink,
		interval:   interval,
		stopGrace:  stopGrace,
		log:        log,
		killCtx:    killCtx,
		killCancel: killCancel,
	}
}

func (s *Supervisor) isLive(workerId string) bool {
	pid, ok := pidFromWorkerId(workerId)
	if !ok {
		return false
	}
	return isProcessAlive(pid)
}

// Start checks for a conflicting live supervisor, reclaims any jobs
// orphaned by a supervisor that died uncleanly, persists its own
// identity, and spawns count workers sharing ctx as their cancellation
// source.
//
// Start returns qctl.ErrAlreadyRunning if the existing record names a
// still-live pid. A record naming a dead pid is stale and is ignored.
func (s *Supervisor) Start(ctx context.Context, count int) error {
	existing, err := s.store.GetSupervisorRecord(ctx)
	if err != nil {
		return err
	}
	if existing != nil && isProcessAlive(existing.Pid) {
		return qctl.ErrAlreadyRunning
	}

	if err := s.TryStart(); err != nil {
		return err
	}

	now := time.Now()
	reclaimed, err := s.store.ReclaimOrphans(ctx, now, s.isLive)
	if err != nil {
		return fmt.Errorf("reclaim orphans: %w", err)
	}
	if reclaimed > 0 {
		s.log.Info("reclaimed orphaned jobs from a prior run", "count", reclaimed)
	}

	pid := os.Getpid()
	if err := s.store.PutSupervisorRecord(ctx, pid, now, count); err != nil {
		return fmt.Errorf("persist supervisor record: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	s.pool = internal.NewWorkerPool[string](count, count, s.log)
	s.pool.Start(ctx, s.runSlot)
	for i := 0; i < count; i++ {
		s.pool.Push(workerId(hostname, pid, i))
	}
	return nil
}

// runSlot runs one worker for the lifetime of ctx: it owns exactly one
// worker id for as long as the supervisor is up, claiming and running
// jobs until ctx is canceled, then stopping that worker within
// stopGrace before releasing its pool slot. The worker's in-flight job
// executes under the supervisor's own killCtx instead of ctx, so ctx's
// cancellation (the first shutdown signal) lets that job finish
// naturally; only Kill (a second shutdown signal) cuts it short.
func (s *Supervisor) runSlot(ctx context.Context, id string) {
	w := worker.New(id, s.store, s.executor, s.sink, s.interval, s.log)
	if err := w.Start(ctx, s.killCtx); err != nil {
		s.log.Error("worker failed to start", "worker_id", id, "err", err)
		return
	}
	<-ctx.Done()
	if err := w.Stop(s.stopGrace); err != nil {
		s.log.Warn("worker did not stop cleanly", "worker_id", id, "err", err)
	}
}

// Stop gracefully shuts down every worker spawned by Start, waiting up
// to timeout, then marks the supervisor record as cleanly shut down.
// A future Start still runs ReclaimOrphans unconditionally; on a clean
// exit it simply finds nothing Processing to reclaim.
//
// Stop is called in-process, typically once ctx (the same context
// passed to Start) has been canceled by a delivered signal. Stop alone
// does not interrupt a job already in flight; call Kill to do that.
func (s *Supervisor) Stop(ctx context.Context, timeout time.Duration) error {
	if err := s.TryStop(timeout, s.pool.Stop); err != nil {
		return err
	}
	return s.store.MarkSupervisorShutdown(ctx)
}

// Kill forcibly ends any job currently in flight across every worker:
// its execution context is canceled, which the Executor treats the
// same as a timeout, escalating to SIGTERM then SIGKILL against the
// subprocess's process group. Intended for a second shutdown signal,
// once graceful Stop has already been requested and the operator wants
// to cut the wait short rather than let a long job finish.
func (s *Supervisor) Kill() {
	s.killCancel()
}

// RequestStop asks a supervisor running in another process to shut
// down: it signals the pid recorded in store with SIGTERM, then polls
// the record for the shutdown flag, bounded by timeout. If no
// supervisor is recorded as running, RequestStop returns nil
// immediately.
func RequestStop(ctx context.Context, store Store, timeout time.Duration) error {
	rec, err := store.GetSupervisorRecord(ctx)
	if err != nil {
		return err
	}
	if rec == nil || !isProcessAlive(rec.Pid) {
		return nil
	}

	proc, err := os.FindProcess(rec.Pid)
	if err != nil {
		return err
	}
	if err := signalTerm(proc); err != nil {
		return fmt.Errorf("signal supervisor pid %d: %w", rec.Pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		rec, err := store.GetSupervisorRecord(ctx)
		if err == nil && rec != nil && rec.ShutdownFlag {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return qctl.ErrStopTimeout
}

// Status reports whether a supervisor is currently running along with
// its recorded identity and a count of jobs in each state.
func (s *Supervisor) Status(ctx context.Context) (Status, error) {
	rec, err := s.store.GetSupervisorRecord(ctx)
	if err != nil {
		return Status{}, err
	}

	st := Status{Counts: map[job.State]int{}}
	if rec != nil {
		st.Pid = rec.Pid
		st.StartedAt = rec.StartedAt
		st.WorkerCount = rec.WorkerCount
		st.Running = isProcessAlive(rec.Pid) && !rec.ShutdownFlag
	}

	for _, state := range []job.State{job.Pending, job.Processing, job.Completed, job.Dead} {
		jobs, err := s.store.List(ctx, qctl.ListFilter{State: state})
		if err != nil {
			return Status{}, err
		}
		st.Counts[state] = len(jobs)
	}
	return st, nil
}
