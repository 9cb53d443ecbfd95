package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/kkroo/qctl"
	"github.com/kkroo/qctl/executor"
	"github.com/kkroo/qctl/internal"
)

// Worker claims, runs, and finalizes jobs one at a time.
//
// Worker has the same strict lifecycle as the rest of qctl's
// long-running components: Start may only be called once, and Stop
// waits for the in-flight job (if any) to finish or for its own
// timeout to elapse.
type Worker struct {
	qctl.Lifecycle

	id       string
	store    qctl.Claimer
	executor *executor.Executor
	sink     executor.LogSink
	interval time.Duration
	pollTask internal.TimerTask
	log      *slog.Logger
}

// New creates a Worker identified by id, claiming jobs from store and
// running them through exec. interval is how often the worker polls
// for a new job when idle.
func New(id string, store qctl.Claimer, exec *executor.Executor, sink executor.LogSink, interval time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		id:       id,
		store:    store,
		executor: exec,
		sink:     sink,
		interval: interval,
		log:      log.With("worker_id", id),
	}
}

// Id returns the worker's identity, the value recorded as a job's
// ClaimedBy while it owns that job.
func (w *Worker) Id() string {
	return w.id
}

// attempt runs one poll iteration: claim at most one job, and if one
// was claimed, run it to completion before returning. Claim uses ctx,
// the poll loop's own context, so a shutdown signal stops new claims
// immediately; the job itself runs under execCtx, which only the
// job's own timeout or a forced kill ends.
func (w *Worker) attempt(ctx, execCtx context.Context) {
	j, err := w.store.Claim(ctx, w.id, time.Now())
	if err != nil {
		w.log.Error("claim failed", "err", err)
		return
	}
	if j == nil {
		return
	}
	w.runAndFinalize(execCtx, j.Id, j.Command, j.TimeoutSeconds)
}

func (w *Worker) runAndFinalize(ctx context.Context, jobId, command string, timeoutSeconds int) {
	w.log.Info("claimed job", "job_id", jobId)
	res, runErr := w.executor.Run(ctx, jobId, command, timeoutSeconds, w.sink)
	now := time.Now()

	// The command has already exited (or been killed) by this point;
	// finalizing the job is a separate concern from ctx's cancellation,
	// which may be exactly what just ended the job (a forced Kill).
	storeCtx := context.WithoutCancel(ctx)

	if runErr == nil && res.ExitCode == 0 {
		if err := w.store.FinalizeSuccess(storeCtx, jobId, res.ExitCode, now); err != nil {
			w.log.Error("finalize success failed", "job_id", jobId, "err", err)
		}
		return
	}

	lastErr := failureMessage(runErr, res)
	if err := w.store.FinalizeFailure(storeCtx, jobId, res.ExitCode, lastErr, now); err != nil {
		w.log.Error("finalize failure failed", "job_id", jobId, "err", err)
	}
}

func failureMessage(runErr error, res executor.Result) string {
	if runErr != nil {
		return runErr.Error()
	}
	if res.TimedOut {
		return "timeout: process exceeded its configured timeout and was terminated"
	}
	return "command exited non-zero"
}

// Start begins polling for jobs. Start returns qctl.ErrDoubleStarted if
// the worker has already been started. ctx's cancellation, as well as
// Stop, ends the poll loop, so a shutdown signal stops new claims right
// away; execCtx is the separate context passed through to a claimed
// job's execution, so the job in flight when ctx is canceled still
// finishes on its own (subject only to its configured timeout) rather
// than being cut short by the same signal. execCtx is only meant to be
// canceled to force an in-flight job to terminate early.
func (w *Worker) Start(ctx, execCtx context.Context) error {
	if err := w.TryStart(); err != nil {
		return err
	}
	w.pollTask.Start(ctx, func(c context.Context) { w.attempt(c, execCtx) }, w.interval)
	return nil
}

// Stop requests shutdown and waits up to timeout for the current poll
// iteration (and any in-flight job) to finish.
func (w *Worker) Stop(timeout time.Duration) error {
	return w.TryStop(timeout, w.pollTask.Stop)
}
