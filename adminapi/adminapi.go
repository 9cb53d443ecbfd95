package adminapi

import (
	"context"
	"time"

	"github.com/kkroo/qctl"
	"github.com/kkroo/qctl/job"
	"github.com/kkroo/qctl/supervisor"
)

// API is the façade the CLI and dashboard depend on. Each method maps
// to exactly one underlying Store or Supervisor call.
type API struct {
	store      supervisor.Store
	supervisor *supervisor.Supervisor
	stopWait   time.Duration
}

// New creates an API over store, with sv used for worker lifecycle and
// status operations. stopWait bounds how long StopSupervisor waits for a remote
// supervisor to confirm shutdown.
func New(store supervisor.Store, sv *supervisor.Supervisor, stopWait time.Duration) *API {
	return &API{store: store, supervisor: sv, stopWait: stopWait}
}

// Enqueue validates and inserts a new job, returning its id.
func (a *API) Enqueue(ctx context.Context, spec *job.Spec) (string, error) {
	return a.store.Enqueue(ctx, spec)
}

// List returns jobs matching filter.
func (a *API) List(ctx context.Context, filter qctl.ListFilter) ([]*job.Job, error) {
	return a.store.List(ctx, filter)
}

// DlqList returns every Dead job: the dead-letter queue.
func (a *API) DlqList(ctx context.Context) ([]*job.Job, error) {
	return a.store.List(ctx, qctl.ListFilter{State: job.Dead})
}

// DlqRetry requeues a Dead job back to Pending with a clean attempt
// count.
func (a *API) DlqRetry(ctx context.Context, jobId string) error {
	return a.store.RequeueDead(ctx, jobId, time.Now())
}

// Purge permanently deletes jobs matching predicate, returning the
// count removed.
func (a *API) Purge(ctx context.Context, predicate qctl.PurgePredicate) (int64, error) {
	return a.store.Purge(ctx, predicate)
}

// ConfigGet returns the value for key.
func (a *API) ConfigGet(ctx context.Context, key string) (string, bool, error) {
	return a.store.ConfigGet(ctx, key)
}

// ConfigSet stores value for key.
func (a *API) ConfigSet(ctx context.Context, key, value string) error {
	return a.store.ConfigSet(ctx, key, value)
}

// Status reports supervisor and queue state, delegating entirely to
// Supervisor.Status so the CLI and a dashboard share one code path.
func (a *API) Status(ctx context.Context) (supervisor.Status, error) {
	return a.supervisor.Status(ctx)
}

// StopSupervisor asks a running supervisor (in this process or
// another) to shut down, bounded by the API's configured stopWait.
func (a *API) StopSupervisor(ctx context.Context) error {
	return supervisor.RequestStop(ctx, a.store, a.stopWait)
}
