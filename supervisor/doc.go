// Package supervisor owns a pool of worker.Worker instances and the
// process-level bookkeeping (a persisted pid/start-time/worker-count
// record) needed to tell a clean restart apart from a crash recovery.
//
// # Startup
//
// Start reads any existing supervisor record. If it names a pid that
// is still alive, Start refuses with ErrAlreadyRunning: only one
// supervisor may run against a store at a time. Otherwise Start
// reclaims any jobs left Processing by a supervisor that died without
// shutting down cleanly, writes its own record, then spawns the requested
// number of workers sharing one signal-derived cancellation context.
//
// # Shutdown
//
// Stop cancels that shared context, which each worker's Lifecycle
// treats as a stop request, then waits (bounded by timeout) for every
// worker to finish its current job before marking the record shut down
// cleanly.
package supervisor
