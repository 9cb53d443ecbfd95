// Package qctl provides a durable, single-node, multi-worker background
// job queue.
//
// # Overview
//
// qctl models jobs as shell commands with priority, scheduled-run time,
// timeout, and retry budget. Workers claim jobs atomically from a shared
// durable Store, execute them as external processes through an Executor,
// and route outcomes back through the Store's finalize operations. State
// survives process restarts: the Store is the only place job state
// lives, and every transition is a single atomic call against it.
//
// The package does not mandate any particular storage backend. The
// store/sql subpackage implements Store over SQLite via bun, but any
// backend providing the same atomicity guarantees may be substituted.
//
// # Delivery Semantics
//
// qctl provides exactly-once claim semantics per job: two concurrent
// Claim calls against a store containing one eligible job never both
// succeed. Execution itself is not guaranteed exactly-once in the face
// of worker crashes mid-run; ReclaimOrphans exists precisely to recover
// from that case and route the job back through the normal retry path.
//
// # State Machine
//
// Jobs follow this lifecycle:
//
//	Pending    -> Processing
//	Processing -> Completed
//	Processing -> Pending   (retry, attempts remain)
//	Processing -> Dead      (retry, attempts exhausted)
//
// Completed and Dead are terminal. There is no persisted Failed state;
// a job that failed but still has retries left is Pending with
// Attempts > 0. Dead jobs may be explicitly returned to Pending via
// RequeueDead.
//
// # Retry Policy
//
// Claim increments Attempts each time it hands out a job. When a
// claimed job's execution fails, FinalizeFailure checks that count: if
// Attempts exceeds MaxRetries, the job becomes Dead;
// otherwise it is rescheduled Pending with RunAt = now + backoff_base^attempts
// seconds, where backoff_base is a store-wide config value (see Backoff).
//
// # Interfaces
//
// qctl defines the following primary interfaces, implemented together
// by a single Store:
//
//	Enqueuer    — insert new jobs
//	Claimer     — claim, finalize and requeue jobs; reclaim orphans
//	Observer    — inspect job state
//	Purger      — remove terminal jobs
//	ConfigStore — read/write the small recognized config keyspace
//
// These interfaces allow storage implementations to be plugged in
// without coupling queue and worker logic to a specific database.
//
// # Concurrency Model
//
// A Worker (see package worker) runs one claim-execute-finalize loop.
// A Supervisor (see package supervisor) owns N such workers as
// goroutines inside one process, reading and writing a single
// supervisor record so a restarted CLI can detect and stop a prior
// supervisor. Shutdown is cooperative: workers check a shared
// cancellation context between jobs and finish the job in flight
// (subject to its own timeout) before exiting.
//
// # Storage Expectations
//
// Implementations of Claimer must ensure atomic state transitions
// (a claim, finalize, or requeue either fully happens or fully doesn't,
// and two concurrent attempts on the same job never both succeed),
// durable persistence, and monotonic UpdatedAt per row.
package qctl
