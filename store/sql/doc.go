// Package sql provides a bun-based SQL storage implementation of
// qctl.Store.
//
// # Overview
//
// This package implements qctl's Enqueuer, Claimer, Observer, Purger
// and ConfigStore interfaces using a relational database via
// github.com/uptrace/bun. It is exercised against SQLite (via
// modernc.org/sqlite) but relies on nothing beyond bun's generic SQL
// generation, so any bun-supported dialect with equivalent
// transactional guarantees should work.
//
// The backend provides:
//
//   - durable persistence of jobs, config, and the supervisor record
//   - atomic state transitions via UPDATE ... WHERE ... (rows-affected
//     check), avoiding a separate SELECT-then-UPDATE race window
//   - indexes on (state, priority, run_at) and (state, updated_at) to
//     support Claim's eligibility scan and Purge's filtering
//
// # Concurrency Model
//
// Claim is implemented as a single atomic UPDATE statement driven by a
// correlated subquery selecting exactly one eligible row, so two
// concurrent Claim calls racing over the same single eligible job
// cannot both succeed: the database's own row-level locking serializes
// the two UPDATEs, and the loser's subquery (re-evaluated by the
// database for each statement) simply finds no matching row.
//
// SQLite callers should open with WAL journal mode and a busy_timeout,
// and should keep a single open connection (SQLite serializes writers
// regardless; a pool only hides lock-contention errors that
// journal_mode/busy_timeout would otherwise surface). store/sql's own
// tests do this.
//
// # Schema
//
// InitDB (or MustInitDB) creates the jobs, config, and supervisor
// tables plus indexes, idempotently, inside one transaction. It does
// not perform destructive migrations; schema evolution is out of scope
// for this package.
//
// # Database Lifecycle
//
// This package does not manage connection pooling or database
// lifecycle. Callers are responsible for constructing *bun.DB,
// configuring it, and calling InitDB before first use.
package sql
