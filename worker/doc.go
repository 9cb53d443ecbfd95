// Package worker runs the claim/execute/finalize loop for a single job
// slot.
//
// A Worker polls Store.Claim on a fixed interval (the idle-poll
// pattern the supervisor's own goroutines share), and whenever it
// claims a job, runs it to completion through an Executor before
// polling again. Exactly one job is in flight per Worker at a time;
// concurrency across jobs is achieved by running multiple Workers, not
// by a Worker running multiple jobs.
package worker
