package qctl

import (
	"context"
	"errors"
	"time"

	"github.com/kkroo/qctl/job"
)

var (
	// ErrDuplicateId is returned by Enqueue when a job with the given id
	// already exists.
	ErrDuplicateId = errors.New("duplicate job id")

	// ErrInvalidSpec is returned by Enqueue when the job spec fails
	// validation (empty id/command, out-of-range numeric field,
	// unparseable run_at).
	ErrInvalidSpec = errors.New("invalid job spec")

	// ErrUnknownConfig is returned by ConfigStore.ConfigSet for a key
	// outside the recognized set. ConfigGet reports such a key with
	// ok=false instead.
	ErrUnknownConfig = errors.New("unknown config key")

	// ErrInvalidConfigValue is returned by ConfigStore.ConfigSet when
	// value does not satisfy the recognized key's type (a positive
	// integer, and additionally >= 2 for backoff_base).
	ErrInvalidConfigValue = errors.New("invalid config value")

	// ErrNotFound is returned when an operation references a job id that
	// does not exist.
	ErrNotFound = errors.New("job not found")

	// ErrNotDead is returned by RequeueDead when the referenced job is
	// not currently in the Dead state.
	ErrNotDead = errors.New("job is not dead")

	// ErrStoreError wraps underlying storage failures (I/O, corruption)
	// that are not part of the normal job-level outcome vocabulary.
	ErrStoreError = errors.New("store error")
)

// Enqueuer inserts new jobs into the store.
type Enqueuer interface {

	// Enqueue validates spec and inserts it as a new Pending job with
	// Attempts=0. It fails atomically on id collision: either the row is
	// inserted or ErrDuplicateId is returned, never both a partial write
	// and an error.
	//
	// Returns ErrInvalidSpec if spec fails validation, ErrDuplicateId if
	// spec.Id already exists, or a wrapped ErrStoreError on underlying
	// failure.
	Enqueue(ctx context.Context, spec *job.Spec) (string, error)
}

// Claimer defines the read-write contract for moving jobs through their
// lifecycle. Implementations must ensure every transition below is
// atomic with respect to concurrent callers.
type Claimer interface {

	// Claim selects, within one atomic operation, the single Pending job
	// whose RunAt has elapsed, ordered by (Priority DESC, RunAt ASC,
	// CreatedAt ASC), transitions it to Processing with ClaimedBy=workerId
	// and UpdatedAt=now, increments its Attempts, and returns it. Claim
	// returns (nil, nil) if no eligible job exists.
	//
	// Two concurrent Claim calls against a store with exactly one
	// eligible job must never both return that job.
	Claim(ctx context.Context, workerId string, now time.Time) (*job.Job, error)

	// FinalizeSuccess transitions a Processing job to Completed, clears
	// ClaimedBy, and records exitCode.
	FinalizeSuccess(ctx context.Context, jobId string, exitCode int, now time.Time) error

	// FinalizeFailure uses the Attempts count already incremented by
	// Claim. If Attempts exceeds the job's MaxRetries, the job becomes
	// Dead; otherwise it is rescheduled Pending with RunAt = now +
	// backoff_base^attempts seconds. Either way ClaimedBy is cleared and lastErr/exitCode are
	// recorded.
	FinalizeFailure(ctx context.Context, jobId string, exitCode int, lastErr string, now time.Time) error

	// RequeueDead resets a Dead job to Pending with Attempts=0,
	// RunAt=now, and clears LastError/ExitCode. Returns ErrNotFound if
	// jobId does not exist, ErrNotDead if it is not currently Dead.
	RequeueDead(ctx context.Context, jobId string, now time.Time) error

	// ReclaimOrphans scans all Processing rows and, for each whose
	// ClaimedBy fails the liveness predicate, applies FinalizeFailure as
	// though the claimed worker had failed the job with error
	// "worker-crashed". Intended to run once, at supervisor startup,
	// before new workers are spawned.
	ReclaimOrphans(ctx context.Context, now time.Time, isLive func(workerId string) bool) (int, error)
}

// ListFilter narrows an Observer.List call. The zero value matches every
// job.
type ListFilter struct {
	State    job.State // Unknown matches any state
	IdPrefix string    // empty matches any id
}

// Observer provides read-only access to jobs. Observer does not
// participate in lifecycle transitions; returned Job values are
// independent snapshots.
type Observer interface {

	// Get returns the job identified by id. Returns ErrNotFound if no
	// such job exists.
	Get(ctx context.Context, id string) (*job.Job, error)

	// List returns jobs matching filter, ordered (Priority DESC,
	// RunAt ASC).
	List(ctx context.Context, filter ListFilter) ([]*job.Job, error)
}

// PurgePredicate narrows a Purge call. The zero value matches both
// terminal states.
type PurgePredicate struct {
	State    job.State
	IdPrefix string
}

// Purger permanently removes rows from the store.
type Purger interface {

	// Purge deletes rows matching predicate and returns the count
	// deleted. Only the terminal states (Completed, Dead) are eligible;
	// a predicate naming Pending or Processing returns ErrInvalidSpec
	// rather than silently matching nothing.
	Purge(ctx context.Context, predicate PurgePredicate) (int64, error)
}

// ConfigStore reads and writes the small recognized config keyspace:
// backoff_base, max_retries, default_timeout, poll_interval_ms.
type ConfigStore interface {

	// ConfigGet returns the value for key. If key is recognized but has
	// never been explicitly set, it returns the built-in default and
	// ok=true. ok is false only when key is not a recognized config key.
	ConfigGet(ctx context.Context, key string) (value string, ok bool, err error)

	// ConfigSet validates value against key's recognized type and stores
	// it. Returns ErrUnknownConfig for a key outside the recognized set,
	// or ErrInvalidConfigValue if value doesn't satisfy key's type.
	ConfigSet(ctx context.Context, key string, value string) error
}

// Store is the full durable-persistence contract the rest of qctl
// depends on. A single implementation satisfies all five roles; they
// are kept as separate interfaces so callers that only need one
// capability (e.g. a read-only dashboard needing only Observer) can
// depend on the narrower type.
type Store interface {
	Enqueuer
	Claimer
	Observer
	Purger
	ConfigStore
}
