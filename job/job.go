// Package job defines the job entity and its lifecycle state.
//
// A Job is the unit of work queued by qctl: a shell command, along with
// scheduling and retry metadata, and the delivery state the store
// maintains for it (State, Attempts, ClaimedBy, ...).
//
// Job values returned by a store are snapshots. Mutating them does not
// change the underlying queue state; transitions happen only through
// the store's own operations (Claim, FinalizeSuccess, FinalizeFailure,
// RequeueDead).
package job

import (
	"errors"
	"fmt"
	"time"
)

// Job is the unit of work managed by the queue store.
type Job struct {
	Id      string
	Command string

	Priority       int
	MaxRetries     int
	Attempts       uint32
	TimeoutSeconds int
	RunAt          time.Time

	State State

	CreatedAt time.Time
	UpdatedAt time.Time

	ClaimedBy *string
	LastError *string
	ExitCode  *int
}

// IsRetryPending reports whether the job is the "failed" view spec.md
// describes: Pending with at least one prior attempt. There is no
// persisted Failed state; this is a derived view over Pending+Attempts.
func (j *Job) IsRetryPending() bool {
	return j.State == Pending && j.Attempts > 0
}

var (
	// ErrEmptyId is returned by Spec.Validate when Id is empty.
	ErrEmptyId = errors.New("job id must not be empty")

	// ErrEmptyCommand is returned by Spec.Validate when Command is empty.
	ErrEmptyCommand = errors.New("job command must not be empty")

	// ErrNegativeMaxRetries is returned when MaxRetries is set and negative.
	ErrNegativeMaxRetries = errors.New("max_retries must be >= 0")

	// ErrNonPositiveTimeout is returned when TimeoutSeconds is set and not
	// positive.
	ErrNonPositiveTimeout = errors.New("timeout_seconds must be > 0")
)

// Spec is the validated, boundary-facing representation of an enqueue
// request. Unlike Job, optional fields that fall back to store-wide
// config defaults are left nil rather than pre-filled, so a store
// implementation can distinguish "caller didn't say" from "caller said
// zero."
type Spec struct {
	Id      string
	Command string

	Priority       int
	MaxRetries     *int
	TimeoutSeconds *int
	RunAt          *time.Time
}

// Validate checks field-level constraints that do not depend on store
// state (recognized config defaults, uniqueness). It does not check
// whether Id already exists; that is the store's job.
func (s *Spec) Validate() error {
	if s.Id == "" {
		return ErrEmptyId
	}
	if s.Command == "" {
		return ErrEmptyCommand
	}
	if s.MaxRetries != nil && *s.MaxRetries < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeMaxRetries, *s.MaxRetries)
	}
	if s.TimeoutSeconds != nil && *s.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: got %d", ErrNonPositiveTimeout, *s.TimeoutSeconds)
	}
	return nil
}
