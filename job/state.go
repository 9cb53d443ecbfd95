package job

import "fmt"

// State represents the current lifecycle state of a Job.
//
// The state machine is:
//
//	Pending    -> Processing
//	Processing -> Completed
//	Processing -> Pending   (via retry, on failure with attempts remaining)
//	Processing -> Dead      (via retry, on failure with attempts exhausted)
//
// There is no persisted "failed" state. A job that failed but still has
// retries left is simply Pending again with Attempts > 0; callers that
// want to distinguish "never tried" from "failed, will retry" should look
// at Attempts, not State.
//
// Unknown is reserved as the zero value and may be used to indicate an
// unspecified state in filtering contexts (e.g. List with no filter).
type State uint8

const (
	// Unknown represents an unspecified or invalid job state.
	// It is the zero value of State.
	Unknown State = iota

	// Pending indicates the job is eligible for claiming once RunAt has
	// elapsed.
	Pending

	// Processing indicates the job is currently owned by a worker. While
	// in this state, ClaimedBy identifies the owning worker.
	Processing

	// Completed indicates the job exited zero on its most recent attempt.
	// Terminal: never retried.
	Completed

	// Dead indicates the job has exhausted its retry budget. Terminal
	// until explicitly requeued via RequeueDead.
	Dead
)

func stateToString(s State) string {
	switch s {
	case Pending:
		return "pending"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

func stateFromString(s string) (State, error) {
	switch s {
	case "pending":
		return Pending, nil
	case "processing":
		return Processing, nil
	case "completed":
		return Completed, nil
	case "dead":
		return Dead, nil
	case "unknown", "":
		return Unknown, nil
	default:
		return 0, fmt.Errorf("unknown job state: %s", s)
	}
}

// ParseState converts a string representation of a state into a State
// value. Recognized values are "pending", "processing", "completed",
// "dead", "unknown" and the empty string (the last two both yield
// Unknown). An error is returned for anything else.
func ParseState(s string) (State, error) {
	return stateFromString(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(stateToString(s)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	state, err := stateFromString(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// String returns the canonical string representation of the state.
func (s State) String() string {
	return stateToString(s)
}
