package qctl

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/kkroo/qctl/internal"
)

const (
	stopped = iota
	started
)

var (
	// ErrDoubleStarted is returned when Start is called on a component
	// that has already been started.
	ErrDoubleStarted = errors.New("already started")

	// ErrDoubleStopped is returned when Stop is called on a component
	// that is not currently running.
	ErrDoubleStopped = errors.New("already stopped")

	// ErrStopTimeout is returned when a component fails to shut down
	// within the provided timeout. The component may still be
	// terminating in the background.
	ErrStopTimeout = errors.New("stop timeout")

	// ErrAlreadyRunning is returned by Supervisor.Start when the
	// persisted supervisor record names a pid that is still alive. A
	// record naming a dead pid is a stale record, not a conflict, and is
	// ignored by Start.
	ErrAlreadyRunning = errors.New("supervisor already running")
)

// Lifecycle is a reusable start-once/stop-once state machine shared by
// Worker and Supervisor, so both get the same ErrDoubleStarted /
// ErrDoubleStopped / ErrStopTimeout semantics for free.
type Lifecycle struct {
	state atomic.Int32
}

// TryStart transitions stopped -> started, or returns ErrDoubleStarted.
func (l *Lifecycle) TryStart() error {
	if !l.state.CompareAndSwap(stopped, started) {
		return ErrDoubleStarted
	}
	return nil
}

// TryStop transitions started -> stopped, invokes df to begin shutdown,
// and waits up to timeout for the returned DoneChan to close.
func (l *Lifecycle) TryStop(timeout time.Duration, df internal.DoneFunc) error {
	if !l.state.CompareAndSwap(started, stopped) {
		return ErrDoubleStopped
	}
	done := df()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}
