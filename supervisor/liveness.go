package supervisor

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// signalTerm sends SIGTERM to proc, the first step of a remote
// supervisor shutdown request.
func signalTerm(proc *os.Process) error {
	return proc.Signal(syscall.SIGTERM)
}

// isProcessAlive reports whether pid currently identifies a live
// process, using the standard liveness check of sending the null
// signal and inspecting whether it was rejected as ESRCH.
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	// EPERM means the process exists but belongs to another user.
	return err == nil || errors.Is(err, syscall.EPERM)
}

// workerId builds the id a spawned worker claims jobs under:
// <hostname>-<pid>-<slot>. Encoding the owning pid directly in the id
// lets ReclaimOrphans determine liveness without any separate
// worker-id-to-pid registry.
func workerId(hostname string, pid, slot int) string {
	return hostname + "-" + strconv.Itoa(pid) + "-" + strconv.Itoa(slot)
}

// pidFromWorkerId extracts the pid embedded in a worker id produced by
// workerId. It returns ok=false if id isn't in the expected form,
// which liveness checks treat as "not live."
func pidFromWorkerId(id string) (int, bool) {
	parts := strings.Split(id, "-")
	if len(parts) < 3 {
		return 0, false
	}
	pid, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, false
	}
	return pid, true
}
