// Package executor runs a Job's command as a shell subprocess and
// captures its output.
//
// # Process Model
//
// Each job is run via "sh -c <command>" in its own process group
// (Setpgid). Killing the group, not just the direct child, matters
// because the command may itself spawn children; a plain
// cmd.Process.Kill would leave them running.
//
// # Timeout Escalation
//
// If the job does not finish within its TimeoutSeconds budget, the
// process group is sent SIGTERM. If it has not exited within a short
// grace period afterward, SIGKILL follows. Canceling the context passed
// to Run triggers the same escalation.
//
// # Output Capture
//
// Combined stdout and stderr are streamed to a LogSink, normally a
// per-job file under ./logs. Output is never buffered in memory beyond
// what io.Copy needs.
package executor
