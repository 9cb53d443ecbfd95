package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	fn()
	require.NoError(t, w.Close())
	os.Stdout = orig

	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	return string(buf[:n])
}

func withTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("QCTL_DB_PATH", filepath.Join(dir, "qctl.db"))
	t.Setenv("QCTL_LOG_DIR", filepath.Join(dir, "logs"))
}

func TestParsePositiveInt(t *testing.T) {
	v, err := parsePositiveInt("42")
	require.NoError(t, err)
	require.Equal(t, 42, v)

	_, err = parsePositiveInt("0")
	require.Error(t, err)

	_, err = parsePositiveInt("not-a-number")
	require.Error(t, err)
}

func TestEnvOr(t *testing.T) {
	t.Setenv("QCTL_TEST_KEY", "set")
	require.Equal(t, "set", envOr("QCTL_TEST_KEY", "fallback"))
	require.Equal(t, "fallback", envOr("QCTL_TEST_KEY_UNSET", "fallback"))
}

func TestRunEnqueueAndList(t *testing.T) {
	withTestEnv(t)

	var out string
	code := 0
	out = captureStdout(t, func() {
		code = run([]string{"enqueue", `{"id":"a","command":"exit 0"}`})
	})
	require.Equal(t, 0, code)
	require.Contains(t, out, "a")

	out = captureStdout(t, func() {
		code = run([]string{"list"})
	})
	require.Equal(t, 0, code)
	require.Contains(t, out, "a")
}

func TestRunEnqueueInvalidJSON(t *testing.T) {
	withTestEnv(t)
	code := run([]string{"enqueue", `{"id":"a"`})
	require.Equal(t, usageExit, code)
}

func TestRunEnqueueDuplicateId(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, 0, run([]string{"enqueue", `{"id":"dup","command":"exit 0"}`}))
	require.Equal(t, failExit, run([]string{"enqueue", `{"id":"dup","command":"exit 0"}`}))
}

func TestRunConfigGetSet(t *testing.T) {
	withTestEnv(t)

	code := run([]string{"config", "set", "max_retries", "9"})
	require.Equal(t, 0, code)

	out := captureStdout(t, func() {
		code = run([]string{"config", "get", "max_retries"})
	})
	require.Equal(t, 0, code)
	require.Equal(t, "9\n", out)

	code = run([]string{"config", "get", "not_a_real_key"})
	require.Equal(t, usageExit, code)
}

func TestRunNoArgs(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, usageExit, run(nil))
}

func TestRunUnknownCommand(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, usageExit, run([]string{"bogus"}))
}

func TestRunDlqRetryNotDead(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, 0, run([]string{"enqueue", `{"id":"b","command":"exit 0"}`}))
	require.Equal(t, failExit, run([]string{"dlq", "retry", "b"}))
}

func TestRunPurgeRequiresFlag(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, usageExit, run([]string{"purge"}))
}

func TestRunStatusBeforeWorkerStart(t *testing.T) {
	withTestEnv(t)
	out := captureStdout(t, func() {
		require.Equal(t, 0, run([]string{"status"}))
	})
	require.Contains(t, out, "running=false")
}
