package executor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LogSink opens a write destination for a job's combined stdout/stderr.
// The returned WriteCloser's Close is called exactly once, after the
// subprocess exits.
type LogSink interface {
	Open(jobId string) (io.WriteCloser, error)
}

// FileSink writes each job's output to its own file under Dir, named
// job_<id>.log.
type FileSink struct {
	Dir string
}

// NewFileSink creates a FileSink rooted at dir. dir is created lazily
// on first Open, not here.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Open creates (or appends to) the log file for jobId, creating Dir if
// it does not already exist.
func (f *FileSink) Open(jobId string) (io.WriteCloser, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", f.Dir, err)
	}
	path := filepath.Join(f.Dir, fmt.Sprintf("job_%s.log", jobId))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
