package sql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kkroo/qctl"
	"github.com/kkroo/qctl/job"
)

// Enqueue validates spec, applies store-wide defaults for MaxRetries and
// TimeoutSeconds when the caller left them unset, and inserts a new
// Pending row. It fails atomically on id collision: the INSERT either
// fully succeeds or nothing is written.
func (s *Store) Enqueue(ctx context.Context, spec *job.Spec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", qctl.ErrInvalidSpec, err)
	}

	now := time.Now()

	maxRetries := spec.MaxRetries
	if maxRetries == nil {
		v, err := s.intConfig(ctx, keyMaxRetries, defaultMaxRetries)
		if err != nil {
			return "", err
		}
		maxRetries = &v
	}

	timeoutSeconds := spec.TimeoutSeconds
	if timeoutSeconds == nil {
		v, err := s.intConfig(ctx, keyDefaultTimeout, defaultTimeoutSeconds)
		if err != nil {
			return "", err
		}
		timeoutSeconds = &v
	}

	runAt := now
	if spec.RunAt != nil {
		runAt = *spec.RunAt
	}

	model := fromSpec(spec, *maxRetries, *timeoutSeconds, runAt, now)
	_, err := s.db.NewInsert().
		Model(model).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: %s", qctl.ErrDuplicateId, spec.Id)
		}
		return "", fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	return spec.Id, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}
