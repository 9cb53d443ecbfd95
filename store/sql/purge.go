package sql

import (
	"context"
	"fmt"

	"github.com/kkroo/qctl"
	"github.com/kkroo/qctl/job"
)

// Purge permanently deletes jobs matching predicate and returns the
// number of rows removed.
//
// Only terminal states may be purged: job.Completed and job.Dead. If
// predicate.State is job.Unknown (zero value), both are eligible. A
// predicate naming job.Pending or job.Processing returns
// qctl.ErrInvalidSpec; Purge never deletes a job a worker might still
// be running.
//
// An empty predicate.IdPrefix applies no id filter.
func (s *Store) Purge(ctx context.Context, predicate qctl.PurgePredicate) (int64, error) {
	if predicate.State != job.Unknown && predicate.State != job.Completed && predicate.State != job.Dead {
		return 0, fmt.Errorf("%w: purge only applies to completed or dead jobs", qctl.ErrInvalidSpec)
	}

	query := s.db.NewDelete().Model((*jobModel)(nil))
	if predicate.State != job.Unknown {
		query = query.Where("state = ?", predicate.State)
	} else {
		query = query.Where("state IN (?, ?)", job.Completed, job.Dead)
	}
	if predicate.IdPrefix != "" {
		query = query.Where("id LIKE ?", predicate.IdPrefix+"%")
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	return getAffected(res), nil
}
