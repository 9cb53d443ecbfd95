package sql

import (
	"context"
	"fmt"

	"github.com/kkroo/qctl"
	"github.com/kkroo/qctl/job"
)

// Get retrieves a job by its identifier. It returns qctl.ErrNotFound if
// no job with that id exists.
func (s *Store) Get(ctx context.Context, id string) (*job.Job, error) {
	model := new(jobModel)
	err := s.db.NewSelect().
		Model(model).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s", qctl.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	return model.toJob(), nil
}

// List returns jobs matching filter, ordered by priority descending
// then run_at ascending, the order Claim considers them in (Claim also
// breaks run_at ties by created_at; List leaves such ties unordered).
//
// A zero State in filter (job.Unknown) applies no state filter. An
// empty IdPrefix applies no id filter.
func (s *Store) List(ctx context.Context, filter qctl.ListFilter) ([]*job.Job, error) {
	var models []*jobModel
	query := s.db.NewSelect().Model(&models)
	if filter.State != job.Unknown {
		query = query.Where("state = ?", filter.State)
	}
	if filter.IdPrefix != "" {
		query = query.Where("id LIKE ?", filter.IdPrefix+"%")
	}
	query = query.Order("priority DESC", "run_at ASC")
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}

	ret := make([]*job.Job, len(models))
	for i, m := range models {
		ret[i] = m.toJob()
	}
	return ret, nil
}
