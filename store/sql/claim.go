package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kkroo/qctl"
	"github.com/kkroo/qctl/job"
)

// Claim selects the single highest-priority, earliest-due Pending job
// and transitions it to Processing atomically: the UPDATE's WHERE
// clause re-checks state = Pending against a correlated subquery, so
// two callers racing over the same eligible row serialize on the
// database's own row locking and exactly one succeeds.
//
// Claim returns (nil, nil) if no job is eligible.
func (s *Store) Claim(ctx context.Context, workerId string, now time.Time) (*job.Job, error) {
	subQuery := s.db.NewSelect().
		Model((*jobModel)(nil)).
		Column("id").
		Where("state = ?", job.Pending).
		Where("run_at <= ?", now).
		Order("priority DESC", "run_at ASC", "created_at ASC").
		Limit(1)

	model := new(jobModel)
	err := s.db.NewUpdate().
		Model(model).
		Set("state = ?", job.Processing).
		Set("attempts = attempts + 1").
		Set("claimed_by = ?", workerId).
		Set("updated_at = ?", now).
		Where("id = (?)", subQuery).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	return model.toJob(), nil
}

// FinalizeSuccess transitions a Processing job to Completed, recording
// its exit code. The job must currently be Processing; if it is not
// (e.g. already reclaimed as an orphan by another caller), FinalizeSuccess
// returns qctl.ErrNotFound.
func (s *Store) FinalizeSuccess(ctx context.Context, jobId string, exitCode int, now time.Time) error {
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Completed).
		Set("exit_code = ?", exitCode).
		Set("claimed_by = NULL").
		Set("updated_at = ?", now).
		Where("id = ?", jobId).
		Where("state = ?", job.Processing).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	if !isAffected(res) {
		return fmt.Errorf("%w: %s", qctl.ErrNotFound, jobId)
	}
	return nil
}

// FinalizeFailure transitions a Processing job back to Pending for
// retry, or to Dead if its retry budget (MaxRetries) is exhausted. On
// retry, run_at is pushed forward by the configured exponential backoff
// so repeated failures don't busy-loop the claim scan.
func (s *Store) FinalizeFailure(ctx context.Context, jobId string, exitCode int, lastErr string, now time.Time) error {
	model := new(jobModel)
	err := s.db.NewSelect().
		Model(model).
		Where("id = ?", jobId).
		Where("state = ?", job.Processing).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: %s", qctl.ErrNotFound, jobId)
		}
		return fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}

	return s.finalizeAttempt(ctx, model, exitCode, lastErr, now)
}

// finalizeAttempt applies the dead-or-retry decision for a Processing
// job snapshot already known to exist. Shared by FinalizeFailure and
// ReclaimOrphans.
func (s *Store) finalizeAttempt(ctx context.Context, model *jobModel, exitCode int, lastErr string, now time.Time) error {
	var res sql.Result
	var err error

	if model.Attempts > uint32(model.MaxRetries) {
		res, err = s.db.NewUpdate().
			Model((*jobModel)(nil)).
			Set("state = ?", job.Dead).
			Set("exit_code = ?", exitCode).
			Set("last_error = ?", lastErr).
			Set("claimed_by = NULL").
			Set("updated_at = ?", now).
			Where("id = ?", model.Id).
			Where("state = ?", job.Processing).
			Exec(ctx)
	} else {
		base, cfgErr := s.intConfig(ctx, keyBackoffBase, defaultBackoffBase)
		if cfgErr != nil {
			return cfgErr
		}
		runAt := now.Add(qctl.Backoff(base, model.Attempts))
		res, err = s.db.NewUpdate().
			Model((*jobModel)(nil)).
			Set("state = ?", job.Pending).
			Set("exit_code = ?", exitCode).
			Set("last_error = ?", lastErr).
			Set("claimed_by = NULL").
			Set("run_at = ?", runAt).
			Set("updated_at = ?", now).
			Where("id = ?", model.Id).
			Where("state = ?", job.Processing).
			Exec(ctx)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	if !isAffected(res) {
		return fmt.Errorf("%w: %s", qctl.ErrNotFound, model.Id)
	}
	return nil
}

// RequeueDead resets a Dead job to Pending with a clean attempt count,
// ready to be claimed again. It returns qctl.ErrNotDead if the job is
// not currently Dead.
func (s *Store) RequeueDead(ctx context.Context, jobId string, now time.Time) error {
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Pending).
		Set("attempts = 0").
		Set("claimed_by = NULL").
		Set("last_error = NULL").
		Set("exit_code = NULL").
		Set("run_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", jobId).
		Where("state = ?", job.Dead).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	if !isAffected(res) {
		return fmt.Errorf("%w: %s", qctl.ErrNotDead, jobId)
	}
	return nil
}

// ReclaimOrphans scans every Processing job and, for each whose
// claimed_by worker is no longer live according to isLive, finalizes it
// as a failed attempt (retry or Dead, per the usual retry budget) with
// a fixed orphan error message. It returns the number of jobs reclaimed.
//
// isLive is consulted once per candidate row that has a claimed_by
// value; a row with no claimed_by is reclaimed without asking. The
// supervisor backs isLive with an OS process check on the pid encoded
// in the worker id.
func (s *Store) ReclaimOrphans(ctx context.Context, now time.Time, isLive func(workerId string) bool) (int, error) {
	var processing []*jobModel
	err := s.db.NewSelect().
		Model(&processing).
		Where("state = ?", job.Processing).
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}

	reclaimed := 0
	for _, model := range processing {
		if model.ClaimedBy != nil && isLive(*model.ClaimedBy) {
			continue
		}
		err := s.finalizeAttempt(ctx, model, -1, "worker-crashed", now)
		if err != nil {
			if errors.Is(err, qctl.ErrNotFound) {
				// Already finalized by someone else between the scan and
				// this update; not our orphan to reclaim.
				continue
			}
			return reclaimed, err
		}
		reclaimed++
	}
	return reclaimed, nil
}
