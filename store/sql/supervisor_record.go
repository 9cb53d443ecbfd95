package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/kkroo/qctl"
)

// supervisorRecordId is the single fixed row identifying whichever
// supervisor process last started against this store.
const supervisorRecordId = 1

// SupervisorRecord is a durable snapshot of the most recently started
// supervisor process, used by a new supervisor on startup to detect an
// unclean previous shutdown and decide whether orphaned Processing jobs
// need reclaiming.
type SupervisorRecord struct {
	Pid          int
	StartedAt    time.Time
	WorkerCount  int
	ShutdownFlag bool
}

// GetSupervisorRecord returns the current supervisor record, or
// (nil, nil) if no supervisor has ever started against this store.
func (s *Store) GetSupervisorRecord(ctx context.Context) (*SupervisorRecord, error) {
	model := new(supervisorModel)
	err := s.db.NewSelect().
		Model(model).
		Where("id = ?", supervisorRecordId).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	return &SupervisorRecord{
		Pid:          model.Pid,
		StartedAt:    model.StartedAt,
		WorkerCount:  model.WorkerCount,
		ShutdownFlag: model.ShutdownFlag,
	}, nil
}

// PutSupervisorRecord upserts the supervisor record, marking it as a
// fresh, not-yet-shut-down start. Called once at supervisor startup
// after any prior orphan reclamation has completed.
func (s *Store) PutSupervisorRecord(ctx context.Context, pid int, startedAt time.Time, workerCount int) error {
	model := &supervisorModel{
		Id:           supervisorRecordId,
		Pid:          pid,
		StartedAt:    startedAt,
		WorkerCount:  workerCount,
		ShutdownFlag: false,
	}
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("pid = EXCLUDED.pid").
		Set("started_at = EXCLUDED.started_at").
		Set("worker_count = EXCLUDED.worker_count").
		Set("shutdown_flag = EXCLUDED.shutdown_flag").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	return nil
}

// MarkSupervisorShutdown flips the shutdown flag on a clean exit, so
// Status can distinguish a cleanly stopped supervisor from one whose
// process is simply gone.
func (s *Store) MarkSupervisorShutdown(ctx context.Context) error {
	_, err := s.db.NewUpdate().
		Model((*supervisorModel)(nil)).
		Set("shutdown_flag = ?", true).
		Where("id = ?", supervisorRecordId).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", qctl.ErrStoreError, err)
	}
	return nil
}
