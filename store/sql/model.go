package sql

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/kkroo/qctl/job"
)

type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`

	Id      string `bun:"id,pk"`
	Command string `bun:"command,notnull"`

	Priority       int       `bun:"priority,notnull,default:0"`
	MaxRetries     int       `bun:"max_retries,notnull,default:0"`
	Attempts       uint32    `bun:"attempts,notnull,default:0"`
	TimeoutSeconds int       `bun:"timeout_seconds,notnull"`
	RunAt          time.Time `bun:"run_at,notnull"`
	State          job.State `bun:"state,notnull,default:1"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	ClaimedBy *string `bun:"claimed_by,nullzero"`
	LastError *string `bun:"last_error,nullzero"`
	ExitCode  *int    `bun:"exit_code,nullzero"`
}

func (jm *jobModel) toJob() *job.Job {
	return &job.Job{
		Id:             jm.Id,
		Command:        jm.Command,
		Priority:       jm.Priority,
		MaxRetries:     jm.MaxRetries,
		Attempts:       jm.Attempts,
		TimeoutSeconds: jm.TimeoutSeconds,
		RunAt:          jm.RunAt,
		State:          jm.State,
		CreatedAt:      jm.CreatedAt,
		UpdatedAt:      jm.UpdatedAt,
		ClaimedBy:      jm.ClaimedBy,
		LastError:      jm.LastError,
		ExitCode:       jm.ExitCode,
	}
}

func fromSpec(spec *job.Spec, maxRetries, timeoutSeconds int, runAt, now time.Time) *jobModel {
	return &jobModel{
		Id:             spec.Id,
		Command:        spec.Command,
		Priority:       spec.Priority,
		MaxRetries:     maxRetries,
		Attempts:       0,
		TimeoutSeconds: timeoutSeconds,
		RunAt:          runAt,
		State:          job.Pending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// configModel backs the small recognized key/value config table.
type configModel struct {
	bun.BaseModel `bun:"table:config"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// supervisorModel backs the single-row supervisor record table: one row
// per host identifying the currently (or most recently) running
// supervisor process.
type supervisorModel struct {
	bun.BaseModel `bun:"table:supervisor,alias:sv"`

	// Id is always 1: there is exactly one supervisor record per store.
	Id int `bun:"id,pk"`

	Pid          int       `bun:"pid,notnull"`
	StartedAt    time.Time `bun:"started_at,notnull"`
	WorkerCount  int       `bun:"worker_count,notnull"`
	ShutdownFlag bool      `bun:"shutdown_flag,notnull,default:false"`
}
