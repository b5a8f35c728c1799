package driving

import (
	"context"
	"time"
)

// SchedulerService runs the import periodically and on demand.
type SchedulerService interface {
	// Trigger starts a run in the background. Returns domain.ErrSyncInProgress
	// when this process is already running one.
	Trigger(ctx context.Context, opts SyncOptions) error

	// Status reports the state of the schedule and the last run.
	Status() SchedulerStatus
}

// SchedulerStatus is a snapshot of the scheduler.
type SchedulerStatus struct {
	Running   bool          `json:"running"`
	Busy      bool          `json:"busy"`
	Interval  time.Duration `json:"interval"`
	LastRunID string        `json:"last_run_id,omitempty"`
	LastRunAt *time.Time    `json:"last_run_at,omitempty"`
	LastError string        `json:"last_error,omitempty"`
	NextRunAt *time.Time    `json:"next_run_at,omitempty"`
}
