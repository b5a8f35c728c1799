package driven

import "time"

// RunLog is the append-only, human readable log of sync runs.
type RunLog interface {
	// Start records that a run began at t.
	Start(t time.Time) error

	// Log appends a single line.
	Log(line string) error

	// Stop records the elapsed wall-clock time and closes the run block.
	Stop(elapsed time.Duration) error
}
