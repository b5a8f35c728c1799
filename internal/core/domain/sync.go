package domain

import "time"

// SyncStatus represents the current state of a sync run
type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// CommitMode selects the transaction granularity of inserts.
type CommitMode string

const (
	// CommitPerPage inserts every new row of a page in one transaction.
	CommitPerPage CommitMode = "page"
	// CommitPerRow inserts every row in its own transaction.
	CommitPerRow CommitMode = "row"
)

// Valid reports whether m is a known commit mode.
func (m CommitMode) Valid() bool {
	return m == CommitPerPage || m == CommitPerRow
}

// ResourceStats holds counters for one resource within a run
type ResourceStats struct {
	Pages    int `json:"pages"`
	Headers  int `json:"headers"`
	Lines    int `json:"lines"`
	Skipped  int `json:"skipped"`
	Inserted int `json:"inserted"`
}

// SyncRun is one recorded execution of the importer
type SyncRun struct {
	ID                  string     `json:"id"`
	Status              SyncStatus `json:"status"`
	StartedAt           time.Time  `json:"started_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CreditNotesInserted int        `json:"credit_notes_inserted"`
	InvoicesInserted    int        `json:"invoices_inserted"`
	Error               string     `json:"error,omitempty"`
}

// SyncResult represents the outcome of a sync run
type SyncResult struct {
	RunID    string                     `json:"run_id"`
	DryRun   bool                       `json:"dry_run"`
	Stats    map[Resource]ResourceStats `json:"stats"`
	Duration time.Duration              `json:"duration"`
}

// Inserted returns the number of rows inserted for r.
func (r *SyncResult) Inserted(res Resource) int {
	if r == nil || r.Stats == nil {
		return 0
	}
	return r.Stats[res].Inserted
}
