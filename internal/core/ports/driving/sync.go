package driving

import (
	"context"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// SyncOptions narrows a single run.
type SyncOptions struct {
	// Resources limits the run to the given resources. Empty means all, in the
	// order given by domain.Resources.
	Resources []domain.Resource

	// DryRun fetches and diffs without writing rows.
	DryRun bool
}

// SyncService runs the import of sales documents
type SyncService interface {
	// Run performs one full import.
	Run(ctx context.Context, opts SyncOptions) (*domain.SyncResult, error)

	// Check verifies connectivity to the API and the database.
	Check(ctx context.Context) (*CheckReport, error)

	// History lists recent runs, newest first.
	History(ctx context.Context, limit int) ([]*domain.SyncRun, error)
}

// CheckReport is the outcome of a connectivity check.
type CheckReport struct {
	DatabaseVersion string
	APIReachable    bool
	LockBackend     string
}
