package driven

import (
	"context"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// SyncRunStore handles run history persistence
type SyncRunStore interface {
	// Save creates or updates a run
	Save(ctx context.Context, run *domain.SyncRun) error

	// Get retrieves a run by ID
	Get(ctx context.Context, id string) (*domain.SyncRun, error)

	// List retrieves the most recent runs, newest first
	List(ctx context.Context, limit int) ([]*domain.SyncRun, error)
}
