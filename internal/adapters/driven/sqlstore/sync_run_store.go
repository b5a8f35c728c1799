package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SyncRunStore = (*SyncRunStore)(nil)

const selectSyncRunSQL = `
	SELECT id, status, started_at, completed_at, credit_notes_inserted, invoices_inserted, error
	FROM sync_runs
`

// SyncRunStore implements driven.SyncRunStore over the sync_runs table
type SyncRunStore struct {
	db *DB
}

// NewSyncRunStore creates a new SyncRunStore
func NewSyncRunStore(db *DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

// Save creates or updates a run.
// Update-then-insert keeps the statement portable to SQL Server.
func (s *SyncRunStore) Save(ctx context.Context, run *domain.SyncRun) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		update := s.db.Rebind(`
			UPDATE sync_runs
			SET status = ?, started_at = ?, completed_at = ?, credit_notes_inserted = ?, invoices_inserted = ?, error = ?
			WHERE id = ?
		`)
		result, err := tx.ExecContext(ctx, update,
			string(run.Status),
			run.StartedAt,
			NullTime(run.CompletedAt),
			run.CreditNotesInserted,
			run.InvoicesInserted,
			run.Error,
			run.ID,
		)
		if err != nil {
			return fmt.Errorf("update sync run: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			return nil
		}

		insert := s.db.Rebind(`
			INSERT INTO sync_runs (id, status, started_at, completed_at, credit_notes_inserted, invoices_inserted, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		_, err = tx.ExecContext(ctx, insert,
			run.ID,
			string(run.Status),
			run.StartedAt,
			NullTime(run.CompletedAt),
			run.CreditNotesInserted,
			run.InvoicesInserted,
			run.Error,
		)
		if err != nil {
			return fmt.Errorf("insert sync run: %w", err)
		}
		return nil
	})
}

// Get retrieves a run by ID
func (s *SyncRunStore) Get(ctx context.Context, id string) (*domain.SyncRun, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(selectSyncRunSQL+" WHERE id = ?"), id)

	run, err := scanSyncRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List retrieves the most recent runs, newest first
func (s *SyncRunStore) List(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.db.Rebind(s.db.limit(selectSyncRunSQL + " ORDER BY started_at DESC"))
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSyncRun(row scanner) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var status string
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&status,
		&run.StartedAt,
		&completedAt,
		&run.CreditNotesInserted,
		&run.InvoicesInserted,
		&run.Error,
	)
	if err != nil {
		return nil, err
	}

	run.Status = domain.SyncStatus(status)
	run.CompletedAt = TimePtr(completedAt)
	return &run, nil
}
