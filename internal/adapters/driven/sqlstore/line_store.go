package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LineStore = (*LineStore)(nil)

const insertCreditNoteSQL = `
	INSERT INTO UnleashedCreditNotes (CreditNoteNumber, InvoiceNumber, CreditStatus, CustomerCode, CustomerName, Total, ProductCode, CreditQuantity, CreditDate, Guid)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertInvoiceSQL = `
	INSERT INTO UnleashedInvoices (InvoiceNumber, OrderNumber, InvoiceDate, InvoiceStatus, CustomerCode, CustomerName, Total, ProductCode, OrderQuantity, UnitPrice, DiscountRate, Guid)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// LineStore implements driven.LineStore over the UnleashedCreditNotes and
// UnleashedInvoices tables.
type LineStore struct {
	db *DB
}

// NewLineStore creates a new LineStore
func NewLineStore(db *DB) *LineStore {
	return &LineStore{db: db}
}

// LoadGuids reads every stored line Guid of the resource's table.
func (s *LineStore) LoadGuids(ctx context.Context, resource domain.Resource) (*domain.GuidSet, error) {
	if !resource.Valid() {
		return nil, fmt.Errorf("%w: unknown resource %q", domain.ErrInvalidInput, resource)
	}

	column := "Guid"
	if s.db.driver == DriverSQLServer {
		// uniqueidentifier scans as mixed-endian bytes otherwise.
		column = "CONVERT(NVARCHAR(36), Guid)"
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+column+" FROM "+resource.Table())
	if err != nil {
		return nil, fmt.Errorf("select guids from %s: %w", resource.Table(), err)
	}
	defer rows.Close()

	set := domain.NewGuidSet()
	for rows.Next() {
		var guid string
		if err := rows.Scan(&guid); err != nil {
			return nil, fmt.Errorf("scan guid: %w", err)
		}
		set.Add(guid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guids: %w", err)
	}
	return set, nil
}

// InsertCreditNoteRows inserts rows in a single transaction.
func (s *LineStore) InsertCreditNoteRows(ctx context.Context, rows []domain.CreditNoteRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.db.Rebind(insertCreditNoteSQL))
		if err != nil {
			return fmt.Errorf("prepare credit note insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			_, err := stmt.ExecContext(ctx,
				r.CreditNoteNumber,
				r.InvoiceNumber,
				r.CreditStatus,
				r.CustomerCode,
				r.CustomerName,
				r.Total,
				r.ProductCode,
				r.CreditQuantity,
				NullTime(r.CreditDate),
				r.Guid,
			)
			if err != nil {
				return fmt.Errorf("insert credit note line %s: %w", r.Guid, err)
			}
		}
		return nil
	})
}

// InsertInvoiceRows inserts rows in a single transaction.
func (s *LineStore) InsertInvoiceRows(ctx context.Context, rows []domain.InvoiceRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.db.Rebind(insertInvoiceSQL))
		if err != nil {
			return fmt.Errorf("prepare invoice insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			_, err := stmt.ExecContext(ctx,
				r.InvoiceNumber,
				r.OrderNumber,
				NullTime(r.InvoiceDate),
				r.InvoiceStatus,
				r.CustomerCode,
				r.CustomerName,
				r.Total,
				r.ProductCode,
				r.OrderQuantity,
				r.UnitPrice,
				r.DiscountRate,
				r.Guid,
			)
			if err != nil {
				return fmt.Errorf("insert invoice line %s: %w", r.Guid, err)
			}
		}
		return nil
	})
}

// Version returns the database server version banner.
func (s *LineStore) Version(ctx context.Context) (string, error) {
	return s.db.Version(ctx)
}
