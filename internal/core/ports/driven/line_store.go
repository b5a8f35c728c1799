package driven

import (
	"context"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// LineStore persists flattened line rows (SQL database).
type LineStore interface {
	// LoadGuids returns every line Guid already stored for the resource.
	LoadGuids(ctx context.Context, resource domain.Resource) (*domain.GuidSet, error)

	// InsertCreditNoteRows inserts rows into UnleashedCreditNotes in one transaction.
	InsertCreditNoteRows(ctx context.Context, rows []domain.CreditNoteRow) error

	// InsertInvoiceRows inserts rows into UnleashedInvoices in one transaction.
	InsertInvoiceRows(ctx context.Context, rows []domain.InvoiceRow) error

	// Version returns the database server version string.
	Version(ctx context.Context) (string, error)
}
