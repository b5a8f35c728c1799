package driven

import (
	"context"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// SalesClient fetches pages of sales documents from the remote API.
// Page numbers start at 1. A page shorter than PageSize is the last one.
type SalesClient interface {
	// CreditNotes fetches one page of credit-note headers.
	CreditNotes(ctx context.Context, page int) ([]domain.CreditNote, error)

	// Invoices fetches one page of invoice headers.
	Invoices(ctx context.Context, page int) ([]domain.Invoice, error)

	// PageSize returns the number of headers requested per page.
	PageSize() int

	// Ping verifies that the API accepts the configured credentials.
	Ping(ctx context.Context) error
}
