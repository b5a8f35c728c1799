package domain

import "fmt"

// Resource identifies one of the Unleashed document collections that are synced.
type Resource string

const (
	ResourceCreditNotes Resource = "CreditNotes"
	ResourceInvoices    Resource = "Invoices"
)

// DefaultPageSize is the largest page the Unleashed API will serve.
const DefaultPageSize = 1000

// Resources returns the sync order used for a full run.
func Resources() []Resource {
	return []Resource{ResourceCreditNotes, ResourceInvoices}
}

// Table returns the destination table for the resource.
func (r Resource) Table() string {
	switch r {
	case ResourceCreditNotes:
		return "UnleashedCreditNotes"
	case ResourceInvoices:
		return "UnleashedInvoices"
	default:
		return ""
	}
}

// Valid reports whether r is a known resource.
func (r Resource) Valid() bool {
	return r.Table() != ""
}

// ParseResource accepts the API name ("CreditNotes") or the CLI spelling ("credit-notes").
func ParseResource(s string) (Resource, error) {
	switch s {
	case "CreditNotes", "credit-notes", "creditnotes", "credits":
		return ResourceCreditNotes, nil
	case "Invoices", "invoices":
		return ResourceInvoices, nil
	default:
		return "", fmt.Errorf("%w: unknown resource %q", ErrInvalidInput, s)
	}
}
