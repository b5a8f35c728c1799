package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the customer reference embedded in every header.
type Customer struct {
	CustomerCode string
	CustomerName string
}

// Product is the product reference embedded in every line.
type Product struct {
	ProductCode string
}

// CreditNote is a credit-note header as returned by the API.
type CreditNote struct {
	CreditNoteNumber string
	InvoiceNumber    string
	Status           string
	Customer         *Customer
	Total            decimal.Decimal
	CreditDate       *time.Time
	CreditLines      []CreditLine
}

// CreditLine is one product line of a credit note.
type CreditLine struct {
	Product        *Product
	CreditQuantity decimal.Decimal
	Guid           string
}

// CreditNoteRow is the denormalized row stored in UnleashedCreditNotes.
type CreditNoteRow struct {
	CreditNoteNumber string
	InvoiceNumber    string
	CreditStatus     string
	CustomerCode     string
	CustomerName     string
	Total            decimal.Decimal
	ProductCode      string
	CreditQuantity   decimal.Decimal
	CreditDate       *time.Time
	Guid             string
}

// LineGuid returns the dedup key of the row.
func (r CreditNoteRow) LineGuid() string { return r.Guid }

// Rows flattens the header into one row per credit line.
func (c *CreditNote) Rows() ([]CreditNoteRow, error) {
	if c.Customer == nil {
		return nil, fmt.Errorf("%w: credit note %s has no customer", ErrMalformedRecord, c.CreditNoteNumber)
	}

	rows := make([]CreditNoteRow, 0, len(c.CreditLines))
	for i, line := range c.CreditLines {
		if line.Guid == "" {
			return nil, fmt.Errorf("%w: credit note %s line %d has no guid", ErrMalformedRecord, c.CreditNoteNumber, i)
		}
		if line.Product == nil {
			return nil, fmt.Errorf("%w: credit note %s line %s has no product", ErrMalformedRecord, c.CreditNoteNumber, line.Guid)
		}
		rows = append(rows, CreditNoteRow{
			CreditNoteNumber: c.CreditNoteNumber,
			InvoiceNumber:    c.InvoiceNumber,
			CreditStatus:     c.Status,
			CustomerCode:     c.Customer.CustomerCode,
			CustomerName:     c.Customer.CustomerName,
			Total:            c.Total,
			ProductCode:      line.Product.ProductCode,
			CreditQuantity:   line.CreditQuantity,
			CreditDate:       c.CreditDate,
			Guid:             line.Guid,
		})
	}
	return rows, nil
}
