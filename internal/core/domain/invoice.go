package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is an invoice header as returned by the API.
type Invoice struct {
	InvoiceNumber string
	OrderNumber   string
	InvoiceDate   *time.Time
	InvoiceStatus string
	Customer      *Customer
	Total         decimal.Decimal
	InvoiceLines  []InvoiceLine
}

// InvoiceLine is one product line of an invoice.
type InvoiceLine struct {
	Product       *Product
	OrderQuantity decimal.Decimal
	UnitPrice     decimal.Decimal
	DiscountRate  decimal.Decimal
	Guid          string
}

// InvoiceRow is the denormalized row stored in UnleashedInvoices.
type InvoiceRow struct {
	InvoiceNumber string
	OrderNumber   string
	InvoiceDate   *time.Time
	InvoiceStatus string
	CustomerCode  string
	CustomerName  string
	Total         decimal.Decimal
	ProductCode   string
	OrderQuantity decimal.Decimal
	UnitPrice     decimal.Decimal
	DiscountRate  decimal.Decimal
	Guid          string
}

// LineGuid returns the dedup key of the row.
func (r InvoiceRow) LineGuid() string { return r.Guid }

// Rows flattens the header into one row per invoice line.
func (inv *Invoice) Rows() ([]InvoiceRow, error) {
	if inv.Customer == nil {
		return nil, fmt.Errorf("%w: invoice %s has no customer", ErrMalformedRecord, inv.InvoiceNumber)
	}

	rows := make([]InvoiceRow, 0, len(inv.InvoiceLines))
	for i, line := range inv.InvoiceLines {
		if line.Guid == "" {
			return nil, fmt.Errorf("%w: invoice %s line %d has no guid", ErrMalformedRecord, inv.InvoiceNumber, i)
		}
		if line.Product == nil {
			return nil, fmt.Errorf("%w: invoice %s line %s has no product", ErrMalformedRecord, inv.InvoiceNumber, line.Guid)
		}
		rows = append(rows, InvoiceRow{
			InvoiceNumber: inv.InvoiceNumber,
			OrderNumber:   inv.OrderNumber,
			InvoiceDate:   inv.InvoiceDate,
			InvoiceStatus: inv.InvoiceStatus,
			CustomerCode:  inv.Customer.CustomerCode,
			CustomerName:  inv.Customer.CustomerName,
			Total:         inv.Total,
			ProductCode:   line.Product.ProductCode,
			OrderQuantity: line.OrderQuantity,
			UnitPrice:     line.UnitPrice,
			DiscountRate:  line.DiscountRate,
			Guid:          line.Guid,
		})
	}
	return rows, nil
}
