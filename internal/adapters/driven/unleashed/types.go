package unleashed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// Date decodes the API's "/Date(1589500800000)/" timestamps.
// A trailing zone offset such as "/Date(1589500800000+1200)/" is ignored
// because the millisecond value is already UTC.
type Date struct {
	Time  time.Time
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	*d = Date{}
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if s == "" {
		return nil
	}

	inner, ok := strings.CutPrefix(s, "/Date(")
	if ok {
		inner, ok = strings.CutSuffix(inner, ")/")
	}
	if !ok {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("decode date %q: %w", s, err)
		}
		d.Time, d.Valid = t.UTC(), true
		return nil
	}

	if i := strings.IndexAny(inner[min(1, len(inner)):], "+-"); i >= 0 {
		inner = inner[:i+1]
	}
	ms, err := strconv.ParseInt(inner, 10, 64)
	if err != nil {
		return fmt.Errorf("decode date %q: %w", s, err)
	}
	d.Time, d.Valid = time.UnixMilli(ms).UTC(), true
	return nil
}

// Ptr returns the time or nil when the date was absent.
func (d Date) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

// listResponse is the envelope of every paged endpoint. The Pagination
// block is ignored: a short page ends the walk.
// Items is a pointer so a missing field can be told apart from an empty page.
type listResponse[T any] struct {
	Items *[]T `json:"Items"`
}

type customerDTO struct {
	CustomerCode string `json:"CustomerCode"`
	CustomerName string `json:"CustomerName"`
}

type productDTO struct {
	ProductCode string `json:"ProductCode"`
}

type creditNoteDTO struct {
	CreditNoteNumber string          `json:"CreditNoteNumber"`
	InvoiceNumber    string          `json:"InvoiceNumber"`
	Status           string          `json:"Status"`
	Customer         *customerDTO    `json:"Customer"`
	Total            decimal.Decimal `json:"Total"`
	CreditDate       Date            `json:"CreditDate"`
	CreditLines      []creditLineDTO `json:"CreditLines"`
}

type creditLineDTO struct {
	Product        *productDTO     `json:"Product"`
	CreditQuantity decimal.Decimal `json:"CreditQuantity"`
	Guid           string          `json:"Guid"`
}

type invoiceDTO struct {
	InvoiceNumber string           `json:"InvoiceNumber"`
	OrderNumber   string           `json:"OrderNumber"`
	InvoiceDate   Date             `json:"InvoiceDate"`
	InvoiceStatus string           `json:"InvoiceStatus"`
	Customer      *customerDTO     `json:"Customer"`
	Total         decimal.Decimal  `json:"Total"`
	InvoiceLines  []invoiceLineDTO `json:"InvoiceLines"`
}

type invoiceLineDTO struct {
	Product       *productDTO     `json:"Product"`
	OrderQuantity decimal.Decimal `json:"OrderQuantity"`
	UnitPrice     decimal.Decimal `json:"UnitPrice"`
	DiscountRate  decimal.Decimal `json:"DiscountRate"`
	Guid          string          `json:"Guid"`
}

func (c *customerDTO) toDomain() *domain.Customer {
	if c == nil {
		return nil
	}
	return &domain.Customer{CustomerCode: c.CustomerCode, CustomerName: c.CustomerName}
}

func (p *productDTO) toDomain() *domain.Product {
	if p == nil {
		return nil
	}
	return &domain.Product{ProductCode: p.ProductCode}
}

func (dto creditNoteDTO) toDomain() domain.CreditNote {
	note := domain.CreditNote{
		CreditNoteNumber: dto.CreditNoteNumber,
		InvoiceNumber:    dto.InvoiceNumber,
		Status:           dto.Status,
		Customer:         dto.Customer.toDomain(),
		Total:            dto.Total,
		CreditDate:       dto.CreditDate.Ptr(),
		CreditLines:      make([]domain.CreditLine, 0, len(dto.CreditLines)),
	}
	for _, line := range dto.CreditLines {
		note.CreditLines = append(note.CreditLines, domain.CreditLine{
			Product:        line.Product.toDomain(),
			CreditQuantity: line.CreditQuantity,
			Guid:           line.Guid,
		})
	}
	return note
}

func (dto invoiceDTO) toDomain() domain.Invoice {
	inv := domain.Invoice{
		InvoiceNumber: dto.InvoiceNumber,
		OrderNumber:   dto.OrderNumber,
		InvoiceDate:   dto.InvoiceDate.Ptr(),
		InvoiceStatus: dto.InvoiceStatus,
		Customer:      dto.Customer.toDomain(),
		Total:         dto.Total,
		InvoiceLines:  make([]domain.InvoiceLine, 0, len(dto.InvoiceLines)),
	}
	for _, line := range dto.InvoiceLines {
		inv.InvoiceLines = append(inv.InvoiceLines, domain.InvoiceLine{
			Product:       line.Product.toDomain(),
			OrderQuantity: line.OrderQuantity,
			UnitPrice:     line.UnitPrice,
			DiscountRate:  line.DiscountRate,
			Guid:          line.Guid,
		})
	}
	return inv
}
