package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// MockSalesClient is a mock implementation of SalesClient for testing.
// Pages are served from in-memory slices; page N returns the (N-1)th slice
// and pages past the end return an empty page.
type MockSalesClient struct {
	mu sync.Mutex

	CreditNotePages [][]domain.CreditNote
	InvoicePages    [][]domain.Invoice
	Size            int

	// Optional error injection keyed by resource and page
	Errors  map[domain.Resource]map[int]error
	PingErr error

	calls map[domain.Resource][]int
}

// NewMockSalesClient creates a new MockSalesClient with the default page size.
func NewMockSalesClient() *MockSalesClient {
	return &MockSalesClient{
		Size:   domain.DefaultPageSize,
		Errors: make(map[domain.Resource]map[int]error),
		calls:  make(map[domain.Resource][]int),
	}
}

func (m *MockSalesClient) CreditNotes(ctx context.Context, page int) ([]domain.CreditNote, error) {
	if err := m.record(domain.ResourceCreditNotes, page); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if page-1 < len(m.CreditNotePages) {
		return m.CreditNotePages[page-1], nil
	}
	return nil, nil
}

func (m *MockSalesClient) Invoices(ctx context.Context, page int) ([]domain.Invoice, error) {
	if err := m.record(domain.ResourceInvoices, page); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if page-1 < len(m.InvoicePages) {
		return m.InvoicePages[page-1], nil
	}
	return nil, nil
}

func (m *MockSalesClient) PageSize() int {
	return m.Size
}

func (m *MockSalesClient) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockSalesClient) record(res domain.Resource, page int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page < 1 {
		return fmt.Errorf("mock: page %d requested for %s", page, res)
	}
	m.calls[res] = append(m.calls[res], page)
	if errs, ok := m.Errors[res]; ok {
		if err, ok := errs[page]; ok {
			return err
		}
	}
	return nil
}

// Helper methods for testing

// FailPage makes the given page of res return err.
func (m *MockSalesClient) FailPage(res domain.Resource, page int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Errors[res] == nil {
		m.Errors[res] = make(map[int]error)
	}
	m.Errors[res][page] = err
}

// Calls returns the page numbers requested for res, in order.
func (m *MockSalesClient) Calls(res domain.Resource) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls[res]...)
}

// Reset clears recorded calls.
func (m *MockSalesClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[domain.Resource][]int)
}
