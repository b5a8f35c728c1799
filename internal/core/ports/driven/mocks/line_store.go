package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// MockLineStore is an in-memory LineStore that enforces Guid uniqueness like
// the real tables do.
type MockLineStore struct {
	mu          sync.RWMutex
	creditNotes []domain.CreditNoteRow
	invoices    []domain.InvoiceRow

	// InsertErr, when set, is returned by the call numbered FailOnCall (1-based).
	// A FailOnCall of 0 fails every call.
	InsertErr  error
	FailOnCall int
	LoadErr    error
	VersionStr string

	insertCalls int
}

// NewMockLineStore creates a new MockLineStore
func NewMockLineStore() *MockLineStore {
	return &MockLineStore{VersionStr: "mock 1.0"}
}

func (m *MockLineStore) LoadGuids(ctx context.Context, resource domain.Resource) (*domain.GuidSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	set := domain.NewGuidSet()
	switch resource {
	case domain.ResourceCreditNotes:
		for _, r := range m.creditNotes {
			set.Add(r.Guid)
		}
	case domain.ResourceInvoices:
		for _, r := range m.invoices {
			set.Add(r.Guid)
		}
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, resource)
	}
	return set, nil
}

func (m *MockLineStore) InsertCreditNoteRows(ctx context.Context, rows []domain.CreditNoteRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failCall(); err != nil {
		return err
	}
	existing := domain.NewGuidSet()
	for _, r := range m.creditNotes {
		existing.Add(r.Guid)
	}
	for _, r := range rows {
		if existing.Contains(r.Guid) {
			return fmt.Errorf("duplicate key %s in UnleashedCreditNotes", r.Guid)
		}
		existing.Add(r.Guid)
	}
	m.creditNotes = append(m.creditNotes, rows...)
	return nil
}

func (m *MockLineStore) InsertInvoiceRows(ctx context.Context, rows []domain.InvoiceRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failCall(); err != nil {
		return err
	}
	existing := domain.NewGuidSet()
	for _, r := range m.invoices {
		existing.Add(r.Guid)
	}
	for _, r := range rows {
		if existing.Contains(r.Guid) {
			return fmt.Errorf("duplicate key %s in UnleashedInvoices", r.Guid)
		}
		existing.Add(r.Guid)
	}
	m.invoices = append(m.invoices, rows...)
	return nil
}

func (m *MockLineStore) Version(ctx context.Context) (string, error) {
	return m.VersionStr, nil
}

// failCall must be called with m.mu held.
func (m *MockLineStore) failCall() error {
	m.insertCalls++
	if m.InsertErr == nil {
		return nil
	}
	if m.FailOnCall == 0 || m.FailOnCall == m.insertCalls {
		return m.InsertErr
	}
	return nil
}

// Helper methods for testing

// CreditNoteRows returns a copy of stored credit-note rows.
func (m *MockLineStore) CreditNoteRows() []domain.CreditNoteRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.CreditNoteRow(nil), m.creditNotes...)
}

// InvoiceRows returns a copy of stored invoice rows.
func (m *MockLineStore) InvoiceRows() []domain.InvoiceRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.InvoiceRow(nil), m.invoices...)
}

// InsertCalls returns how many insert transactions were attempted.
func (m *MockLineStore) InsertCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.insertCalls
}

// SeedCreditNotes stores rows as if imported by an earlier run.
func (m *MockLineStore) SeedCreditNotes(rows ...domain.CreditNoteRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creditNotes = append(m.creditNotes, rows...)
}

// SeedInvoices stores rows as if imported by an earlier run.
func (m *MockLineStore) SeedInvoices(rows ...domain.InvoiceRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices = append(m.invoices, rows...)
}
