package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driving"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "sync",
		ScenarioInitializer: initializeSyncScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

type syncWorld struct {
	client *mocks.MockSalesClient
	lines  *mocks.MockLineStore
	runLog *mocks.MockRunLog
	last   *domain.SyncResult
}

func initializeSyncScenario(sc *godog.ScenarioContext) {
	w := &syncWorld{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		w.client = mocks.NewMockSalesClient()
		w.lines = mocks.NewMockLineStore()
		w.runLog = mocks.NewMockRunLog()
		w.last = nil
		return ctx, nil
	})

	sc.Step(`^the API page size is (\d+)$`, w.pageSize)
	sc.Step(`^the API has (\d+) credit notes with one line each$`, w.creditNotes)
	sc.Step(`^the API has (\d+) invoices with one line each$`, w.invoices)
	sc.Step(`^the database already holds credit note line "([^"]*)"$`, w.storedCreditNoteLine)
	sc.Step(`^the API returns credit note "([^"]*)" with lines:$`, w.creditNoteWithLines)
	sc.Step(`^the sync runs$`, w.syncRuns)
	sc.Step(`^credit note pages ([\d, ]+) are requested$`, w.creditNotePagesRequested)
	sc.Step(`^(\d+) rows are inserted into (\w+)$`, w.rowsInserted)
	sc.Step(`^the last run inserted (\d+) rows into (\w+)$`, w.rowsInserted)
	sc.Step(`^the run log contains "([^"]*)"$`, w.runLogContains)
	sc.Step(`^the database holds (\d+) invoice rows$`, w.storedInvoiceRows)
}

func (w *syncWorld) pageSize(size int) error {
	w.client.Size = size
	return nil
}

func (w *syncWorld) creditNotes(n int) error {
	notes := make([]domain.CreditNote, n)
	for i := range notes {
		notes[i] = creditNote(fmt.Sprintf("CN-%d", i), fmt.Sprintf("cn-line-%d", i))
	}
	w.client.CreditNotePages = slices.Collect(slices.Chunk(notes, w.client.Size))
	return nil
}

func (w *syncWorld) invoices(n int) error {
	invs := make([]domain.Invoice, n)
	for i := range invs {
		invs[i] = invoice(fmt.Sprintf("SI-%d", i), fmt.Sprintf("si-line-%d", i))
	}
	w.client.InvoicePages = slices.Collect(slices.Chunk(invs, w.client.Size))
	return nil
}

func (w *syncWorld) storedCreditNoteLine(guid string) error {
	w.lines.SeedCreditNotes(domain.CreditNoteRow{Guid: guid})
	return nil
}

func (w *syncWorld) creditNoteWithLines(number string, table *godog.Table) error {
	note := creditNote(number)
	for _, row := range table.Rows[1:] {
		note.CreditLines = append(note.CreditLines, domain.CreditLine{
			Guid:    row.Cells[0].Value,
			Product: &domain.Product{ProductCode: row.Cells[1].Value},
		})
	}
	w.client.CreditNotePages = [][]domain.CreditNote{{note}}
	return nil
}

func (w *syncWorld) syncRuns(ctx context.Context) error {
	nop := zerolog.Nop()
	o := NewSyncOrchestrator(SyncOrchestratorConfig{
		Client: w.client,
		Lines:  w.lines,
		RunLog: w.runLog,
		Logger: &nop,
	})
	result, err := o.Run(ctx, driving.SyncOptions{})
	if err != nil {
		return err
	}
	w.last = result
	return nil
}

func (w *syncWorld) creditNotePagesRequested(list string) error {
	var want []int
	for _, part := range strings.Split(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return err
		}
		want = append(want, n)
	}
	if got := w.client.Calls(domain.ResourceCreditNotes); !slices.Equal(got, want) {
		return fmt.Errorf("requested pages %v, want %v", got, want)
	}
	return nil
}

func (w *syncWorld) rowsInserted(n int, table string) error {
	for _, res := range domain.Resources() {
		if res.Table() != table {
			continue
		}
		if got := w.last.Inserted(res); got != n {
			return fmt.Errorf("inserted %d rows into %s, want %d", got, table, n)
		}
		return nil
	}
	return fmt.Errorf("unknown table %s", table)
}

func (w *syncWorld) runLogContains(line string) error {
	if !slices.Contains(w.runLog.Lines(), line) {
		return fmt.Errorf("run log %q does not contain %q", w.runLog.Lines(), line)
	}
	return nil
}

func (w *syncWorld) storedInvoiceRows(n int) error {
	if got := len(w.lines.InvoiceRows()); got != n {
		return fmt.Errorf("database holds %d invoice rows, want %d", got, n)
	}
	return nil
}
