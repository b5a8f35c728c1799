package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driven"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.SyncService = (*SyncOrchestrator)(nil)

// LockName is the name of the single-writer lock held for the duration of a run.
const LockName = "unleashed-sync"

// SyncOrchestrator runs the import of credit notes and invoices.
// A run follows a fixed sequence:
//  1. Acquire the single-writer lock (when configured)
//  2. Write the start line to the run log
//  3. Load the identifier cache for every requested resource
//  4. For each resource, page through the API and insert unseen lines
//  5. Write the elapsed time to the run log
type SyncOrchestrator struct {
	client      driven.SalesClient
	lines       driven.LineStore
	runs        driven.SyncRunStore
	runLog      driven.RunLog
	lock        driven.DistributedLock
	lockBackend string
	lockTTL     time.Duration
	commitMode  domain.CommitMode
	logger      *zerolog.Logger
	now         func() time.Time
}

// SyncOrchestratorConfig holds dependencies for SyncOrchestrator.
type SyncOrchestratorConfig struct {
	Client      driven.SalesClient
	Lines       driven.LineStore
	Runs        driven.SyncRunStore    // Optional: run history
	RunLog      driven.RunLog
	Lock        driven.DistributedLock // Optional: single-writer guard
	LockBackend string                 // Name of the lock backend, for reporting
	LockTTL     time.Duration          // Default: 1h
	CommitMode  domain.CommitMode      // Default: page
	Logger      *zerolog.Logger
	Now         func() time.Time
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(cfg SyncOrchestratorConfig) *SyncOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		l := log.Logger
		logger = &l
	}

	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = time.Hour
	}

	commitMode := cfg.CommitMode
	if commitMode == "" {
		commitMode = domain.CommitPerPage
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	lockBackend := cfg.LockBackend
	if lockBackend == "" {
		lockBackend = "none"
	}

	return &SyncOrchestrator{
		client:      cfg.Client,
		lines:       cfg.Lines,
		runs:        cfg.Runs,
		runLog:      cfg.RunLog,
		lock:        cfg.Lock,
		lockBackend: lockBackend,
		lockTTL:     lockTTL,
		commitMode:  commitMode,
		logger:      logger,
		now:         now,
	}
}

// Run performs one import. Any fetch, decode or insert failure aborts the run;
// rows committed before the failure stay committed.
func (o *SyncOrchestrator) Run(ctx context.Context, opts driving.SyncOptions) (*domain.SyncResult, error) {
	resources, err := resolveResources(opts.Resources)
	if err != nil {
		return nil, err
	}

	if o.lock != nil {
		acquired, err := o.lock.Acquire(ctx, LockName, o.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire sync lock: %w", err)
		}
		if !acquired {
			return nil, domain.ErrSyncInProgress
		}
		defer func() {
			if err := o.lock.Release(context.WithoutCancel(ctx), LockName); err != nil {
				o.logger.Warn().Err(err).Msg("failed to release sync lock")
			}
		}()
	}

	startedAt := o.now()
	run := &domain.SyncRun{
		ID:        uuid.NewString(),
		Status:    domain.SyncStatusRunning,
		StartedAt: startedAt,
	}
	logger := o.logger.With().Str("run_id", run.ID).Bool("dry_run", opts.DryRun).Logger()

	if !opts.DryRun {
		if err := o.runLog.Start(startedAt); err != nil {
			return nil, fmt.Errorf("write run log: %w", err)
		}
		o.saveRun(ctx, &logger, run)
	}
	logger.Info().Int("resources", len(resources)).Str("commit_mode", string(o.commitMode)).Msg("sync started")

	known := make(map[domain.Resource]*domain.GuidSet, len(resources))
	for _, res := range resources {
		set, err := o.lines.LoadGuids(ctx, res)
		if err != nil {
			return nil, o.fail(ctx, &logger, run, opts.DryRun, fmt.Errorf("load identifiers for %s: %w", res, err))
		}
		known[res] = set
		logger.Debug().Str("resource", string(res)).Int("identifiers", set.Len()).Msg("loaded identifiers")
	}

	result := &domain.SyncResult{
		RunID:  run.ID,
		DryRun: opts.DryRun,
		Stats:  make(map[domain.Resource]domain.ResourceStats, len(resources)),
	}

	for _, res := range resources {
		o.extendLock(ctx, &logger)
		stats, err := o.importResource(ctx, &logger, res, known[res], opts.DryRun)
		result.Stats[res] = stats
		o.record(run, res, stats)
		if err != nil {
			return nil, o.fail(ctx, &logger, run, opts.DryRun, fmt.Errorf("import %s: %w", res, err))
		}

		logger.Info().
			Str("resource", string(res)).
			Int("pages", stats.Pages).
			Int("headers", stats.Headers).
			Int("lines", stats.Lines).
			Int("skipped", stats.Skipped).
			Int("inserted", stats.Inserted).
			Msg("rows inserted")

		if !opts.DryRun {
			if err := o.runLog.Log(fmt.Sprintf("Inserted %d rows into %s", stats.Inserted, res.Table())); err != nil {
				return nil, o.fail(ctx, &logger, run, opts.DryRun, fmt.Errorf("write run log: %w", err))
			}
		}
	}

	completedAt := o.now()
	result.Duration = completedAt.Sub(startedAt)

	if !opts.DryRun {
		if err := o.runLog.Stop(result.Duration); err != nil {
			return nil, o.fail(ctx, &logger, run, opts.DryRun, fmt.Errorf("write run log: %w", err))
		}
		run.Status = domain.SyncStatusCompleted
		run.CompletedAt = &completedAt
		o.saveRun(ctx, &logger, run)
	}

	logger.Info().
		Float64("duration_seconds", result.Duration.Seconds()).
		Int("credit_notes_inserted", result.Inserted(domain.ResourceCreditNotes)).
		Int("invoices_inserted", result.Inserted(domain.ResourceInvoices)).
		Msg("sync completed")

	return result, nil
}

// Check verifies that the database and the API are reachable.
func (o *SyncOrchestrator) Check(ctx context.Context) (*driving.CheckReport, error) {
	version, err := o.lines.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("query database version: %w", err)
	}

	report := &driving.CheckReport{
		DatabaseVersion: version,
		LockBackend:     o.lockBackend,
	}

	if err := o.client.Ping(ctx); err != nil {
		return report, fmt.Errorf("ping API: %w", err)
	}
	report.APIReachable = true

	if o.lock != nil {
		if err := o.lock.Ping(ctx); err != nil {
			return report, fmt.Errorf("ping lock backend: %w", err)
		}
	}

	return report, nil
}

// History lists recent runs when run history is enabled.
func (o *SyncOrchestrator) History(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	if o.runs == nil {
		return nil, fmt.Errorf("%w: run history is disabled", domain.ErrNotFound)
	}
	return o.runs.List(ctx, limit)
}

func (o *SyncOrchestrator) importResource(
	ctx context.Context,
	logger *zerolog.Logger,
	res domain.Resource,
	known *domain.GuidSet,
	dryRun bool,
) (domain.ResourceStats, error) {
	size := o.client.PageSize()

	switch res {
	case domain.ResourceCreditNotes:
		return importPages(ctx, logger, lineImport[domain.CreditNote, domain.CreditNoteRow]{
			pages:   Pages(ctx, o.client.CreditNotes, size),
			flatten: (*domain.CreditNote).Rows,
			insert:  o.lines.InsertCreditNoteRows,
		}, known, o.commitMode, dryRun)
	case domain.ResourceInvoices:
		return importPages(ctx, logger, lineImport[domain.Invoice, domain.InvoiceRow]{
			pages:   Pages(ctx, o.client.Invoices, size),
			flatten: (*domain.Invoice).Rows,
			insert:  o.lines.InsertInvoiceRows,
		}, known, o.commitMode, dryRun)
	default:
		return domain.ResourceStats{}, fmt.Errorf("%w: unknown resource %q", domain.ErrInvalidInput, res)
	}
}

// lineImport binds a header type to its flattening and insert functions.
type lineImport[H any, R domain.Row] struct {
	pages   iter.Seq2[Page[H], error]
	flatten func(*H) ([]R, error)
	insert  func(context.Context, []R) error
}

// importPages consumes pages as they arrive, drops lines whose Guid is known
// and inserts the rest. Inserted Guids are added to known so a line repeated
// later in the same run is not inserted twice.
func importPages[H any, R domain.Row](
	ctx context.Context,
	logger *zerolog.Logger,
	imp lineImport[H, R],
	known *domain.GuidSet,
	mode domain.CommitMode,
	dryRun bool,
) (domain.ResourceStats, error) {
	var stats domain.ResourceStats

	for page, err := range imp.pages {
		if err != nil {
			return stats, err
		}
		stats.Pages++
		stats.Headers += len(page.Items)

		var fresh []R
		for i := range page.Items {
			rows, err := imp.flatten(&page.Items[i])
			if err != nil {
				return stats, fmt.Errorf("page %d: %w", page.Number, err)
			}
			stats.Lines += len(rows)
			for _, row := range rows {
				if known.Contains(row.LineGuid()) {
					stats.Skipped++
					continue
				}
				known.Add(row.LineGuid())
				fresh = append(fresh, row)
			}
		}

		logger.Debug().Int("page", page.Number).Int("headers", len(page.Items)).Int("new_lines", len(fresh)).Msg("page fetched")

		if dryRun {
			stats.Inserted += len(fresh)
			continue
		}

		n, err := insertRows(ctx, mode, fresh, imp.insert)
		stats.Inserted += n
		if err != nil {
			return stats, fmt.Errorf("page %d: %w", page.Number, err)
		}
	}

	return stats, nil
}

// insertRows writes rows in one transaction (page mode) or one transaction per
// row (row mode). It returns how many rows were committed.
func insertRows[R domain.Row](ctx context.Context, mode domain.CommitMode, rows []R, insert func(context.Context, []R) error) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	if mode == domain.CommitPerRow {
		for i := range rows {
			if err := insert(ctx, rows[i:i+1]); err != nil {
				return i, fmt.Errorf("insert line %s: %w", rows[i].LineGuid(), err)
			}
		}
		return len(rows), nil
	}

	if err := insert(ctx, rows); err != nil {
		return 0, fmt.Errorf("insert %d lines: %w", len(rows), err)
	}
	return len(rows), nil
}

// extendLock refreshes the lock TTL before each resource.
func (o *SyncOrchestrator) extendLock(ctx context.Context, logger *zerolog.Logger) {
	if o.lock == nil {
		return
	}
	if err := o.lock.Extend(ctx, LockName, o.lockTTL); err != nil {
		logger.Warn().Err(err).Msg("failed to extend sync lock")
	}
}

func (o *SyncOrchestrator) record(run *domain.SyncRun, res domain.Resource, stats domain.ResourceStats) {
	switch res {
	case domain.ResourceCreditNotes:
		run.CreditNotesInserted = stats.Inserted
	case domain.ResourceInvoices:
		run.InvoicesInserted = stats.Inserted
	}
}

// fail marks the run failed and returns err unchanged.
func (o *SyncOrchestrator) fail(ctx context.Context, logger *zerolog.Logger, run *domain.SyncRun, dryRun bool, err error) error {
	logger.Error().Err(err).Msg("sync failed")
	if dryRun {
		return err
	}

	completedAt := o.now()
	run.Status = domain.SyncStatusFailed
	run.CompletedAt = &completedAt
	run.Error = err.Error()
	o.saveRun(context.WithoutCancel(ctx), logger, run)
	return err
}

func (o *SyncOrchestrator) saveRun(ctx context.Context, logger *zerolog.Logger, run *domain.SyncRun) {
	if o.runs == nil {
		return
	}
	if err := o.runs.Save(ctx, run); err != nil {
		logger.Warn().Err(err).Str("status", string(run.Status)).Msg("failed to save run history")
	}
}

func resolveResources(requested []domain.Resource) ([]domain.Resource, error) {
	if len(requested) == 0 {
		return domain.Resources(), nil
	}

	wanted := make(map[domain.Resource]bool, len(requested))
	for _, res := range requested {
		if !res.Valid() {
			return nil, fmt.Errorf("%w: unknown resource %q", domain.ErrInvalidInput, res)
		}
		wanted[res] = true
	}

	// Keep the fixed credit notes → invoices order regardless of how they were requested.
	var resources []domain.Resource
	for _, res := range domain.Resources() {
		if wanted[res] {
			resources = append(resources, res)
		}
	}
	if len(resources) == 0 {
		return nil, errors.New("no resources selected")
	}
	return resources, nil
}
