package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.SchedulerService = (*Scheduler)(nil)

// Scheduler runs the import on a fixed interval and on demand.
// Within one process at most one run is active; across processes the
// sync lock decides who proceeds.
type Scheduler struct {
	sync     driving.SyncService
	opts     driving.SyncOptions
	logger   *zerolog.Logger
	interval time.Duration
	now      func() time.Time

	// Internal state
	mu      sync.RWMutex
	running bool
	stopped bool // set once by Stop; no run starts afterwards
	busy    bool
	baseCtx context.Context
	stopCh  chan struct{}
	doneCh  chan struct{}
	runs    sync.WaitGroup
	last    driving.SchedulerStatus
	nextAt  time.Time
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	Sync     driving.SyncService
	Options  driving.SyncOptions // Applied to scheduled runs
	Logger   *zerolog.Logger
	Interval time.Duration // How often to run (default: 1h)
	Now      func() time.Time
}

// NewScheduler creates a new scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		l := log.Logger
		logger = &l
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = time.Hour
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Scheduler{
		sync:     cfg.Sync,
		opts:     cfg.Options,
		logger:   logger,
		interval: interval,
		now:      now,
	}
}

// Start begins the scheduler loop. The first run starts immediately.
// It runs until Stop is called or ctx is cancelled. A stopped scheduler
// cannot be restarted.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return domain.ErrSchedulerStopped
	}
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.baseCtx = ctx
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info().Dur("interval", s.interval).Msg("scheduler starting")

	go s.run(ctx)

	return nil
}

// Stop gracefully stops the scheduler and waits for the loop and any
// triggered run to end. Later calls to Start and Trigger fail with
// domain.ErrSchedulerStopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	first := !s.stopped
	s.stopped = true
	running := s.running
	if running && first {
		close(s.stopCh)
	}
	doneCh := s.doneCh
	s.mu.Unlock()

	if running {
		<-doneCh
	}
	// No Add can follow: Trigger adds under mu and refuses once stopped is set.
	s.runs.Wait()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if running && first {
		s.logger.Info().Msg("scheduler stopped")
	}
}

// Trigger starts a run in the background with opts. It fails with
// domain.ErrSyncInProgress while a run is active and with
// domain.ErrSchedulerStopped once Stop has been called.
func (s *Scheduler) Trigger(ctx context.Context, opts driving.SyncOptions) error {
	s.mu.Lock()
	if s.stopped || (s.baseCtx != nil && s.baseCtx.Err() != nil) {
		s.mu.Unlock()
		return domain.ErrSchedulerStopped
	}
	if s.busy {
		s.mu.Unlock()
		return domain.ErrSyncInProgress
	}
	s.busy = true
	s.runs.Add(1)
	base := s.baseCtx
	s.mu.Unlock()

	if base == nil {
		// The request context ends with the response; the run must outlive it.
		base = context.WithoutCancel(ctx)
	}

	go func() {
		defer s.runs.Done()
		s.execute(base, opts)
	}()
	return nil
}

// Status reports the state of the schedule and the last run.
func (s *Scheduler) Status() driving.SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.last
	st.Running = s.running
	st.Busy = s.busy
	st.Interval = s.interval
	if s.running && !s.nextAt.IsZero() {
		next := s.nextAt
		st.NextRunAt = &next
	}
	return st
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler context cancelled")
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	s.nextAt = s.now().Add(s.interval)
	s.mu.Unlock()

	if !s.begin() {
		s.logger.Debug().Msg("previous run still active, skipping cycle")
		return
	}
	s.execute(ctx, s.opts)
}

// begin marks the scheduler busy for a scheduled cycle, reporting false if
// it already was or the scheduler is stopping.
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy || s.stopped {
		return false
	}
	s.busy = true
	return true
}

// execute performs one run; the caller must have marked the scheduler busy.
func (s *Scheduler) execute(ctx context.Context, opts driving.SyncOptions) {
	startedAt := s.now()
	result, err := s.sync.Run(ctx, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.last.LastRunAt = &startedAt
	s.last.LastRunID = ""
	s.last.LastError = ""
	if result != nil {
		s.last.LastRunID = result.RunID
	}

	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		s.last.LastError = err.Error()
		s.logger.Info().Msg("another process is syncing, skipping cycle")
	case err != nil:
		s.last.LastError = err.Error()
		s.logger.Error().Err(err).Msg("scheduled sync failed")
	default:
		s.logger.Info().
			Str("run_id", s.last.LastRunID).
			Int("credit_notes", result.Inserted(domain.ResourceCreditNotes)).
			Int("invoices", result.Inserted(domain.ResourceInvoices)).
			Msg("scheduled sync completed")
	}
}
