package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	redisadapter "github.com/custodia-labs/unleashed-sync/internal/adapters/driven/redis"
	"github.com/custodia-labs/unleashed-sync/internal/adapters/driven/runlog"
	"github.com/custodia-labs/unleashed-sync/internal/adapters/driven/sqlstore"
	"github.com/custodia-labs/unleashed-sync/internal/adapters/driven/unleashed"
	"github.com/custodia-labs/unleashed-sync/internal/config"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driven"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driving"
	"github.com/custodia-labs/unleashed-sync/internal/core/services"
)

// Lock backend names reported by check.
const (
	LockBackendNone     = "none"
	LockBackendRedis    = "redis"
	LockBackendAdvisory = "postgres-advisory"
)

// App holds the wired importer and the resources it owns.
type App struct {
	driving.SyncService

	DB          *sqlstore.DB
	LockBackend string
	RunLogPath  string

	closers []io.Closer
}

// New connects to the database and the optional lock backend and wires the
// sync orchestrator. Close releases everything New opened.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (_ *App, err error) {
	a := &App{LockBackend: LockBackendNone}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	// ===== Database =====
	dbConfig := sqlstore.DefaultConfig(cfg.DB.Driver, cfg.DB.ConnectionString())
	if cfg.DB.MaxOpenConns > 0 {
		dbConfig.MaxOpenConns = cfg.DB.MaxOpenConns
	}
	db, err := sqlstore.Connect(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DB.Driver, err)
	}
	a.DB = db
	a.closers = append(a.closers, db)
	logger.Debug().Str("driver", db.Driver()).Msg("database connected")

	// ===== Lock (Redis if configured, otherwise PostgreSQL advisory locks) =====
	var lock driven.DistributedLock
	switch {
	case cfg.Redis.URL != "":
		client, err := redisadapter.NewClient(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		lock = redisadapter.NewLock(client)
		a.LockBackend = LockBackendRedis
	case db.Driver() == sqlstore.DriverPostgres:
		lock = sqlstore.NewAdvisoryLock(db)
		a.LockBackend = LockBackendAdvisory
	}
	logger.Debug().Str("lock", a.LockBackend).Msg("lock backend selected")

	// ===== Run log =====
	runLog, err := runlog.New(cfg.Sync.RunLogPath)
	if err != nil {
		return nil, err
	}
	a.RunLogPath = runLog.Path()

	// ===== Stores =====
	var runs driven.SyncRunStore
	if cfg.Sync.RunHistory {
		runs = sqlstore.NewSyncRunStore(db)
	}

	client := unleashed.NewClient(unleashed.Config{
		BaseURL:    cfg.Unleashed.BaseURL,
		APIID:      cfg.Unleashed.APIID,
		APIKey:     cfg.Unleashed.APIKey,
		ClientType: cfg.Unleashed.ClientType,
		PageSize:   cfg.Unleashed.PageSize,
		RateLimit:  cfg.Unleashed.RateLimit,
		Timeout:    cfg.Unleashed.Timeout,
	})

	a.SyncService = services.NewSyncOrchestrator(services.SyncOrchestratorConfig{
		Client:      client,
		Lines:       sqlstore.NewLineStore(db),
		Runs:        runs,
		RunLog:      runLog,
		Lock:        lock,
		LockBackend: a.LockBackend,
		CommitMode:  cfg.Sync.CommitMode,
		Logger:      logger,
	})

	return a, nil
}

// InitDB creates the tables on drivers with a bundled schema.
func (a *App) InitDB(ctx context.Context) error {
	return a.DB.InitSchema(ctx)
}

// Ping checks the database connection.
func (a *App) Ping(ctx context.Context) error {
	return a.DB.Ping(ctx)
}

// Close releases the database and lock connections in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
