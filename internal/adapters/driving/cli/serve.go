package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/unleashed-sync/internal/adapters/driven/auth"
	httpadapter "github.com/custodia-labs/unleashed-sync/internal/adapters/driving/http"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driven"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driving"
	"github.com/custodia-labs/unleashed-sync/internal/core/services"
)

var (
	serveAddr     string
	serveInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sync on a schedule and expose the HTTP API",
	Long: `Runs a sync immediately and then every SYNC_INTERVAL until interrupted.
The HTTP API reports health, run history and scheduler status, and accepts
on-demand runs. When SERVE_AUTH_SECRET is set the /api/v1 endpoints require
a bearer token minted with the token command.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "override SERVE_ADDR")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "override SYNC_INTERVAL")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if newService == nil {
		return errors.New("sync service not configured")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Serve.Addr = serveAddr
	}
	if serveInterval != 0 {
		cfg.Serve.Interval = serveInterval
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	zl := newLogger(cmd, cfg)
	ctx := cmd.Context()

	svc, err := newService(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer svc.Close()

	var tokens driven.TokenAdapter
	if cfg.Serve.AuthSecret != "" {
		tokens = auth.NewAdapter(cfg.Serve.AuthSecret)
	} else {
		zl.Warn().Msg("SERVE_AUTH_SECRET not set, API endpoints are unauthenticated")
	}

	scheduler := services.NewScheduler(services.SchedulerConfig{
		Sync:     svc,
		Options:  driving.SyncOptions{DryRun: cfg.Sync.DryRun},
		Logger:   zl,
		Interval: cfg.Serve.Interval,
	})

	server := httpadapter.NewServer(httpadapter.Config{
		Addr:    cfg.Serve.Addr,
		Version: version,
		Logger:  zl,
	}, svc, scheduler, tokens, svc)

	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer scheduler.Stop()

	cmd.Printf("Serving on %s, syncing every %s\n", cfg.Serve.Addr, cfg.Serve.Interval)
	return server.Start(ctx)
}
