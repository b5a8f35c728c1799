package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/unleashed-sync/internal/config"
	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driving"
	"github.com/custodia-labs/unleashed-sync/internal/logger"
)

var version = "dev"

// Service is the importer as seen by the commands.
type Service interface {
	driving.SyncService

	// InitDB creates the destination tables.
	InitDB(ctx context.Context) error

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Close releases database and lock connections.
	Close() error
}

// Factory builds a Service from loaded configuration.
type Factory func(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (Service, error)

var (
	configPath string
	logLevel   string
	newService Factory
)

var (
	syncOnly   []string
	syncDryRun bool
)

var rootCmd = &cobra.Command{
	Use:   "unleashed-sync",
	Short: "Import Unleashed credit notes and invoices",
	Long: `Pages through the credit notes and invoices of an Unleashed account and
inserts every line not already stored into UnleashedCreditNotes and
UnleashedInvoices. Lines are matched on their Guid, so runs are repeatable.

COMMIT_MODE=page (default) commits one transaction per page: a failed insert
rolls back the lines of that page inserted before it. COMMIT_MODE=row commits
each line on its own, so every line before the failure stays stored.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSync,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: .env in the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (trace, debug, info, warn, error)")

	rootCmd.Flags().StringSliceVar(&syncOnly, "only", nil, "sync only these resources: credit-notes, invoices")
	rootCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "fetch and compare without writing anything")
}

// Execute runs the command line. factory is called once per command that
// needs the database.
func Execute(ctx context.Context, factory Factory) error {
	newService = factory
	return rootCmd.ExecuteContext(ctx)
}

func runSync(cmd *cobra.Command, _ []string) error {
	resources := make([]domain.Resource, 0, len(syncOnly))
	for _, s := range syncOnly {
		res, err := domain.ParseResource(s)
		if err != nil {
			return err
		}
		resources = append(resources, res)
	}

	svc, cfg, err := openService(cmd, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer svc.Close()

	dryRun := syncDryRun || cfg.Sync.DryRun
	if dryRun {
		cmd.Println("Dry run: nothing will be written.")
	}

	result, err := svc.Run(cmd.Context(), driving.SyncOptions{
		Resources: resources,
		DryRun:    dryRun,
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	for _, res := range domain.Resources() {
		stats, ok := result.Stats[res]
		if !ok {
			continue
		}
		verb := "inserted"
		if dryRun {
			verb = "new"
		}
		cmd.Printf("%-12s %d %s, %d already stored, %d pages\n", res, stats.Inserted, verb, stats.Skipped, stats.Pages)
	}
	cmd.Printf("Completed in %s\n", result.Duration.Round(time.Millisecond))

	return nil
}

// openService loads configuration, checks it with validate and builds the
// service. The caller closes the service.
func openService(cmd *cobra.Command, validate func(*config.Config) error) (Service, *config.Config, error) {
	if newService == nil {
		return nil, nil, errors.New("sync service not configured")
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	svc, err := newService(cmd.Context(), cfg, newLogger(cmd, cfg))
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// newLogger writes to stderr so stdout carries only command output.
func newLogger(cmd *cobra.Command, cfg *config.Config) *zerolog.Logger {
	return logger.New(logger.Config{
		Env:    cfg.App.Env,
		Level:  cfg.Log.Level,
		Output: cmd.ErrOrStderr(),
	})
}
