package main

// @title           Unleashed Sync API
// @version         1.0
// @description     Health, run history and on-demand triggers for the Unleashed credit note and invoice importer.

// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token minted by "unleashed-sync token". Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/unleashed-sync/internal/adapters/driving/cli"
	"github.com/custodia-labs/unleashed-sync/internal/app"
	"github.com/custodia-labs/unleashed-sync/internal/config"
)

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, func(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (cli.Service, error) {
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return a, nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
