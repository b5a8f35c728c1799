package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/unleashed-sync/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify database and API connectivity",
	Long: `Queries the database version, requests a single record from the
Unleashed API and pings the lock backend. Nothing is written.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	svc, _, err := openService(cmd, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Check(cmd.Context())
	if report != nil {
		api := "unreachable"
		if report.APIReachable {
			api = "ok"
		}
		cmd.Printf("Database: %s\n", report.DatabaseVersion)
		cmd.Printf("API:      %s\n", api)
		cmd.Printf("Lock:     %s\n", report.LockBackend)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	return nil
}
