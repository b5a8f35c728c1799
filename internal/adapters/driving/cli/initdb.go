package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/unleashed-sync/internal/config"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the destination tables",
	Long: `Creates UnleashedCreditNotes, UnleashedInvoices and the run history
table if they do not exist. Supported on postgres and sqlite; SQL Server
tables are expected to be provisioned by the DBA.`,
	Args: cobra.NoArgs,
	RunE: runInitDB,
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, _ []string) error {
	svc, cfg, err := openService(cmd, (*config.Config).ValidateDatabase)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.InitDB(cmd.Context()); err != nil {
		return fmt.Errorf("init-db failed: %w", err)
	}

	cmd.Printf("Schema initialised on %s.\n", cfg.DB.Driver)
	return nil
}
