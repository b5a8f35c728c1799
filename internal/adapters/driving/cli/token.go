package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/unleashed-sync/internal/adapters/driven/auth"
	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the HTTP API",
	Long: `Signs a token with SERVE_AUTH_SECRET and prints it. Send it as
"Authorization: Bearer <token>" to the /api/v1 endpoints of serve.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "operator", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Serve.AuthSecret == "" {
		return fmt.Errorf("%w: SERVE_AUTH_SECRET is required", domain.ErrInvalidInput)
	}
	if tokenTTL < 0 {
		return fmt.Errorf("%w: ttl must not be negative", domain.ErrInvalidInput)
	}

	claims := domain.NewTokenClaims(tokenSubject, time.Now(), tokenTTL)
	token, err := auth.NewAdapter(cfg.Serve.AuthSecret).GenerateToken(claims)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	cmd.Println(token)
	return nil
}
