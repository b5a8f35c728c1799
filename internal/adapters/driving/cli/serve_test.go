package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/unleashed-sync/internal/adapters/driven/auth"
	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driving"
)

func TestServeCmd_Flags(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Use)
	assert.NotNil(t, serveCmd.Flags().Lookup("addr"))
	assert.NotNil(t, serveCmd.Flags().Lookup("interval"))
}

func TestServeCmd_RunsUntilCancelled(t *testing.T) {
	t.Setenv("DRY_RUN", "true")
	svc := &mockService{runCh: make(chan driving.SyncOptions, 4)}
	buf, factory, gotCfg := prepareCLI(t, svc, "serve", "--addr", "127.0.0.1:0", "--interval", "1h")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- Execute(ctx, factory) }()

	select {
	case opts := <-svc.runCh:
		assert.True(t, opts.DryRun)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not run on start")
	}
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}

	assert.True(t, svc.closed)
	assert.Equal(t, time.Hour, (*gotCfg).Serve.Interval)
	assert.Contains(t, buf.String(), "Serving on 127.0.0.1:0, syncing every 1h0m0s")
}

func TestServeCmd_InvalidInterval(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "0s")
	svc := &mockService{}

	_, gotCfg, err := runCLI(t, svc, "serve")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "SYNC_INTERVAL")
	assert.Nil(t, gotCfg)
}

func TestServeCmd_NotConfigured(t *testing.T) {
	prepareCLI(t, &mockService{}, "serve")

	err := Execute(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync service not configured")
}

func TestTokenCmd_Flags(t *testing.T) {
	assert.Equal(t, "token", tokenCmd.Use)

	subject := tokenCmd.Flags().Lookup("subject")
	require.NotNil(t, subject)
	assert.Equal(t, "operator", subject.DefValue)

	ttl := tokenCmd.Flags().Lookup("ttl")
	require.NotNil(t, ttl)
	assert.Equal(t, "24h0m0s", ttl.DefValue)
}

func TestTokenCmd_MintsVerifiableToken(t *testing.T) {
	t.Setenv("SERVE_AUTH_SECRET", "s3cret")

	out, gotCfg, err := runCLI(t, &mockService{}, "token", "--subject", "ops", "--ttl", "1h")

	require.NoError(t, err)
	assert.Nil(t, gotCfg, "token must not open the database")

	claims, err := auth.NewAdapter("s3cret").ParseToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, int64(3600), claims.ExpiresAt-claims.IssuedAt)
}

func TestTokenCmd_NoExpiry(t *testing.T) {
	t.Setenv("SERVE_AUTH_SECRET", "s3cret")

	out, _, err := runCLI(t, &mockService{}, "token", "--ttl", "0")

	require.NoError(t, err)
	claims, err := auth.NewAdapter("s3cret").ParseToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.Zero(t, claims.ExpiresAt)
}

func TestTokenCmd_RequiresSecret(t *testing.T) {
	_, _, err := runCLI(t, &mockService{}, "token")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "SERVE_AUTH_SECRET")
}

func TestTokenCmd_NegativeTTL(t *testing.T) {
	t.Setenv("SERVE_AUTH_SECRET", "s3cret")

	_, _, err := runCLI(t, &mockService{}, "token", "--ttl=-1h")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
