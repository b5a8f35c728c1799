package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/unleashed-sync/internal/config"
	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driving"
)

// mockService implements Service for testing.
type mockService struct {
	runOpts    *driving.SyncOptions
	result     *domain.SyncResult
	runErr     error
	report     *driving.CheckReport
	checkErr   error
	runs       []*domain.SyncRun
	historyErr error
	limit      int
	initErr    error
	initCalled bool
	pingErr    error
	closed     bool

	runCh chan driving.SyncOptions // when set, Run reports each call on it
}

func (m *mockService) Run(_ context.Context, opts driving.SyncOptions) (*domain.SyncResult, error) {
	if m.runCh != nil {
		m.runCh <- opts
		return &domain.SyncResult{Stats: map[domain.Resource]domain.ResourceStats{}}, nil
	}
	m.runOpts = &opts
	if m.runErr != nil {
		return nil, m.runErr
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.SyncResult{Stats: map[domain.Resource]domain.ResourceStats{}}, nil
}

func (m *mockService) Check(_ context.Context) (*driving.CheckReport, error) {
	return m.report, m.checkErr
}

func (m *mockService) History(_ context.Context, limit int) ([]*domain.SyncRun, error) {
	m.limit = limit
	return m.runs, m.historyErr
}

func (m *mockService) InitDB(_ context.Context) error {
	m.initCalled = true
	return m.initErr
}

func (m *mockService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockService) Close() error {
	m.closed = true
	return nil
}

// runCLI executes the root command against svc with a minimal valid
// environment and returns stdout, the config handed to the factory and the error.
func runCLI(t *testing.T, svc *mockService, args ...string) (string, *config.Config, error) {
	t.Helper()
	buf, factory, gotCfg := prepareCLI(t, svc, args...)
	err := Execute(context.Background(), factory)
	return buf.String(), *gotCfg, err
}

// prepareCLI sets up the environment, output and flag reset for one
// command execution.
func prepareCLI(t *testing.T, svc *mockService, args ...string) (*bytes.Buffer, Factory, **config.Config) {
	t.Helper()
	t.Setenv("UNLEASHED_API_ID", "id")
	t.Setenv("UNLEASHED_API_KEY", "key")
	t.Setenv("DB_NAME", "Sales")

	gotCfg := new(*config.Config)
	factory := func(_ context.Context, cfg *config.Config, _ *zerolog.Logger) (Service, error) {
		*gotCfg = cfg
		return svc, nil
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		syncOnly = nil
		syncDryRun = false
		historyLimit = 20
		serveAddr = ""
		serveInterval = 0
		tokenSubject = "operator"
		tokenTTL = 24 * time.Hour
		configPath = ""
		logLevel = ""
	})

	return buf, factory, gotCfg
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "unleashed-sync", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)
}

func TestRootCmd_HelpDescribesCommitModes(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "COMMIT_MODE=page (default) commits one transaction per page")
	assert.Contains(t, rootCmd.Long, "COMMIT_MODE=row commits\neach line on its own")
}

func TestRootCmd_Flags(t *testing.T) {
	assert.NotNil(t, rootCmd.Flags().Lookup("only"))
	assert.NotNil(t, rootCmd.Flags().Lookup("dry-run"))

	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}

func TestRootCmd_SyncAll(t *testing.T) {
	svc := &mockService{result: &domain.SyncResult{
		Stats: map[domain.Resource]domain.ResourceStats{
			domain.ResourceCreditNotes: {Pages: 1, Lines: 3, Skipped: 1, Inserted: 2},
			domain.ResourceInvoices:    {Pages: 3, Lines: 10, Inserted: 10},
		},
		Duration: 1500 * time.Millisecond,
	}}

	out, _, err := runCLI(t, svc)

	require.NoError(t, err)
	require.NotNil(t, svc.runOpts)
	assert.Empty(t, svc.runOpts.Resources)
	assert.False(t, svc.runOpts.DryRun)
	assert.True(t, svc.closed)
	assert.Contains(t, out, "CreditNotes  2 inserted, 1 already stored, 1 pages")
	assert.Contains(t, out, "Invoices     10 inserted, 0 already stored, 3 pages")
	assert.Contains(t, out, "Completed in 1.5s")
}

func TestRootCmd_Only(t *testing.T) {
	svc := &mockService{}

	_, _, err := runCLI(t, svc, "--only", "invoices,credit-notes")

	require.NoError(t, err)
	require.NotNil(t, svc.runOpts)
	assert.Equal(t, []domain.Resource{domain.ResourceInvoices, domain.ResourceCreditNotes}, svc.runOpts.Resources)
}

func TestRootCmd_OnlyUnknownResource(t *testing.T) {
	svc := &mockService{}

	_, _, err := runCLI(t, svc, "--only", "customers")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, svc.runOpts)
}

func TestRootCmd_DryRunFlag(t *testing.T) {
	svc := &mockService{}

	out, _, err := runCLI(t, svc, "--dry-run")

	require.NoError(t, err)
	assert.True(t, svc.runOpts.DryRun)
	assert.Contains(t, out, "Dry run: nothing will be written.")
}

func TestRootCmd_DryRunFromEnvironment(t *testing.T) {
	t.Setenv("DRY_RUN", "true")
	svc := &mockService{}

	_, _, err := runCLI(t, svc)

	require.NoError(t, err)
	assert.True(t, svc.runOpts.DryRun)
}

func TestRootCmd_SyncError(t *testing.T) {
	svc := &mockService{runErr: domain.ErrSyncInProgress}

	_, _, err := runCLI(t, svc)

	require.ErrorIs(t, err, domain.ErrSyncInProgress)
	assert.Contains(t, err.Error(), "sync failed")
	assert.True(t, svc.closed)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	t.Setenv("COMMIT_MODE", "batch")
	svc := &mockService{}

	_, gotCfg, err := runCLI(t, svc)

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "COMMIT_MODE")
	assert.Nil(t, gotCfg)
}

func TestRootCmd_ConfigFileAndLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unleashed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("DB_DRIVER: postgres\nLOG_LEVEL: warn\n"), 0o600))

	_, gotCfg, err := runCLI(t, &mockService{}, "-c", path, "--log-level", "debug")

	require.NoError(t, err)
	require.NotNil(t, gotCfg)
	assert.Equal(t, "postgres", gotCfg.DB.Driver)
	assert.Equal(t, "debug", gotCfg.Log.Level)
}

func TestRootCmd_FactoryError(t *testing.T) {
	t.Setenv("UNLEASHED_API_ID", "id")
	t.Setenv("UNLEASHED_API_KEY", "key")
	t.Setenv("DB_NAME", "Sales")
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{})
	defer rootCmd.SetArgs(nil)

	boom := errors.New("connection refused")
	err := Execute(context.Background(), func(context.Context, *config.Config, *zerolog.Logger) (Service, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestRootCmd_NotConfigured(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{})
	defer rootCmd.SetArgs(nil)

	err := Execute(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync service not configured")
}
