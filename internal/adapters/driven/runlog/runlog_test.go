package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestFile_RunBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	log, err := New(path)
	require.NoError(t, err)

	start := time.Date(2024, 5, 1, 9, 30, 15, 123456000, time.Local)
	require.NoError(t, log.Start(start))
	require.NoError(t, log.Log("Inserted 3 rows into UnleashedCreditNotes"))
	require.NoError(t, log.Log("Inserted 0 rows into UnleashedInvoices"))
	require.NoError(t, log.Stop(2500*time.Millisecond))

	assert.Equal(t, []string{
		"Running at 2024-05-01 09:30:15.123456",
		"Inserted 3 rows into UnleashedCreditNotes",
		"Inserted 0 rows into UnleashedInvoices",
		"Took 2.5s",
		"---------------------------------",
	}, readLines(t, path))
}

func TestFile_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	require.NoError(t, os.WriteFile(path, []byte("earlier run\n"), 0o644))

	log, err := New(path)
	require.NoError(t, err)
	require.NoError(t, log.Start(time.Now()))

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "earlier run", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Running at "))
}

func TestFile_FailedRunHasNoSeparator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	log, err := New(path)
	require.NoError(t, err)

	require.NoError(t, log.Start(time.Now()))

	lines := readLines(t, path)
	assert.Len(t, lines, 1)
	assert.NotContains(t, lines, Separator)
}

func TestFile_UnwritablePath(t *testing.T) {
	log, err := New(filepath.Join(t.TempDir(), "missing", "logs.txt"))
	require.NoError(t, err)

	assert.Error(t, log.Log("anything"))
}

func TestNew_DefaultPath(t *testing.T) {
	log, err := New("")
	require.NoError(t, err)

	exe, err := os.Executable()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(exe), DefaultFileName), log.Path())
}

func TestSeparator(t *testing.T) {
	assert.Len(t, Separator, 33)
	assert.Equal(t, "", strings.Trim(Separator, "-"))
}
