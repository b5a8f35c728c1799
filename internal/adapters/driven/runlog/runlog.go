package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RunLog = (*File)(nil)

const (
	// DefaultFileName is created next to the executable when no path is configured.
	DefaultFileName = "logs.txt"

	timeLayout = "2006-01-02 15:04:05.000000"
)

// Separator closes every successful run block.
var Separator = strings.Repeat("-", 33)

// File appends run log lines to a plain text file. The file is opened for
// each line so an external rotation never leaves a stale handle. It is never
// truncated.
type File struct {
	mu   sync.Mutex
	path string
}

// New creates a run log at path. An empty path resolves to DefaultFileName
// in the directory of the running executable.
func New(path string) (*File, error) {
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		path = filepath.Join(filepath.Dir(exe), DefaultFileName)
	}
	return &File{path: path}, nil
}

// Path returns the file being appended to.
func (f *File) Path() string {
	return f.path
}

// Start writes "Running at <local time>".
func (f *File) Start(t time.Time) error {
	return f.Log("Running at " + t.Format(timeLayout))
}

// Log appends line followed by a newline.
func (f *File) Log(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	if _, err := file.WriteString(line + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("write run log: %w", err)
	}
	return file.Close()
}

// Stop writes the elapsed seconds and the separator.
func (f *File) Stop(elapsed time.Duration) error {
	if err := f.Log("Took " + strconv.FormatFloat(elapsed.Seconds(), 'f', -1, 64) + "s"); err != nil {
		return err
	}
	return f.Log(Separator)
}
