package mocks

import (
	"fmt"
	"sync"
	"time"
)

// MockRunLog records run log lines in memory.
type MockRunLog struct {
	mu    sync.Mutex
	lines []string

	StartErr error
	LogErr   error
}

// NewMockRunLog creates a new MockRunLog
func NewMockRunLog() *MockRunLog {
	return &MockRunLog{}
}

func (m *MockRunLog) Start(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartErr != nil {
		return m.StartErr
	}
	m.lines = append(m.lines, "Running at "+t.Format(time.RFC3339))
	return nil
}

func (m *MockRunLog) Log(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LogErr != nil {
		return m.LogErr
	}
	m.lines = append(m.lines, line)
	return nil
}

func (m *MockRunLog) Stop(elapsed time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, fmt.Sprintf("Took %gs", elapsed.Seconds()), "---")
	return nil
}

// Lines returns the recorded lines.
func (m *MockRunLog) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}
