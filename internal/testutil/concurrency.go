// Package testutil holds helpers shared by tests of several packages.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/jobgraph/internal/registry"
)

// MockSleeperModule is a shared, self-contained module for concurrency tests.
// It registers "test.sleep", which sleeps and records the execution time of
// the label it is given.
type MockSleeperModule struct {
	mu             sync.Mutex
	executionTimes map[string]ExecutionRecord
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewMockSleeperModule creates a new sleeper module for testing.
// completionChan, when not nil, receives every label as it completes.
func NewMockSleeperModule(completionChan chan<- string, sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		executionTimes: make(map[string]ExecutionRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

// Register registers the "test.sleep" function.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	r.Register("test.sleep", m.sleep)
}

func (m *MockSleeperModule) sleep(ctx context.Context, label string) (string, error) {
	start := time.Now()
	select {
	case <-time.After(m.sleepDuration):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	end := time.Now()

	m.mu.Lock()
	m.executionTimes[label] = ExecutionRecord{Start: start, End: end}
	m.mu.Unlock()

	if m.completionChan != nil {
		m.completionChan <- label
	}
	return label, nil
}

// ExecutionTimes returns a copy of the recorded executions by label.
func (m *MockSleeperModule) ExecutionTimes() map[string]ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]ExecutionRecord, len(m.executionTimes))
	for k, v := range m.executionTimes {
		out[k] = v
	}
	return out
}
