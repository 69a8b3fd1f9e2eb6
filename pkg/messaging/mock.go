package messaging

import (
	"context"
	"sync"

	"github.com/luxfi/safehash/pkg/event"
)

// MockPublisher records events in memory for tests.
type MockPublisher struct {
	mu           sync.RWMutex
	events       []*event.HashResultEvent
	publishError error
	closed       bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishResult(ctx context.Context, e *event.HashResultEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishError != nil {
		return m.publishError
	}
	m.events = append(m.events, e)
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Events returns a copy of the published events.
func (m *MockPublisher) Events() []*event.HashResultEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*event.HashResultEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockPublisher) SetPublishError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishError = err
}

func (m *MockPublisher) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
