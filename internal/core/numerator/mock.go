package numerator

import (
	"context"
	"sync"
)

// MockAllocator is an in-memory Allocator for unit tests.
// NextFunc, when set, replaces the built-in counting.
type MockAllocator struct {
	NextFunc func(ctx context.Context, key string) (int64, error)

	mu       sync.Mutex
	counters map[string]int64
	calls    []string
}

// NewMockAllocator creates a MockAllocator with empty counters.
func NewMockAllocator() *MockAllocator {
	return &MockAllocator{counters: make(map[string]int64)}
}

// Next implements Allocator.
func (m *MockAllocator) Next(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	m.calls = append(m.calls, key)
	m.mu.Unlock()

	if m.NextFunc != nil {
		return m.NextFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	m.counters[key]++
	return m.counters[key], nil
}

// Current implements Allocator.
func (m *MockAllocator) Current(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key], nil
}

// Calls returns the keys passed to Next in call order.
func (m *MockAllocator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

var _ Allocator = (*MockAllocator)(nil)
