package store

import (
	"context"
	"sync"
)

// memoryKV is an in-process KV for config store tests.
type memoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func newMemory() *memoryKV {
	return &memoryKV{data: map[string]string{}}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Close() error { return nil }
