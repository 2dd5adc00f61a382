// Package persist provides best-effort persistence for chat history.
//
// History is stored as a single JSON document under one key. The Adapter
// owns (de)serialization and failure policy; the KV interface hides the
// backing store (memory, SQLite, NATS JetStream).
package persist

import (
	"context"
	"sync"
)

// SessionsKey is the key holding the entire session list.
const SessionsKey = "chat.sessions"

// KV is a minimal key-value store with byte values.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes the value for key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases any underlying resources.
	Close() error
}

// Memory is an in-process KV used in tests and keyless dev runs.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	return nil
}

func (m *Memory) Close() error {
	return nil
}
