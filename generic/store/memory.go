// Package store provides BlobStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/bentobox/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	writes int
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[key]
	if !ok {
		return nil, generic.ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob := make([]byte, len(value))
	copy(blob, value)
	m.blobs[key] = blob
	m.writes++
	return nil
}

// Writes returns how many Put calls have succeeded.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

var _ generic.BlobStore = (*Memory)(nil)
