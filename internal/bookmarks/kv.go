package bookmarks

import (
	"context"
	"sync"
)

// KV is the persistence a Set reads once and writes after every toggle.
// *storage.SQLiteStorage satisfies it.
type KV interface {
	Get(ctx context.Context, owner, key string) ([]byte, bool, error)
	Set(ctx context.Context, owner, key string, value []byte) error
}

// MemoryKV keeps values in process memory. It backs the degraded mode used
// when the database cannot be opened.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, owner, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[owner+"\x00"+key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(_ context.Context, owner, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[owner+"\x00"+key] = append([]byte(nil), value...)
	return nil
}
