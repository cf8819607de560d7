package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Key prefixes for the hot data kept in memory.
const (
	PrefixCollection = "collection"
	PrefixCounters   = "counters"
	PrefixBookmarks  = "bookmarks"
	PrefixSessions   = "sessions"
)

// Key joins a prefix and its parts into a cache key, e.g. "collection:news".
func Key(prefix string, parts ...string) string {
	return prefix + ":" + strings.Join(parts, ":")
}

type Manager struct {
	cache *cache.Cache
	mu    sync.RWMutex
	// loads serializes GetOrLoad per key so one loader runs at a time.
	loads sync.Map
}

func NewManager(defaultTTL time.Duration) *Manager {
	return &Manager{
		cache: cache.New(defaultTTL, 10*time.Minute),
	}
}

func (m *Manager) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache.Get(key)
}

// Set stores value under key. A zero ttl uses the manager default and
// cache.NoExpiration keeps the entry until deleted.
func (m *Manager) Set(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Set(key, value, ttl)
}

func (m *Manager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(key)
}

// DeletePrefix removes every entry whose key starts with prefix.
func (m *Manager) DeletePrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			m.cache.Delete(key)
			removed++
		}
	}
	return removed
}

func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Flush()
}

// Len reports the number of unexpired entries.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache.ItemCount()
}

// GetOrLoad returns the cached value for key or calls load, caching its
// result for ttl. Errors are returned and nothing is cached.
func (m *Manager) GetOrLoad(key string, ttl time.Duration, load func() (interface{}, error)) (interface{}, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}

	lock, _ := m.loads.LoadOrStore(key, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	if v, ok := m.Get(key); ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	m.Set(key, v, ttl)
	return v, nil
}
