package bookmarks

import (
	"context"
	"sync"
	"time"

	"contentdesk/internal/cache"
	"contentdesk/internal/metrics"

	"go.uber.org/zap"
)

// Registry hands out one Set per owner. A set stays cached while its owner
// keeps using it; once idle for ttl it is dropped and reopened from the KV
// on the next request.
type Registry struct {
	mu      sync.Mutex
	cache   *cache.Manager
	kv      KV
	key     string
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewRegistry creates a registry. A zero ttl uses the cache manager default.
func NewRegistry(cacheManager *cache.Manager, kv KV, key string, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = DefaultKey
	}
	return &Registry{cache: cacheManager, kv: kv, key: key, ttl: ttl, logger: logger, metrics: m}
}

// For returns the owner's set, opening it on first use.
func (r *Registry) For(ctx context.Context, owner string) *Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	cacheKey := cache.Key(cache.PrefixBookmarks, owner, r.key)
	if v, ok := r.cache.Get(cacheKey); ok {
		r.cache.Set(cacheKey, v, r.ttl)
		return v.(*Set)
	}
	set := Open(ctx, r.kv, owner, r.key, r.logger).WithMetrics(r.metrics)
	r.cache.Set(cacheKey, set, r.ttl)
	return set
}

// Key is the storage key sets are persisted under.
func (r *Registry) Key() string { return r.key }
