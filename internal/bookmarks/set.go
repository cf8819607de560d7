// Package bookmarks keeps the set of item ids a reader has saved. The set
// is read from persistence once per owner and written back in full after
// every toggle.
package bookmarks

import (
	"context"
	"encoding/json"
	"sync"

	"contentdesk/internal/metrics"

	"go.uber.org/zap"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "savedNews"

type Set struct {
	mu      sync.Mutex
	kv      KV
	owner   string
	key     string
	ids     []string
	index   map[string]int
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Open loads the persisted set. Read or decode failures are logged and
// start the session with an empty set.
func Open(ctx context.Context, kv KV, owner, key string, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = DefaultKey
	}
	s := &Set{
		kv:     kv,
		owner:  owner,
		key:    key,
		index:  make(map[string]int),
		logger: logger.With(zap.String("owner", owner), zap.String("key", key)),
	}

	raw, found, err := kv.Get(ctx, owner, key)
	switch {
	case err != nil:
		s.logger.Warn("bookmark read failed, starting empty", zap.Error(err))
	case !found:
	default:
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			s.logger.Warn("bookmark value is not a string array, starting empty", zap.Error(err))
			break
		}
		for _, id := range ids {
			s.add(id)
		}
	}
	return s
}

// WithMetrics attaches toggle counters.
func (s *Set) WithMetrics(m *metrics.Metrics) *Set {
	s.metrics = m
	return s
}

// Toggle removes id when present and adds it otherwise, reporting whether
// it is saved afterwards. The full set is persisted after each call; a write
// failure is logged and the in-memory state is kept.
func (s *Set) Toggle(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := true
	if _, ok := s.index[id]; ok {
		s.remove(id)
		saved = false
	} else {
		s.add(id)
	}

	raw, err := json.Marshal(s.snapshot())
	if err == nil {
		err = s.kv.Set(ctx, s.owner, s.key, raw)
	}
	if err != nil {
		s.logger.Error("bookmark write failed", zap.String("id", id), zap.Error(err))
	}

	s.metrics.Bookmark(saved)
	return saved
}

func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// IDs returns the members in insertion order.
func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *Set) snapshot() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Set) add(id string) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

func (s *Set) remove(id string) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.ids); j++ {
		s.index[s.ids[j]] = j
	}
}
