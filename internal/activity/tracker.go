// Package activity drives the detail view of a news item: one view record
// per mounted session, likes, shares, comment submission and the cached
// activity counters.
package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contentdesk/internal/cache"
	"contentdesk/internal/metrics"
	"contentdesk/internal/models"

	"go.uber.org/zap"
)

// Backend is the subset of the backend client the tracker needs.
type Backend interface {
	RecordActivity(ctx context.Context, newsID string, kind models.ActivityKind) error
	AddComment(ctx context.Context, newsID, author, text string) error
	Comments(ctx context.Context, newsID string) ([]models.Comment, error)
	ActivitySummary(ctx context.Context, newsID string) (models.ActivitySummary, error)
}

const (
	defaultRecordTimeout = 5 * time.Second
	defaultCounterTTL    = 30 * time.Second
	defaultWatchWindow   = 10 * time.Minute
)

type Tracker struct {
	backend Backend
	cache   *cache.Manager
	logger  *zap.Logger
	metrics *metrics.Metrics

	RecordTimeout time.Duration
	CounterTTL    time.Duration
	WatchWindow   time.Duration

	mu      sync.Mutex
	watched map[string]time.Time
	pending sync.WaitGroup
}

func NewTracker(b Backend, cacheManager *cache.Manager, logger *zap.Logger, m *metrics.Metrics) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		backend:       b,
		cache:         cacheManager,
		logger:        logger.Named("activity"),
		metrics:       m,
		RecordTimeout: defaultRecordTimeout,
		CounterTTL:    defaultCounterTTL,
		WatchWindow:   defaultWatchWindow,
		watched:       make(map[string]time.Time),
	}
}

// Mount opens a detail session and records its view in the background.
// The recording outlives ctx's cancellation but not RecordTimeout.
func (t *Tracker) Mount(ctx context.Context, newsID string) *Session {
	s := &Session{tracker: t, newsID: newsID}
	t.Watch(newsID)

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.RecordTimeout)
	t.pending.Add(1)
	go func() {
		defer t.pending.Done()
		defer cancel()
		s.recordView(bg)
	}()
	return s
}

// Attach returns a session for newsID without recording a view. It serves
// follow-up actions whose mounting session is gone.
func (t *Tracker) Attach(newsID string) *Session {
	return &Session{tracker: t, newsID: newsID}
}

// Wait blocks until background view recordings have finished.
func (t *Tracker) Wait() {
	t.pending.Wait()
}

// Counters returns the activity summary, cached for CounterTTL.
func (t *Tracker) Counters(ctx context.Context, newsID string) (models.ActivitySummary, error) {
	v, err := t.cache.GetOrLoad(cache.Key(cache.PrefixCounters, newsID), t.CounterTTL, func() (interface{}, error) {
		return t.backend.ActivitySummary(ctx, newsID)
	})
	if err != nil {
		return models.ActivitySummary{NewsID: newsID}, fmt.Errorf("counters for %s: %w", newsID, err)
	}
	return v.(models.ActivitySummary), nil
}

func (t *Tracker) invalidate(newsID string) {
	t.cache.Delete(cache.Key(cache.PrefixCounters, newsID))
}

// Watch marks newsID for periodic counter refresh.
func (t *Tracker) Watch(newsID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.watched[newsID] = time.Now()
}

// Watched lists items mounted within WatchWindow and forgets older ones.
func (t *Tracker) Watched() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-t.WatchWindow)
	ids := make([]string, 0, len(t.watched))
	for id, seen := range t.watched {
		if seen.Before(cutoff) {
			delete(t.watched, id)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// RefreshWatched re-fetches counters for every watched item and returns how
// many were refreshed. Failures are logged and skipped.
func (t *Tracker) RefreshWatched(ctx context.Context) int {
	refreshed := 0
	for _, id := range t.Watched() {
		if ctx.Err() != nil {
			break
		}
		summary, err := t.backend.ActivitySummary(ctx, id)
		if err != nil {
			t.logger.Warn("counter refresh failed", zap.String("news_id", id), zap.Error(err))
			continue
		}
		t.cache.Set(cache.Key(cache.PrefixCounters, id), summary, t.CounterTTL)
		refreshed++
	}
	return refreshed
}

func (t *Tracker) record(ctx context.Context, newsID string, kind models.ActivityKind) error {
	err := t.backend.RecordActivity(ctx, newsID, kind)
	t.metrics.Activity(string(kind), err)
	if err != nil {
		t.logger.Warn("activity not recorded",
			zap.String("news_id", newsID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return err
	}
	return nil
}
