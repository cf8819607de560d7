// Package catalog owns the content collections and the pure accessors,
// facets and filters computed over them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"contentdesk/internal/cache"
	"contentdesk/internal/logging"
	"contentdesk/internal/metrics"
	"contentdesk/internal/models"

	"go.uber.org/zap"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrItemNotFound       = errors.New("item not found")
)

type Catalog struct {
	cacheManager *cache.Manager
	ttl          time.Duration
	logger       *zap.Logger
	metrics      *metrics.Metrics

	mu      sync.RWMutex
	sources map[string]Source
}

// New builds a catalog whose fixture collections live under dir.
func New(cacheManager *cache.Manager, dir string, collections map[string]string, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Catalog {
	c := &Catalog{
		cacheManager: cacheManager,
		ttl:          ttl,
		logger:       logging.OrNop(logger),
		metrics:      m,
		sources:      make(map[string]Source),
	}
	for name, file := range collections {
		c.sources[name] = FileSource{Path: filepath.Join(dir, file)}
	}
	return c
}

// Register adds or replaces a collection backed by src.
func (c *Catalog) Register(name string, src Source) {
	c.mu.Lock()
	c.sources[name] = src
	c.mu.Unlock()
	c.cacheManager.Delete(cache.Key(cache.PrefixCollection, name))
}

// Collections lists collection names alphabetically.
func (c *Catalog) Collections() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.sources))
	for name := range c.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) source(name string) (Source, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	src, ok := c.sources[name]
	return src, ok
}

// Items returns the full item list of a collection, loading it on first use.
func (c *Catalog) Items(ctx context.Context, name string) ([]models.ContentItem, error) {
	src, ok := c.source(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}

	v, err := c.cacheManager.GetOrLoad(cache.Key(cache.PrefixCollection, name), c.ttl, func() (interface{}, error) {
		return c.load(ctx, name, src)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.ContentItem), nil
}

func (c *Catalog) load(ctx context.Context, name string, src Source) ([]models.ContentItem, error) {
	items, err := src.Items(ctx)
	c.metrics.CollectionLoad(name, err)
	switch {
	case errors.Is(err, ErrMalformed):
		// A malformed payload is served as an empty collection.
		c.logger.Warn("Malformed collection payload, serving empty list",
			zap.String("collection", name), zap.Error(err))
		return []models.ContentItem{}, nil
	case err != nil:
		c.logger.Error("Failed to load collection",
			zap.String("collection", name), zap.Error(err))
		return nil, fmt.Errorf("load collection %s: %w", name, err)
	}
	if items == nil {
		items = []models.ContentItem{}
	}
	c.logger.Debug("Loaded collection",
		zap.String("collection", name), zap.Int("items", len(items)))
	return items, nil
}

// Item looks up one item by id.
func (c *Catalog) Item(ctx context.Context, name, id string) (models.ContentItem, error) {
	items, err := c.Items(ctx, name)
	if err != nil {
		return models.ContentItem{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return models.ContentItem{}, fmt.Errorf("%w: %s/%s", ErrItemNotFound, name, id)
}

// ByCategory returns the items of one category ("all" returns everything).
func (c *Catalog) ByCategory(ctx context.Context, name, category string) ([]models.ContentItem, error) {
	return c.Filtered(ctx, name, models.Selection{Category: category})
}

// BySubcategory returns the items of category/subcategory.
func (c *Catalog) BySubcategory(ctx context.Context, name, category, subcategory string) ([]models.ContentItem, error) {
	return c.Filtered(ctx, name, models.Selection{Category: category, Subcategory: subcategory})
}

// Filtered applies a full selection to a collection.
func (c *Catalog) Filtered(ctx context.Context, name string, sel models.Selection) ([]models.ContentItem, error) {
	items, err := c.Items(ctx, name)
	if err != nil {
		return nil, err
	}
	return ApplyFilter(items, sel), nil
}

// Reload drops the cached copy of a collection and loads it again.
func (c *Catalog) Reload(ctx context.Context, name string) (int, error) {
	if _, ok := c.source(name); !ok {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	c.cacheManager.Delete(cache.Key(cache.PrefixCollection, name))
	items, err := c.Items(ctx, name)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// ReloadAll reloads every collection, logging failures.
func (c *Catalog) ReloadAll(ctx context.Context) error {
	var errs []error
	for _, name := range c.Collections() {
		if _, err := c.Reload(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
