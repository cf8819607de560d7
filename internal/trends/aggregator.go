// Package trends turns social and RSS feeds grouped by topic into content
// items served as the "trends" collection.
package trends

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"contentdesk/internal/models"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/mmcdole/gofeed"
	"github.com/pemistahl/lingua-go"
	"go.uber.org/zap"
)

// CollectionName is the catalog name trend items are registered under.
const CollectionName = "trends"

const (
	fetchTimeout  = 30 * time.Second
	excerptLength = 280
	userAgent     = "contentdesk-trends/1.0"
)

type feedResult struct {
	topic string
	url   string
	items []models.ContentItem
	err   error
}

type Aggregator struct {
	topics    map[string][]string
	converter *md.Converter
	detector  lingua.LanguageDetector
	logger    *zap.Logger

	mu          sync.RWMutex
	items       []models.ContentItem
	lastRefresh time.Time
}

func New(topics map[string][]string, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.German, lingua.French, lingua.Spanish,
			lingua.Italian, lingua.Portuguese, lingua.Dutch, lingua.Arabic,
		).
		Build()

	return &Aggregator{
		topics:    topics,
		converter: md.NewConverter("", true, nil),
		detector:  detector,
		logger:    logger.Named("trends"),
	}
}

// Topics lists the configured topic names, sorted.
func (a *Aggregator) Topics() []string {
	names := make([]string, 0, len(a.topics))
	for name := range a.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Items returns the last refreshed items, refreshing first if nothing has
// been fetched yet. It makes the aggregator a catalog source.
func (a *Aggregator) Items(ctx context.Context) ([]models.ContentItem, error) {
	a.mu.RLock()
	fetched := !a.lastRefresh.IsZero()
	items := a.items
	a.mu.RUnlock()

	if !fetched {
		return a.Refresh(ctx)
	}
	return cloneItems(items), nil
}

// LastRefresh reports when Refresh last completed.
func (a *Aggregator) LastRefresh() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastRefresh
}

// Refresh fetches every feed of every topic in parallel. Feeds that fail
// or do not answer within the fetch timeout are logged and skipped.
func (a *Aggregator) Refresh(ctx context.Context) ([]models.ContentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan feedResult)

	for topic, urls := range a.topics {
		for _, u := range urls {
			wg.Add(1)
			go func(topic, feedURL string) {
				defer wg.Done()
				items, err := a.fetchFeed(ctx, topic, feedURL)
				select {
				case results <- feedResult{topic: topic, url: feedURL, items: items, err: err}:
				case <-ctx.Done():
				}
			}(topic, u)
		}
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	seen := make(map[string]bool)
	var all []models.ContentItem
collect:
	for {
		select {
		case res, ok := <-results:
			if !ok {
				break collect
			}
			if res.err != nil {
				a.logger.Warn("feed fetch failed",
					zap.String("topic", res.topic),
					zap.String("url", res.url),
					zap.Error(res.err))
				continue
			}
			for _, it := range res.items {
				if seen[it.ID] {
					continue
				}
				seen[it.ID] = true
				all = append(all, it)
			}
		case <-ctx.Done():
			a.logger.Warn("timeout waiting for feed results", zap.Int("collected", len(all)))
			break collect
		}
	}

	sortNewestFirst(all)
	if all == nil {
		all = []models.ContentItem{}
	}

	a.mu.Lock()
	a.items = all
	a.lastRefresh = time.Now()
	a.mu.Unlock()

	a.logger.Info("trends refreshed", zap.Int("items", len(all)), zap.Int("topics", len(a.topics)))
	return cloneItems(all), nil
}

// cloneItems copies items; the result is never nil.
func cloneItems(items []models.ContentItem) []models.ContentItem {
	out := make([]models.ContentItem, len(items))
	copy(out, items)
	return out
}

func (a *Aggregator) fetchFeed(ctx context.Context, topic, feedURL string) ([]models.ContentItem, error) {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.ContentItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		items = append(items, a.toItem(topic, feed, entry))
	}
	return items, nil
}

func (a *Aggregator) toItem(topic string, feed *gofeed.Feed, entry *gofeed.Item) models.ContentItem {
	item := models.ContentItem{
		ID:             itemID(entry),
		Title:          strings.TrimSpace(entry.Title),
		Category:       topic,
		Subsubcategory: strings.TrimSpace(feed.Title),
		Excerpt:        a.excerpt(entry.Description),
		Content:        entry.Content,
		Link:           entry.Link,
		Source:         strings.TrimSpace(feed.Title),
		CreatedAt:      publishedAt(entry).UTC().Format(time.RFC3339),
	}
	if len(entry.Categories) > 0 {
		item.Subcategory = strings.TrimSpace(entry.Categories[0])
	}
	if entry.Author != nil {
		item.Author = entry.Author.Name
	}
	if entry.Image != nil {
		item.Image = entry.Image.URL
	}
	if item.Content == "" {
		item.Content = entry.Description
	}
	item.Language = a.detectLanguage(item.Title + " " + item.Excerpt)
	return item
}

func itemID(entry *gofeed.Item) string {
	key := entry.Link
	if key == "" {
		key = entry.GUID
	}
	if key == "" {
		key = entry.Title
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

func publishedAt(entry *gofeed.Item) time.Time {
	switch {
	case entry.PublishedParsed != nil:
		return *entry.PublishedParsed
	case entry.UpdatedParsed != nil:
		return *entry.UpdatedParsed
	default:
		return time.Now()
	}
}

// excerpt converts an HTML description to markdown and truncates it.
func (a *Aggregator) excerpt(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}
	text, err := a.converter.ConvertString(description)
	if err != nil {
		a.logger.Debug("markdown conversion failed, keeping raw description", zap.Error(err))
		text = description
	}
	return truncate(strings.TrimSpace(text), excerptLength)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

func (a *Aggregator) detectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lang, ok := a.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

func sortNewestFirst(items []models.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt > items[j].CreatedAt
		}
		return items[i].ID < items[j].ID
	})
}
