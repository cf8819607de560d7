// Package backend talks to the PHP news backend: categories, news items,
// activity counters and comments.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contentdesk/internal/models"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the backend has no such record.
	ErrNotFound = errors.New("backend: not found")
	// ErrUnavailable covers transport failures, error statuses and rejected envelopes.
	ErrUnavailable = errors.New("backend: unavailable")
	// ErrMalformed marks a response body that is not a JSON object. Callers
	// see it as an empty payload.
	ErrMalformed = errors.New("backend: malformed response")
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client for the API rooted at baseURL,
// e.g. http://localhost/news-portal/api.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("backend"),
	}
}

// BaseURL reports the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	raw, err := c.get(ctx, "get_categories.php", nil, "data", "categories")
	if err != nil {
		return nil, err
	}
	return decodeList[models.Category](raw, c.logger, "categories"), nil
}

func (c *Client) Subcategories(ctx context.Context, categoryID string) ([]models.Category, error) {
	raw, err := c.get(ctx, "get_subcategories.php", url.Values{"category_id": {categoryID}}, "data", "subcategories")
	if err != nil {
		return nil, err
	}
	return decodeList[models.Category](raw, c.logger, "subcategories"), nil
}

func (c *Client) NewsByCategory(ctx context.Context, category string) ([]models.ContentItem, error) {
	raw, err := c.get(ctx, "get_news_by_category.php", url.Values{"category": {category}}, "news", "data")
	if err != nil {
		return nil, err
	}
	return decodeList[models.ContentItem](raw, c.logger, "news"), nil
}

// News fetches one item. An ok envelope without a news object is ErrNotFound.
func (c *Client) News(ctx context.Context, id string) (models.ContentItem, error) {
	raw, err := c.get(ctx, "get_news.php", url.Values{"id": {id}}, "news", "data")
	if err != nil {
		return models.ContentItem{}, err
	}
	if raw == nil {
		return models.ContentItem{}, fmt.Errorf("news %s: %w", id, ErrNotFound)
	}

	var item models.ContentItem
	if err := json.Unmarshal(raw, &item); err != nil {
		c.logger.Warn("malformed news item", zap.String("id", id), zap.Error(err))
		return models.ContentItem{}, fmt.Errorf("news %s: %w", id, ErrNotFound)
	}
	if item.ID == "" && item.Title == "" {
		return models.ContentItem{}, fmt.Errorf("news %s: %w", id, ErrNotFound)
	}
	if item.ID == "" {
		item.ID = id
	}
	return item, nil
}

func (c *Client) ActivitySummary(ctx context.Context, newsID string) (models.ActivitySummary, error) {
	raw, err := c.get(ctx, "get_activity_summary.php", url.Values{"news_id": {newsID}}, "data", "summary")
	if err != nil {
		return models.ActivitySummary{}, err
	}

	summary := models.ActivitySummary{NewsID: newsID}
	if raw == nil {
		return summary, nil
	}
	var rs rawSummary
	if err := json.Unmarshal(raw, &rs); err != nil {
		c.logger.Warn("malformed activity summary", zap.String("news_id", newsID), zap.Error(err))
		return summary, nil
	}
	summary.Views = int(rs.Views)
	summary.Likes = int(rs.Likes)
	summary.Comments = int(rs.Comments)
	summary.Shares = int(rs.Shares)
	return summary, nil
}

func (c *Client) RecordActivity(ctx context.Context, newsID string, kind models.ActivityKind) error {
	_, err := c.post(ctx, "record_activity.php", map[string]string{
		"news_id": newsID,
		"type":    string(kind),
	})
	return err
}

func (c *Client) AddComment(ctx context.Context, newsID, author, text string) error {
	_, err := c.post(ctx, "add_comment.php", map[string]string{
		"news_id":   newsID,
		"comment":   text,
		"user_name": author,
	})
	return err
}

func (c *Client) Comments(ctx context.Context, newsID string) ([]models.Comment, error) {
	raw, err := c.post(ctx, "get_comments.php", map[string]string{"news_id": newsID}, "comments", "data")
	if err != nil {
		return nil, err
	}
	return decodeList[models.Comment](raw, c.logger, "comments"), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, fields ...string) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	return c.do(req, fields)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, fields ...string) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, fields)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("%w: join %s: %v", ErrUnavailable, path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, fields []string) (json.RawMessage, error) {
	log := c.logger.With(zap.String("method", req.Method), zap.String("path", req.URL.Path))

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		log.Warn("error status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	raw, err := decodeEnvelope(body, fields...)
	if errors.Is(err, ErrMalformed) {
		// Writes carry no payload; an unreadable reply means the write is unconfirmed.
		if len(fields) == 0 {
			log.Warn("malformed response to write", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		log.Warn("malformed response body, treating as empty", zap.Error(err))
		return nil, nil
	}
	if err != nil {
		log.Warn("envelope rejected", zap.Error(err))
		return nil, err
	}
	return raw, nil
}
