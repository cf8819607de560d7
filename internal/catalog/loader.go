package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"contentdesk/internal/models"
)

// ErrMalformed marks a payload without a recognizable item array.
var ErrMalformed = errors.New("catalog: malformed collection payload")

// envelopeArrayFields are the wrapper keys tried, in order, when a fixture
// is an object instead of a bare array.
var envelopeArrayFields = []string{"data", "items", "news", "articles", "jobs", "posts"}

// Source produces the full item list of one collection.
type Source interface {
	Items(ctx context.Context) ([]models.ContentItem, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]models.ContentItem, error)

func (f SourceFunc) Items(ctx context.Context) ([]models.ContentItem, error) { return f(ctx) }

// FileSource reads a bundled JSON fixture.
type FileSource struct {
	Path string
}

func (s FileSource) Items(ctx context.Context) ([]models.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFixture(s.Path)
}

// LoadFixture reads and decodes the fixture at path.
func LoadFixture(path string) ([]models.ContentItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return DecodeItems(raw)
}

// DecodeItems decodes a bare JSON array of items or an object wrapping one.
// A payload with no usable array yields an empty list and ErrMalformed.
func DecodeItems(raw []byte) ([]models.ContentItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []models.ContentItem{}, ErrMalformed
	}

	switch raw[0] {
	case '[':
		var items []models.ContentItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return []models.ContentItem{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return items, nil
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return []models.ContentItem{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		for _, field := range envelopeArrayFields {
			inner, ok := wrapper[field]
			if !ok || len(bytes.TrimSpace(inner)) == 0 || bytes.TrimSpace(inner)[0] != '[' {
				continue
			}
			return DecodeItems(inner)
		}
	}
	return []models.ContentItem{}, ErrMalformed
}
