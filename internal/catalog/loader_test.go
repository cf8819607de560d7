package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeItems_Array(t *testing.T) {
	items, err := DecodeItems([]byte(`[{"id": 1, "category": "Sports"}, {"id": "b"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "b"}, ids(items))
}

func TestDecodeItems_Wrapped(t *testing.T) {
	items, err := DecodeItems([]byte(`{"success": true, "news": [{"id": 9}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, ids(items))
}

func TestDecodeItems_MissingArrayIsEmpty(t *testing.T) {
	for _, payload := range []string{``, `{"success": true}`, `{"data": {"id": 1}}`, `"nope"`, `[{"id": `} {
		items, err := DecodeItems([]byte(payload))
		assert.ErrorIs(t, err, ErrMalformed, "payload %q", payload)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	}
}

func TestFileSource_Items(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 101, "title": "Backend position"}]`), 0o600))

	items, err := FileSource{Path: path}.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Backend position", items[0].Title)
}

func TestLoadFixture_Missing(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestBundledFixtures(t *testing.T) {
	news, err := LoadFixture(filepath.Join("..", "..", "fixtures", "news.json"))
	require.NoError(t, err)
	assert.Len(t, news, 23)

	posts, err := LoadFixture(filepath.Join("..", "..", "fixtures", "generalPosts.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, posts)
}
