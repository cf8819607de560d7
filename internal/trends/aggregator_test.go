package trends

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Social Pulse</title>
  <link>https://pulse.example</link>
  <description>Trending now</description>
  <item>
    <title>City marathon draws record crowd</title>
    <link>https://pulse.example/marathon</link>
    <category>Running</category>
    <description>&lt;p&gt;Thousands of people lined the streets of the old town on &lt;strong&gt;Sunday morning&lt;/strong&gt; to cheer the runners.&lt;/p&gt;</description>
    <pubDate>Mon, 04 Mar 2024 09:00:00 GMT</pubDate>
  </item>
  <item>
    <title>New stadium plans unveiled</title>
    <link>https://pulse.example/stadium</link>
    <description>The council published the plans for the new stadium and asked residents for their opinion.</description>
    <pubDate>Tue, 05 Mar 2024 09:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func rssServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/social.rss":
			w.Header().Set("Content-Type", "application/rss+xml")
			io.WriteString(w, sampleRSS)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAggregator_Refresh(t *testing.T) {
	srv := rssServer(t)
	agg := New(map[string][]string{
		"sports": {srv.URL + "/social.rss", srv.URL + "/broken.rss"},
	}, nil)

	items, err := agg.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2, "the broken feed is skipped")

	newest := items[0]
	assert.Equal(t, "New stadium plans unveiled", newest.Title)
	assert.Equal(t, "sports", newest.Category)
	assert.Equal(t, "Social Pulse", newest.Subsubcategory)
	assert.Equal(t, "2024-03-05T09:00:00Z", newest.CreatedAt)
	assert.Len(t, newest.ID, 16)

	marathon := items[1]
	assert.Equal(t, "Running", marathon.Subcategory)
	assert.Contains(t, marathon.Excerpt, "**Sunday morning**")
	assert.NotContains(t, marathon.Excerpt, "<p>")
	assert.Equal(t, "en", marathon.Language)
	assert.False(t, agg.LastRefresh().IsZero())
}

func TestAggregator_ItemsRefreshesOnce(t *testing.T) {
	srv := rssServer(t)
	agg := New(map[string][]string{"sports": {srv.URL + "/social.rss"}}, nil)

	items, err := agg.Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	first := agg.LastRefresh()
	_, err = agg.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, agg.LastRefresh(), "cached items are served without a new fetch")
}

func TestAggregator_DuplicateLinksAcrossTopics(t *testing.T) {
	srv := rssServer(t)
	agg := New(map[string][]string{
		"a": {srv.URL + "/social.rss"},
		"b": {srv.URL + "/social.rss"},
	}, nil)

	items, err := agg.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, []string{"a", "b"}, agg.Topics())
}

func TestAggregator_NoTopics(t *testing.T) {
	agg := New(nil, nil)

	items, err := agg.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	cached, err := agg.Items(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cached)
	assert.Empty(t, cached)
}

func TestExcerpt_Markdown(t *testing.T) {
	agg := New(nil, nil)

	tests := []struct {
		name string
		html string
		want string
	}{
		{"heading", "<h1>Main Title</h1>", "# Main Title"},
		{"paragraph", "<p>Hello <strong>world</strong></p>", "Hello **world**"},
		{"link", `<p>Read <a href="https://example.com">more</a></p>`, "Read [more](https://example.com)"},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, agg.excerpt(tt.html))
		})
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", 300)

	got := truncate(long, excerptLength)
	assert.Equal(t, excerptLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))

	assert.Equal(t, "short", truncate("short", excerptLength))
}
