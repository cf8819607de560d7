package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Markdown(t *testing.T) {
	r := New()

	out, err := r.HTML("# Derby\n\nA **late** equaliser.")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Derby</h1>")
	assert.Contains(t, out, "<strong>late</strong>")
}

func TestRenderer_HTMLIsSanitized(t *testing.T) {
	r := New()

	out, err := r.HTML(`<p onclick="steal()">Hello</p><script>alert(1)</script>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello</p>", out)
}

func TestRenderer_MarkdownWithRawScript(t *testing.T) {
	r := New()

	out, err := r.HTML("text\n\n[x](javascript:alert(1))")
	require.NoError(t, err)
	assert.NotContains(t, out, "javascript:")
}

func TestRenderer_LinksGetNoFollow(t *testing.T) {
	r := New()

	out, err := r.HTML(`<a href="https://example.com">site</a>`)
	require.NoError(t, err)
	assert.Contains(t, out, "nofollow")
	assert.Contains(t, out, "noopener")
	assert.Contains(t, out, `target="_blank"`)
}

func TestRenderer_Empty(t *testing.T) {
	out, err := New().HTML("   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<p>x</p>"))
	assert.True(t, LooksLikeHTML("line<br/>line"))
	assert.False(t, LooksLikeHTML("a < b and c > d"))
	assert.False(t, LooksLikeHTML("# heading"))
	assert.False(t, LooksLikeHTML("x < i or a < b"))
	assert.True(t, LooksLikeHTML("closing only</p>"))
}

func TestRenderer_MarkdownWithLessThan(t *testing.T) {
	out, err := New().HTML("## Scores\n\nTeam a < b this week, **bold** claim")
	require.NoError(t, err)
	assert.Contains(t, out, "Scores</h2>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "a &lt; b")
}
