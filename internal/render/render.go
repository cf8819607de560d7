// Package render turns item content, markdown or HTML, into sanitized HTML
// for the detail view.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var htmlTag = regexp.MustCompile(`(?i)</?(p|div|br|h[1-6]|ul|ol|li|a|img|strong|em|b|i|span|table|blockquote|figure)\b[^>]*>`)

type Renderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

func New() *Renderer {
	return &Renderer{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   newContentPolicy(),
	}
}

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// LooksLikeHTML reports whether content already carries block or inline markup.
func LooksLikeHTML(content string) bool {
	return htmlTag.MatchString(content)
}

// HTML renders content. HTML input is only sanitized; anything else is
// treated as markdown.
func (r *Renderer) HTML(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	if LooksLikeHTML(content) {
		return r.policy.Sanitize(content), nil
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}
