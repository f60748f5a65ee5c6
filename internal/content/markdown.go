package content

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// MarkdownRenderer converts Markdown snippets to sanitized HTML.
type MarkdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewMarkdownRenderer builds a renderer with a UGC sanitizing policy.
func NewMarkdownRenderer() *MarkdownRenderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "code")
	policy.RequireNoFollowOnLinks(false)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return &MarkdownRenderer{md: goldmark.New(), policy: policy}
}

// Render returns block HTML for src. Empty input renders to "".
func (r *MarkdownRenderer) Render(src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	//nolint:gosec // output passed through bluemonday
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// RenderInline renders src and strips a single wrapping paragraph, for use
// inside elements that already are paragraphs.
func (r *MarkdownRenderer) RenderInline(src string) (template.HTML, error) {
	out, err := r.Render(src)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(out))
	if strings.HasPrefix(s, "<p>") && strings.HasSuffix(s, "</p>") && strings.Count(s, "<p>") == 1 {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "<p>"), "</p>")
	}
	return template.HTML(s), nil //nolint:gosec // sanitized above
}
