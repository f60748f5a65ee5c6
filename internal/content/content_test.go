package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
)

func TestDefault(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	assert.Equal(t, "Commerce Mesh Protocol", p.Hero.Title)
	require.Len(t, p.Features.Items, 4)

	var titles []string
	for _, f := range p.Features.Items {
		titles = append(titles, f.Title)
	}
	assert.Equal(t, []string{"Discover", "Transact", "Trust", "Fulfillment"}, titles)
	assert.NotEmpty(t, p.Fingerprint())
	assert.Equal(t, p.Fingerprint(), Default().Fingerprint())
}

func TestParse_OverridesSections(t *testing.T) {
	doc := []byte(`---
title: Custom
hero:
  title: Mesh
  subtitle: Sub
  buttons:
    - label: Docs
      url: /docs
---
## Roadmap

More to come.
`)
	p, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "Custom", p.Title)
	assert.Equal(t, "Mesh", p.Hero.Title)
	assert.Len(t, p.Hero.Buttons, 1)
	assert.Len(t, p.Features.Items, 4, "features fall back to the defaults")
	assert.Equal(t, Default().Description, p.Description)
	assert.Equal(t, "## Roadmap\n\nMore to come.", p.Body)
	assert.NotEqual(t, Default().Fingerprint(), p.Fingerprint())
}

func TestParse_NoFrontMatter(t *testing.T) {
	p, err := Parse([]byte("Just a body.\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "Just a body.", p.Body)
	assert.Equal(t, Default().Hero, p.Hero)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"missing closing delimiter": "---\ntitle: x\n",
		"unknown field":             "---\ntitel: x\n---\n",
		"button without url":        "---\nhero:\n  title: x\n  buttons:\n    - label: y\n---\n",
		"bad variant":               "---\nhero:\n  title: x\n  buttons:\n    - {label: y, url: /, variant: ghost}\n---\n",
		"feature without title":     "---\nfeatures:\n  items:\n    - icon: x\n---\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestParse_FingerprintIsStable(t *testing.T) {
	doc := []byte("---\ntitle: Same\n---\nbody\n")
	a, err := Parse(doc)
	require.NoError(t, err)
	b, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestLoad(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Title, p.Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.True(t, siteerrors.IsCategory(err, siteerrors.CategoryContent))

	path := filepath.Join(t.TempDir(), "index.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: From file\n---\n"), 0o600))
	p, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "From file", p.Title)
}

func TestDefaultMarkdownRoundTrip(t *testing.T) {
	doc, err := DefaultMarkdown()
	require.NoError(t, err)
	p, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, Default().Hero, p.Hero)
	assert.Equal(t, Default().Features, p.Features)
}

func TestMarkdownRenderer(t *testing.T) {
	r := NewMarkdownRenderer()

	out, err := r.Render("Hello **mesh** <script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<strong>mesh</strong>")
	assert.NotContains(t, string(out), "<script>")

	inline, err := r.RenderInline("Open *protocol*")
	require.NoError(t, err)
	assert.Equal(t, "Open <em>protocol</em>", string(inline))

	link, err := r.RenderInline("[Discord](https://discord.com)")
	require.NoError(t, err)
	assert.Contains(t, string(link), `target="_blank"`)

	empty, err := r.Render("   ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
