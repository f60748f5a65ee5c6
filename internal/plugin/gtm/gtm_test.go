package gtm

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	"github.com/commercemesh/cmpsite/internal/htmltag"
	"github.com/commercemesh/cmpsite/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prodEnv() buildenv.BuildEnvironment {
	return buildenv.BuildEnvironment{RuntimeMode: buildenv.ModeProduction}
}

func newTestPlugin(t *testing.T, tagID string) (*Plugin, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(Options{TagID: tagID}, logger), &buf
}

func TestInjectHTMLTags_Gating(t *testing.T) {
	tests := []struct {
		name   string
		env    buildenv.BuildEnvironment
		inject bool
	}{
		{"production", prodEnv(), true},
		{"production on main branch", buildenv.BuildEnvironment{RuntimeMode: buildenv.ModeProduction, DeploymentBranch: "main", DeploymentContext: "production"}, true},
		{"non-production", buildenv.BuildEnvironment{RuntimeMode: buildenv.ModeNonProduction}, false},
		{"non-production ignores other flags", buildenv.BuildEnvironment{RuntimeMode: buildenv.ModeNonProduction, DeploymentBranch: "main"}, false},
		{"preview branch", buildenv.BuildEnvironment{RuntimeMode: buildenv.ModeProduction, DeploymentBranch: "preview"}, false},
		{"deploy preview context", buildenv.BuildEnvironment{RuntimeMode: buildenv.ModeProduction, DeploymentContext: "deploy-preview"}, false},
		{"explicitly disabled", buildenv.BuildEnvironment{RuntimeMode: buildenv.ModeProduction, AnalyticsDisabled: true}, false},
		{"zero value snapshot", buildenv.BuildEnvironment{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPlugin(t, "GTM-TEST123")
			set, err := p.InjectHTMLTags(context.Background(), tt.env)
			require.NoError(t, err)
			if !tt.inject {
				assert.Empty(t, set.Head)
				assert.Empty(t, set.BodyEnd)
				return
			}
			require.Len(t, set.Head, 1)
			require.Len(t, set.BodyEnd, 1)
		})
	}
}

func TestInjectHTMLTags_Content(t *testing.T) {
	p, _ := newTestPlugin(t, "GTM-TEST123")
	set, err := p.InjectHTMLTags(context.Background(), prodEnv())
	require.NoError(t, err)

	require.Len(t, set.Head, 1)
	assert.Equal(t, "script", set.Head[0].Name)
	assert.Contains(t, set.Head[0].InnerHTML, "GTM-TEST123")
	assert.Contains(t, set.Head[0].InnerHTML, "googletagmanager.com/gtm.js?id=")
	assert.Contains(t, set.Head[0].InnerHTML, "'dataLayer'")

	require.Len(t, set.BodyEnd, 1)
	assert.Equal(t, "noscript", set.BodyEnd[0].Name)
	assert.Contains(t, set.BodyEnd[0].InnerHTML, "ns.html?id=GTM-TEST123")
}

func TestInjectHTMLTags_DefaultTagID(t *testing.T) {
	p, _ := newTestPlugin(t, "  ")
	assert.Equal(t, DefaultTagID, p.TagID())

	set, err := p.InjectHTMLTags(context.Background(), prodEnv())
	require.NoError(t, err)
	require.Len(t, set.Head, 1)
	assert.Contains(t, set.Head[0].InnerHTML, "GTM-MQ6GKFL8")
	assert.Contains(t, set.BodyEnd[0].InnerHTML, "ns.html?id=GTM-MQ6GKFL8")
}

func TestInjectHTMLTags_Idempotent(t *testing.T) {
	p, _ := newTestPlugin(t, "GTM-TEST123")
	env := prodEnv()

	first, err := p.InjectHTMLTags(context.Background(), env)
	require.NoError(t, err)
	second, err := p.InjectHTMLTags(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, htmltag.RenderAll(first.Head), htmltag.RenderAll(second.Head))
	assert.Equal(t, htmltag.RenderAll(first.BodyEnd), htmltag.RenderAll(second.BodyEnd))
}

func TestInjectHTMLTags_DiagnosticLine(t *testing.T) {
	p, buf := newTestPlugin(t, "GTM-TEST123")
	_, err := p.InjectHTMLTags(context.Background(), buildenv.BuildEnvironment{RuntimeMode: buildenv.ModeProduction, AnalyticsDisabled: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Skipping GTM injection")
	assert.Contains(t, buf.String(), "is_prod=true")
	assert.Contains(t, buf.String(), "gtm_disabled=true")

	buf.Reset()
	_, err = p.InjectHTMLTags(context.Background(), prodEnv())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "tag_id=GTM-TEST123")
}

func TestEvaluate(t *testing.T) {
	d := Evaluate(buildenv.BuildEnvironment{RuntimeMode: buildenv.ModeProduction, DeploymentBranch: "preview"})
	assert.False(t, d.IsProd)
	assert.False(t, d.Inject())

	d = Evaluate(prodEnv())
	assert.True(t, d.IsProd)
	assert.True(t, d.Inject())
}

func TestValidate(t *testing.T) {
	p, _ := newTestPlugin(t, "")
	require.NoError(t, p.Validate(nil))
	require.NoError(t, p.Validate(map[string]any{OptionTagID: "GTM-X"}))
	require.NoError(t, p.Validate(map[string]any{OptionTagID: ""}))
	require.Error(t, p.Validate(map[string]any{OptionTagID: 42}))
	require.Error(t, p.Validate(map[string]any{OptionTagID: "x'</script>"}))
}

func TestValidTagID(t *testing.T) {
	for _, id := range []string{"GTM-MQ6GKFL8", "gtm_test-1", "A"} {
		assert.True(t, ValidTagID(id), id)
	}
	for _, id := range []string{"", "x'</script>", "GTM 1", "GTM-\"", "GTM-é"} {
		assert.False(t, ValidTagID(id), id)
	}
}

func TestNew_InvalidTagIDFallsBackToDefault(t *testing.T) {
	p, buf := newTestPlugin(t, "x'</script><script>alert(1)")
	assert.Equal(t, DefaultTagID, p.TagID())
	assert.Contains(t, buf.String(), "Invalid GTM tag id")

	set, err := p.InjectHTMLTags(context.Background(), prodEnv())
	require.NoError(t, err)
	require.Len(t, set.Head, 1)
	assert.NotContains(t, set.Head[0].InnerHTML, "</script>")
	assert.Contains(t, set.BodyEnd[0].InnerHTML, "ns.html?id="+DefaultTagID)
}

func TestMetadata(t *testing.T) {
	p, _ := newTestPlugin(t, "")
	md := p.Metadata()
	require.NoError(t, md.Validate())
	assert.Equal(t, plugin.PluginTypeTags, md.Type)
	assert.Equal(t, Name, md.Name)
}
