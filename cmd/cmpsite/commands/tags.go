package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	"github.com/commercemesh/cmpsite/internal/config"
	"github.com/commercemesh/cmpsite/internal/htmltag"
	"github.com/commercemesh/cmpsite/internal/plugin"
	"github.com/commercemesh/cmpsite/internal/plugin/gtm"
)

// TagsCmd implements the 'tags' command.
type TagsCmd struct {
	Format string `short:"f" help:"Output format" enum:"text,json" default:"text"`
	TagID  string `name:"tag-id" help:"Override plugins.gtm.tag_id"`
}

type tagsReport struct {
	Environment buildenv.BuildEnvironment `json:"environment"`
	GTMEnabled  bool                      `json:"gtm_enabled"`
	IsProd      bool                      `json:"is_prod"`
	Disabled    bool                      `json:"gtm_disabled"`
	Inject      bool                      `json:"inject"`
	Head        []htmltag.Tag             `json:"head"`
	BodyEnd     []htmltag.Tag             `json:"body_end"`
}

func (t *TagsCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	env := buildenv.FromOS()
	reg, err := newRegistry(cfg, registryOptions{TagID: t.TagID}, g.Logger)
	if err != nil {
		return err
	}

	d := gtm.Evaluate(env)
	set := plugin.CollectTags(ctx, reg, env, g.Logger)
	rep := tagsReport{
		Environment: env,
		GTMEnabled:  cfg.PluginEnabled(config.PluginGTM, true),
		IsProd:      d.IsProd,
		Disabled:    d.Disabled,
		Inject:      cfg.PluginEnabled(config.PluginGTM, true) && d.Inject(),
		Head:        nonNil(set.Head),
		BodyEnd:     nonNil(set.BodyEnd),
	}

	if t.Format == "json" {
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	writeTagsText(g.Out, rep)
	return nil
}

func writeTagsText(w io.Writer, rep tagsReport) {
	env := rep.Environment
	_, _ = fmt.Fprintf(w, "runtime_mode=%s deployment_branch=%q deployment_context=%q\n",
		env.RuntimeMode, env.DeploymentBranch, env.DeploymentContext)
	_, _ = fmt.Fprintf(w, "gtm_enabled=%t is_prod=%t gtm_disabled=%t inject=%t\n",
		rep.GTMEnabled, rep.IsProd, rep.Disabled, rep.Inject)
	if len(rep.Head) == 0 && len(rep.BodyEnd) == 0 {
		_, _ = fmt.Fprintln(w, "no tags")
		return
	}
	if len(rep.Head) > 0 {
		_, _ = fmt.Fprintf(w, "\n<!-- head -->\n%s\n", htmltag.RenderAll(rep.Head))
	}
	if len(rep.BodyEnd) > 0 {
		_, _ = fmt.Fprintf(w, "\n<!-- body end -->\n%s\n", htmltag.RenderAll(rep.BodyEnd))
	}
}

func nonNil(tags []htmltag.Tag) []htmltag.Tag {
	if tags == nil {
		return []htmltag.Tag{}
	}
	return tags
}
