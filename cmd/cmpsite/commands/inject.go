package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
	"github.com/commercemesh/cmpsite/internal/plugin"
	"github.com/commercemesh/cmpsite/internal/plugin/gtm"
	"github.com/commercemesh/cmpsite/internal/site"
)

// InjectCmd implements the 'inject' command for pages built by another generator.
type InjectCmd struct {
	Dir   string `arg:"" help:"Directory containing generated HTML"`
	TagID string `name:"tag-id" help:"Override plugins.gtm.tag_id"`
}

func (i *InjectCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if st, err := os.Stat(i.Dir); err != nil || !st.IsDir() {
		return siteerrors.ValidationFailed("dir", "not a directory: "+i.Dir)
	}
	env := buildenv.FromOS()
	reg, err := newRegistry(cfg, registryOptions{TagID: i.TagID}, g.Logger)
	if err != nil {
		return err
	}

	set := plugin.CollectTags(ctx, reg, env, g.Logger)
	res, err := site.InjectDir(i.Dir, set, g.Logger, gtm.Marker)
	if err != nil {
		return siteerrors.OutputError("inject", err).WithContext("dir", i.Dir)
	}
	_, _ = fmt.Fprintf(g.Out, "Injected %d file(s), skipped %d\n", res.Injected, res.Skipped)
	return nil
}
