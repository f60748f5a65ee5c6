package commands

import (
	"context"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	"github.com/commercemesh/cmpsite/internal/content"
	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
	"github.com/commercemesh/cmpsite/internal/metrics"
	"github.com/commercemesh/cmpsite/internal/preview"
	"github.com/commercemesh/cmpsite/internal/site"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	Addr     string        `help:"Listen address" default:"127.0.0.1:3000"`
	Output   string        `short:"o" help:"Override output.directory"`
	Debounce time.Duration `help:"Quiet period before a rebuild" default:"300ms"`
}

func (p *PreviewCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if p.Output != "" {
		cfg.Output.Directory = p.Output
	}

	// One snapshot for the whole session; changes to the process environment
	// need a restart.
	env := buildenv.FromOS()
	promReg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(promReg)
	outputDir := cfg.Output.Directory

	build := func(ctx context.Context) (string, error) {
		cfg, err := root.ReloadConfig()
		if err != nil {
			return "", err
		}
		cfg.Output.Directory = outputDir
		reg, err := newRegistry(cfg, registryOptions{LiveReload: true}, g.Logger)
		if err != nil {
			return "", err
		}
		page, err := content.Load(cfg.Content.Path)
		if err != nil {
			return "", err
		}
		report, err := site.NewGenerator(cfg, reg).WithRecorder(recorder).WithLogger(g.Logger).Build(ctx, page, env)
		if err != nil {
			return "", err
		}
		return report.BuildID, nil
	}

	srv := preview.New(preview.Options{
		Addr:       p.Addr,
		OutputDir:  outputDir,
		WatchFiles: []string{root.Config, cfg.Content.Path},
		Debounce:   p.Debounce,
		Metrics:    promReg,
		Logger:     g.Logger,
	}, build)
	if err := srv.Run(ctx); err != nil {
		return siteerrors.Wrap(err, siteerrors.CategoryRuntime, siteerrors.SeverityFatal, "preview server failed")
	}
	return nil
}
