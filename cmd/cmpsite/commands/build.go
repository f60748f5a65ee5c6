package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	"github.com/commercemesh/cmpsite/internal/config"
	"github.com/commercemesh/cmpsite/internal/content"
	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
	"github.com/commercemesh/cmpsite/internal/metrics"
	"github.com/commercemesh/cmpsite/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Override output.directory"`
	TagID  string `name:"tag-id" help:"Override plugins.gtm.tag_id"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}

	env := buildenv.FromOS()
	report, err := runBuild(ctx, cfg, env, registryOptions{TagID: b.TagID}, g.Logger)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "Built %s: %d page(s), %d head tag(s), %d body tag(s) in %s\n",
		report.OutputDir, report.Pages, report.HeadTags, report.BodyTags, report.Duration.Round(time.Millisecond))
	return nil
}

// runBuild performs one build with a fresh Prometheus registry and writes the
// metrics textfile when configured, even if the build failed.
func runBuild(ctx context.Context, cfg *config.Config, env buildenv.BuildEnvironment, opts registryOptions, logger *slog.Logger) (*site.Report, error) {
	reg, err := newRegistry(cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	page, err := content.Load(cfg.Content.Path)
	if err != nil {
		return nil, err
	}

	promReg := prom.NewRegistry()
	gen := site.NewGenerator(cfg, reg).
		WithRecorder(metrics.NewPrometheusRecorder(promReg)).
		WithLogger(logger)
	report, buildErr := gen.Build(ctx, page, env)

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, promReg); err != nil {
			logger.Warn("Failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
		}
	}
	if buildErr != nil {
		if _, ok := siteerrors.As(buildErr); !ok {
			buildErr = siteerrors.Wrap(buildErr, siteerrors.CategoryRuntime, siteerrors.SeverityError, "build interrupted")
		}
		return nil, buildErr
	}
	return report, nil
}
