// Package site generates the static landing site and splices plugin tags into it.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	"github.com/commercemesh/cmpsite/internal/config"
	"github.com/commercemesh/cmpsite/internal/content"
	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
	"github.com/commercemesh/cmpsite/internal/htmltag"
	"github.com/commercemesh/cmpsite/internal/logfields"
	"github.com/commercemesh/cmpsite/internal/metrics"
	"github.com/commercemesh/cmpsite/internal/plugin"
)

// Report summarizes one build.
type Report struct {
	BuildID     string        `json:"build_id"`
	OutputDir   string        `json:"output_dir"`
	Pages       int           `json:"pages"`
	HeadTags    int           `json:"head_tags"`
	BodyTags    int           `json:"body_tags"`
	Fingerprint string        `json:"fingerprint"`
	Duration    time.Duration `json:"duration"`
}

// Generator renders the landing page into the configured output directory.
type Generator struct {
	cfg      *config.Config
	plugins  *plugin.Registry
	recorder metrics.Recorder
	logger   *slog.Logger
	markdown *content.MarkdownRenderer
	now      func() time.Time
}

// NewGenerator creates a generator. A nil registry means no tags are injected.
func NewGenerator(cfg *config.Config, plugins *plugin.Registry) *Generator {
	if plugins == nil {
		plugins = plugin.NewRegistry()
	}
	return &Generator{
		cfg:      cfg,
		plugins:  plugins,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		markdown: content.NewMarkdownRenderer(),
		now:      time.Now,
	}
}

// WithRecorder sets the metrics recorder.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r != nil {
		g.recorder = r
	}
	return g
}

// WithLogger sets the logger.
func (g *Generator) WithLogger(l *slog.Logger) *Generator {
	if l != nil {
		g.logger = l
	}
	return g
}

// OutputDir returns the directory the generator writes to.
func (g *Generator) OutputDir() string {
	return g.cfg.Output.Directory
}

// Build renders page, injects the tags contributed by the registered plugins
// for env, and writes the result. env is a snapshot taken by the caller.
func (g *Generator) Build(ctx context.Context, page *content.Page, env buildenv.BuildEnvironment) (*Report, error) {
	start := g.now()
	report := &Report{
		BuildID:     uuid.NewString(),
		OutputDir:   g.OutputDir(),
		Fingerprint: page.Fingerprint(),
	}
	logger := g.logger.With(logfields.BuildID(report.BuildID))
	logger.Info("Starting site build", logfields.Output(report.OutputDir), slog.Any("env", env))

	err := g.build(ctx, page, env, report, logger)
	report.Duration = g.now().Sub(start)
	g.recorder.ObserveBuildDuration(report.Duration)

	switch {
	case err == nil:
		g.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
		logger.Info("Site build completed",
			logfields.Pages(report.Pages),
			logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		g.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
	default:
		g.recorder.IncBuildOutcome(metrics.OutcomeFailed)
	}
	return report, err
}

func (g *Generator) build(ctx context.Context, page *content.Page, env buildenv.BuildEnvironment, report *Report, logger *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := renderIndex(g.cfg.Site, page, g.markdown)
	if err != nil {
		return siteerrors.RenderFailed(indexPage, err)
	}

	tags := plugin.CollectTags(ctx, g.plugins, env, logger)
	report.HeadTags, report.BodyTags = len(tags.Head), len(tags.BodyEnd)
	g.recorder.SetInjectedTags(metrics.RegionHead, report.HeadTags)
	g.recorder.SetInjectedTags(metrics.RegionBodyEnd, report.BodyTags)

	doc, err = htmltag.Splice(doc, tags)
	if err != nil {
		return siteerrors.RenderFailed(indexPage, err)
	}

	css, err := stylesheet()
	if err != nil {
		return siteerrors.InternalError("embedded stylesheet missing", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	files := map[string][]byte{
		indexPage: doc,
		cssAsset:  css,
	}
	if err := g.write(files); err != nil {
		return err
	}
	report.Pages = 1
	g.recorder.AddPagesRendered(report.Pages)
	return nil
}

// write stages files in a sibling temp directory and swaps it into place when
// clean output is enabled; otherwise files are written over the existing tree.
func (g *Generator) write(files map[string][]byte) error {
	out := filepath.Clean(g.OutputDir())
	if !g.cfg.Output.Clean {
		return writeFiles(out, files)
	}

	parent := filepath.Dir(out)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return siteerrors.OutputError("mkdir", err)
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(out)+"-staging-*")
	if err != nil {
		return siteerrors.OutputError("create staging", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if err := writeFiles(staging, files); err != nil {
		return err
	}
	// MkdirTemp creates 0700 directories; published output must be world-readable.
	if err := os.Chmod(staging, 0o755); err != nil { //nolint:gosec // public site output
		return siteerrors.OutputError("chmod staging", err)
	}
	if err := os.RemoveAll(out); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return siteerrors.OutputError("clean", err)
	}
	if err := os.Rename(staging, out); err != nil {
		return siteerrors.OutputError("promote staging", err)
	}
	return nil
}

func writeFiles(root string, files map[string][]byte) error {
	for rel, data := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return siteerrors.OutputError("mkdir", err).WithContext("path", p)
		}
		// Public site asset; readable by others is intended.
		if err := os.WriteFile(p, data, 0o644); err != nil { //nolint:gosec // public HTML output, non-sensitive
			return siteerrors.OutputError("write", fmt.Errorf("%s: %w", rel, err))
		}
	}
	return nil
}
