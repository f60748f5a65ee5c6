// Package commands implements the cmpsite command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/commercemesh/cmpsite/internal/buildenv"
	"github.com/commercemesh/cmpsite/internal/config"
	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
	"github.com/commercemesh/cmpsite/internal/version"
)

// Global carries the writers and logger shared by all subcommands.
type Global struct {
	Out    io.Writer
	Err    io.Writer
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"site.yaml" type:"path"`
	EnvFile string           `name:"env-file" help:"Dotenv file loaded before the config (default: .env, .env.local)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the landing site"`
	Tags    TagsCmd    `cmd:"" help:"Show the tag decision and the fragments a build would inject"`
	Inject  InjectCmd  `cmd:"" help:"Inject tags into existing HTML files"`
	Preview PreviewCmd `cmd:"" help:"Build, serve and rebuild on change with live reload"`
	Init    InitCmd    `cmd:"" help:"Write a starter site.yaml and content file"`

	cfg    *config.Config
	cfgErr error
}

// AfterApply runs after flag parsing: loads .env, reads the logging section of
// the config when present and installs the process logger.
func (c *CLI) AfterApply(g *Global) error {
	var files []string
	if c.EnvFile != "" {
		files = []string{c.EnvFile}
	}
	loaded, envErr := buildenv.LoadDotenv(files...)

	c.cfg, c.cfgErr = loadConfig(c.Config)

	level := slog.LevelInfo
	format := config.LogFormatText
	if c.cfg != nil {
		level = c.cfg.Logging.Level.SlogLevel()
		format = c.cfg.Logging.Format
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(g.Err, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(g.Err, opts)
	}
	g.Logger = slog.New(handler)
	slog.SetDefault(g.Logger)

	if envErr != nil {
		g.Logger.Warn("Failed to load dotenv file", "error", envErr)
	} else if loaded != "" {
		g.Logger.Debug("Loaded dotenv file", "path", loaded)
	}
	return nil
}

// LoadConfig returns the configuration parsed during AfterApply.
func (c *CLI) LoadConfig() (*config.Config, error) {
	return c.cfg, c.cfgErr
}

// ReloadConfig parses the configuration file again.
func (c *CLI) ReloadConfig() (*config.Config, error) {
	c.cfg, c.cfgErr = loadConfig(c.Config)
	return c.cfg, c.cfgErr
}

// loadConfig reads path; a relative content path is resolved against the
// config file's directory.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p := cfg.Content.Path; p != "" && !filepath.IsAbs(p) {
		cfg.Content.Path = filepath.Join(filepath.Dir(path), p)
	}
	return cfg, nil
}

type exitCode int

// Run parses args, executes the selected command and returns the process exit code.
func Run(ctx context.Context, args []string, out, errOut io.Writer) (code int) {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	global := &Global{Out: out, Err: errOut, Logger: slog.Default()}
	cli := &CLI{}

	defer func() {
		if r := recover(); r != nil {
			ec, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(ec)
		}
	}()

	parser, err := kong.New(cli,
		kong.Name("cmpsite"),
		kong.Description("Static landing site generator with environment-gated tag injection."),
		kong.Vars{"version": version.String()},
		kong.Writers(out, errOut),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Bind(global),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.UsageOnError(),
	)
	if err != nil {
		_, _ = fmt.Fprintln(errOut, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		var pe *kong.ParseError
		if errors.As(err, &pe) {
			_, _ = fmt.Fprintf(errOut, "cmpsite: error: %v\n", err)
			return 2
		}
		_, _ = fmt.Fprintln(errOut, err)
		return 1
	}

	if err := kctx.Run(global, cli); err != nil {
		return siteerrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).WithOutput(errOut).Report(err)
	}
	return 0
}
