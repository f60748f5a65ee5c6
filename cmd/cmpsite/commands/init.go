package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/commercemesh/cmpsite/internal/config"
	"github.com/commercemesh/cmpsite/internal/content"
	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
)

// contentFile is where init places the starter page, relative to the config file.
const contentFile = "content/index.md"

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing files"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	_, _ = fmt.Fprintf(g.Out, "Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}

	page := filepath.Join(filepath.Dir(root.Config), filepath.FromSlash(contentFile))
	if _, err := os.Stat(page); err == nil && !i.Force {
		_, _ = fmt.Fprintf(g.Out, "Keeping existing %s\n", page)
		return nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return siteerrors.OutputError("stat", err).WithContext("path", page)
	}

	doc, err := content.DefaultMarkdown()
	if err != nil {
		return siteerrors.InternalError("render default content", err)
	}
	if err := os.MkdirAll(filepath.Dir(page), 0o755); err != nil {
		return siteerrors.OutputError("mkdir", err).WithContext("path", page)
	}
	if err := os.WriteFile(page, doc, 0o644); err != nil { //nolint:gosec // content source, not a secret
		return siteerrors.OutputError("write", err).WithContext("path", page)
	}
	_, _ = fmt.Fprintf(g.Out, "Writing content to %s\n", page)
	return nil
}
