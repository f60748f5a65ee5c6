package site

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/commercemesh/cmpsite/internal/htmltag"
	"github.com/commercemesh/cmpsite/internal/logfields"
)

// InjectResult counts what InjectDir did.
type InjectResult struct {
	Injected int
	Skipped  int
}

// InjectDir splices set into every .html file under root. Files that already
// carry the first tag of the set or any of markers, or lack </head> or </body>,
// are skipped. This serves pages produced by an external site generator.
func InjectDir(root string, set htmltag.Set, logger *slog.Logger, markers ...string) (InjectResult, error) {
	var res InjectResult
	if logger == nil {
		logger = slog.Default()
	}
	if set.IsEmpty() {
		return res, nil
	}
	marker := firstTag(set)

	err := filepath.WalkDir(root, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if htmltag.Contains(b, marker) || containsAny(b, markers) {
			logger.Debug("Skipping already injected file", logfields.Path(p))
			res.Skipped++
			return nil
		}
		out, err := htmltag.Splice(b, set)
		if errors.Is(err, htmltag.ErrNoInsertionPoint) {
			logger.Debug("Skipping file without insertion point", logfields.Path(p))
			res.Skipped++
			return nil
		}
		if err != nil {
			return fmt.Errorf("splice %s: %w", p, err)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, out, info.Mode().Perm()); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
		res.Injected++
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("inject walk: %w", err)
	}
	return res, nil
}

func firstTag(set htmltag.Set) htmltag.Tag {
	if len(set.Head) > 0 {
		return set.Head[0]
	}
	return set.BodyEnd[0]
}

func containsAny(doc []byte, markers []string) bool {
	for _, m := range markers {
		if m != "" && bytes.Contains(doc, []byte(m)) {
			return true
		}
	}
	return false
}
