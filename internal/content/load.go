package content

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	siteerrors "github.com/commercemesh/cmpsite/internal/errors"
)

// Load reads a landing page from path. An empty path returns Default().
func Load(path string) (*Page, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, siteerrors.ContentError(path, err)
	}
	page, err := Parse(data)
	if err != nil {
		return nil, siteerrors.ContentError(path, err)
	}
	return page, nil
}

// Parse decodes a front matter document. Front matter fields override the
// built-in defaults one top-level section at a time; the body becomes Page.Body.
func Parse(doc []byte) (*Page, error) {
	fm, body, had, err := split(doc)
	if err != nil {
		return nil, err
	}

	page := Default()
	if had && len(bytes.TrimSpace(fm)) > 0 {
		var override Page
		dec := yaml.NewDecoder(bytes.NewReader(fm))
		dec.KnownFields(true)
		if err := dec.Decode(&override); err != nil {
			return nil, fmt.Errorf("decode front matter: %w", err)
		}
		merge(page, &override)
	}
	page.Body = strings.TrimSpace(string(body))
	page.fingerprint = fingerprint(fm, body)

	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}

func merge(dst, src *Page) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Hero.Title != "" || len(src.Hero.Paragraphs) > 0 || len(src.Hero.Buttons) > 0 {
		dst.Hero = src.Hero
	}
	if src.Features.Title != "" || len(src.Features.Items) > 0 {
		dst.Features = src.Features
	}
}

// Validate checks the fields the page template relies on.
func (p *Page) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(p.Hero.Title) == "" {
		return fmt.Errorf("hero.title is required")
	}
	for i, b := range p.Hero.Buttons {
		if b.Label == "" || b.URL == "" {
			return fmt.Errorf("hero.buttons[%d]: label and url are required", i)
		}
		switch b.Variant {
		case "", ButtonPrimary, ButtonOutline:
		default:
			return fmt.Errorf("hero.buttons[%d]: unknown variant %q", i, b.Variant)
		}
	}
	for i, f := range p.Features.Items {
		if strings.TrimSpace(f.Title) == "" {
			return fmt.Errorf("features.items[%d]: title is required", i)
		}
	}
	return nil
}
