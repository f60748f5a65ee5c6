package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/commercemesh/cmpsite/internal/config"
	"github.com/commercemesh/cmpsite/internal/content"
	"github.com/commercemesh/cmpsite/internal/version"
)

//go:embed templates/index.html.tmpl templates/site.css
var templateFS embed.FS

const (
	indexPage = "index.html"
	cssAsset  = "assets/site.css"
)

// featureView is a feature card with its description already rendered.
type featureView struct {
	Title       string
	Icon        string
	Description template.HTML
}

type pageData struct {
	Site           config.SiteConfig
	Page           *content.Page
	HeroParagraphs []template.HTML
	Features       []featureView
	Body           template.HTML
	Version        string
}

func parseTemplate(baseURL string) (*template.Template, error) {
	funcs := template.FuncMap{
		"asset": func(p string) string {
			return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(p, "/")
		},
		"link": func(u string) string {
			if isExternal(u) || !strings.HasPrefix(u, "/") {
				return u
			}
			return strings.TrimSuffix(baseURL, "/") + u
		},
		"external": isExternal,
		"buttonClass": func(v content.ButtonVariant) string {
			if v == content.ButtonOutline {
				return "button--outline"
			}
			return "button--primary"
		},
	}
	return template.New("index.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/index.html.tmpl")
}

func isExternal(u string) bool {
	parsed, err := url.Parse(u)
	return err == nil && parsed.IsAbs() && parsed.Host != ""
}

// renderIndex produces the landing page HTML without any plugin tags.
func renderIndex(site config.SiteConfig, page *content.Page, md *content.MarkdownRenderer) ([]byte, error) {
	data := pageData{Site: site, Page: page, Version: version.Version}

	for i, p := range page.Hero.Paragraphs {
		h, err := md.RenderInline(p)
		if err != nil {
			return nil, fmt.Errorf("hero.paragraphs[%d]: %w", i, err)
		}
		data.HeroParagraphs = append(data.HeroParagraphs, h)
	}
	for _, f := range page.Features.Items {
		h, err := md.RenderInline(f.Description)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", f.Title, err)
		}
		data.Features = append(data.Features, featureView{Title: f.Title, Icon: f.Icon, Description: h})
	}
	body, err := md.Render(page.Body)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	data.Body = body

	tmpl, err := parseTemplate(site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func stylesheet() ([]byte, error) {
	return templateFS.ReadFile("templates/site.css")
}
