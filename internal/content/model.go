// Package content defines the landing page model and loads it from Markdown
// files with YAML front matter.
package content

// Page is the landing page: a hero banner followed by a grid of feature cards.
type Page struct {
	// Title is the document <title>.
	Title string `yaml:"title"`
	// Description feeds the meta description tag.
	Description string         `yaml:"description"`
	Hero        Hero           `yaml:"hero"`
	Features    FeatureSection `yaml:"features"`

	// Body is optional Markdown rendered below the features. It comes from the
	// part of the source file after the front matter.
	Body string `yaml:"-"`

	fingerprint string
}

// Hero is the banner at the top of the page.
type Hero struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	// Paragraphs are Markdown snippets.
	Paragraphs []string `yaml:"paragraphs"`
	Buttons    []Button `yaml:"buttons"`
}

// ButtonVariant selects the button styling.
type ButtonVariant string

const (
	ButtonPrimary ButtonVariant = "primary"
	ButtonOutline ButtonVariant = "outline"
)

// Button is a call-to-action link in the hero.
type Button struct {
	Label   string        `yaml:"label"`
	URL     string        `yaml:"url"`
	Variant ButtonVariant `yaml:"variant,omitempty"`
}

// FeatureSection groups the feature cards with a header and closing call to action.
type FeatureSection struct {
	Title    string    `yaml:"title"`
	Subtitle string    `yaml:"subtitle"`
	Items    []Feature `yaml:"items"`
	CTA      string    `yaml:"cta,omitempty"`
	Audience string    `yaml:"audience,omitempty"`
}

// Feature is one card.
type Feature struct {
	Title string `yaml:"title"`
	Icon  string `yaml:"icon"`
	// Description is a Markdown snippet.
	Description string `yaml:"description"`
}

// Fingerprint identifies the page source; it changes whenever front matter or body change.
func (p *Page) Fingerprint() string {
	return p.fingerprint
}
