// Package htmltag models HTML tags contributed by plugins and splices them into
// rendered pages.
package htmltag

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr is a single tag attribute. Order is preserved when rendering.
type Attr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Tag describes one element to inject. InnerHTML is written verbatim.
type Tag struct {
	Name      string `json:"tagName"`
	Attrs     []Attr `json:"attributes,omitempty"`
	InnerHTML string `json:"innerHTML,omitempty"`
}

// Render serializes the tag. Attribute values are escaped, inner content is not.
func (t Tag) Render() string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(t.Name)
	for _, a := range t.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		if a.Value != "" {
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(a.Value))
			b.WriteByte('"')
		}
	}
	b.WriteByte('>')
	b.WriteString(t.InnerHTML)
	b.WriteString("</")
	b.WriteString(t.Name)
	b.WriteByte('>')
	return b.String()
}

// RenderAll serializes tags one per line.
func RenderAll(tags []Tag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, t.Render())
	}
	return strings.Join(parts, "\n")
}

// Set is the pair of tag lists a plugin contributes to a page.
type Set struct {
	Head    []Tag `json:"headTags"`
	BodyEnd []Tag `json:"postBodyTags"`
}

// IsEmpty reports whether the set contributes nothing.
func (s Set) IsEmpty() bool {
	return len(s.Head) == 0 && len(s.BodyEnd) == 0
}

// Merge appends other's tags after s's tags and returns the result.
func (s Set) Merge(other Set) Set {
	out := Set{
		Head:    make([]Tag, 0, len(s.Head)+len(other.Head)),
		BodyEnd: make([]Tag, 0, len(s.BodyEnd)+len(other.BodyEnd)),
	}
	out.Head = append(append(out.Head, s.Head...), other.Head...)
	out.BodyEnd = append(append(out.BodyEnd, s.BodyEnd...), other.BodyEnd...)
	return out
}
