package content

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in Commerce Mesh Protocol landing page.
func Default() *Page {
	p := &Page{
		Title:       "Commerce Mesh Protocol - Open Coordination Layer for AI-Native Commerce",
		Description: "The Commerce Mesh Protocol enables AI agents, brands, and commerce infrastructure to coordinate through standardized, decentralized nodes.",
		Hero: Hero{
			Title:    "Commerce Mesh Protocol",
			Subtitle: "Open Protocol for Commerce Infrastructure",
			Paragraphs: []string{
				"Commerce is undergoing a fundamental transformation. As AI agents become the primary interface " +
					"for discovery and purchasing, the need for open, interoperable protocols has never been greater.",
				"The Commerce Mesh Protocol (CMP) enables AI agents, brands, and commerce infrastructure to " +
					"coordinate through standardized, decentralized nodes, creating a more open and efficient " +
					"commerce ecosystem.",
			},
			Buttons: []Button{
				{Label: "Learn More →", URL: "/docs/intro", Variant: ButtonPrimary},
				{Label: "Join the Community", URL: "https://discord.com/channels/1381756773563633786", Variant: ButtonOutline},
			},
		},
		Features: FeatureSection{
			Title:    "Four Nodes, Infinite Possibilities",
			Subtitle: "The Commerce Mesh Protocol separates commerce into modular functions, each operating as independent nodes on the network.",
			Items: []Feature{
				{
					Title: "Discover",
					Icon:  "🔍",
					Description: "Universal search and publication of commerce data. Discovery Nodes enable " +
						"AI agents to find products, services, and offers across the entire mesh, " +
						"not just within walled gardens.",
				},
				{
					Title: "Transact",
					Icon:  "💳",
					Description: "AI-initiated, open API commerce. Transaction Nodes process payments through " +
						"multiple rails while maintaining protocol compatibility, enabling true " +
						"competition and innovation.",
				},
				{
					Title: "Trust",
					Icon:  "🛡️",
					Description: "Programmable identity and reputation. Trust Nodes aggregate signals across " +
						"the mesh, providing portable reputation that follows sellers everywhere, " +
						"not trapped in platform silos.",
				},
				{
					Title: "Fulfillment",
					Icon:  "📦",
					Description: "Distributed shipping and routing. Fulfillment Nodes coordinate logistics " +
						"across carriers and providers, optimizing for speed, cost, or carbon " +
						"footprint based on buyer preferences.",
				},
			},
			CTA: "Not an e-commerce platform. An extensible, open protocol for the next generation of commerce.",
			Audience: "Built for AI agent developers, direct-to-consumer brands, commerce infrastructure architects, " +
				"and technology ecosystem influencers.",
		},
	}
	fm, err := yaml.Marshal(p)
	if err == nil {
		p.fingerprint = fingerprint(fm, nil)
	}
	return p
}

// DefaultMarkdown renders the built-in page as a front matter document, used by `cmpsite init`.
func DefaultMarkdown() ([]byte, error) {
	fm, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("marshal default content: %w", err)
	}
	return join(fm, []byte("")), nil
}
