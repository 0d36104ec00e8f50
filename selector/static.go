package selector

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ParseMarkup parses raw page markup for static chain matching.
func ParseMarkup(markup string) (*html.Node, error) {
	return html.Parse(strings.NewReader(markup))
}

// Match applies the chain to parsed static markup and returns the node
// matched by the first selector that matches. Selectors that fail to
// parse are skipped, the same way a live resolution skips locators the
// page rejects.
func Match(doc *html.Node, c Chain) (*html.Node, error) {
	for _, sel := range c.Selectors {
		parsed, err := cascadia.Parse(sel)
		if err != nil {
			continue
		}
		if node := cascadia.Query(doc, parsed); node != nil {
			return node, nil
		}
	}
	return nil, ErrNotFound
}

// MatchAll applies the chain to parsed static markup and returns every
// node matched by the first selector that matches anything.
func MatchAll(doc *html.Node, c Chain) ([]*html.Node, error) {
	for _, sel := range c.Selectors {
		parsed, err := cascadia.Parse(sel)
		if err != nil {
			continue
		}
		if nodes := cascadia.QueryAll(doc, parsed); len(nodes) > 0 {
			return nodes, nil
		}
	}
	return nil, ErrNotFound
}

// MatchEach collects the matches of every selector in the chain rather
// than stopping at the first hit. Time-slot scans use this: each locator
// describes a different widget family and several can coexist on one
// page.
func MatchEach(doc *html.Node, c Chain) []*html.Node {
	var nodes []*html.Node
	seen := map[*html.Node]bool{}
	for _, sel := range c.Selectors {
		parsed, err := cascadia.Parse(sel)
		if err != nil {
			continue
		}
		for _, n := range cascadia.QueryAll(doc, parsed) {
			if !seen[n] {
				seen[n] = true
				nodes = append(nodes, n)
			}
		}
	}
	return nodes
}
