package parser

import (
	"golang.org/x/net/html"

	"github.com/use-agent/bookbay/models"
	"github.com/use-agent/bookbay/selector"
)

// Search-results chains, most specific first. The container chain stops
// at the first locator family that matches anything so one page variant
// is not parsed twice.
var (
	resultContainerChain = selector.NewChain("result containers",
		`.property-result`,
		`.listing-result`,
		`.search-result`,
		`[class*="property"]`,
		`[class*="listing"]`,
		`a[href*="property"], a[href*="listing"]`,
	)
	resultAddressChain = selector.NewChain("result address",
		`.address`, `.property-address`, `[class*="address"]`, `a`)
	resultPriceChain = selector.NewChain("result price",
		`.price`, `.property-price`, `[class*="price"]`)
	resultLinkChain = selector.NewChain("result link", `a`)
)

// resultIDAttrs are the attributes a result's property id can live in.
var resultIDAttrs = []string{"data-property-id", "data-id", "id"}

// ParseSearchResults extracts every result entry from a search page.
func ParseSearchResults(markup string) []models.SearchResult {
	doc, err := selector.ParseMarkup(markup)
	if err != nil {
		return nil
	}

	containers, err := selector.MatchAll(doc, resultContainerChain)
	if err != nil {
		return nil
	}

	results := make([]models.SearchResult, 0, len(containers))
	for _, n := range containers {
		results = append(results, extractResult(n))
	}
	return results
}

func extractResult(n *html.Node) models.SearchResult {
	var r models.SearchResult

	for _, attr := range resultIDAttrs {
		if v := nodeAttr(n, attr); v != "" {
			r.PropertyID = v
			break
		}
	}

	if a, err := selector.Match(n, resultAddressChain); err == nil {
		r.Address = nodeText(a)
		if r.Address == "" {
			r.Address = nodeAttr(a, "title")
		}
	}

	if p, err := selector.Match(n, resultPriceChain); err == nil {
		r.Price = nodeText(p)
	}

	if a, err := selector.Match(n, resultLinkChain); err == nil {
		r.Link = nodeAttr(a, "href")
	}

	// The generic fallback container is itself an anchor; descendant
	// matching cannot see it.
	if n.Data == "a" {
		if r.Link == "" {
			r.Link = nodeAttr(n, "href")
		}
		if r.Address == "" {
			r.Address = nodeText(n)
		}
	}

	return r
}
