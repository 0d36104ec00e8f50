package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/use-agent/bookbay/models"
	"github.com/use-agent/bookbay/selector"
)

// Static selector chains for the listing detail page, most specific
// first.
var (
	propertyIDChain = selector.NewChain("property id",
		`[data-property-id]`, `.property-id`, `#property-id`)
	priceChain = selector.NewChain("price",
		`.price`, `.property-price`, `[class*="price"]`, `.listing-price`)
	detailsChain = selector.NewChain("details block",
		`.property-details`, `.listing-details`, `.property-info`)
	propertyTypeChain = selector.NewChain("property type",
		`.property-type`, `.listing-type`, `[class*="type"]`)
	descriptionChain = selector.NewChain("description",
		`.description`, `.property-description`, `.listing-description`)
	imageChain = selector.NewChain("listing images",
		`img[src*="property"]`, `img[src*="listing"]`)
)

var (
	priceRe    = regexp.MustCompile(`\$?[\d,]+`)
	bedroomRe  = regexp.MustCompile(`(?i)(\d+)\s*(?:bed|br|bedroom)`)
	bathroomRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:bath|ba|bathroom)`)
	sqftRe     = regexp.MustCompile(`(?i)(\d+(?:,\d+)*)\s*(?:sq\.?\s*ft|sqft|square\s*feet)`)
)

// ParseListing pulls the property fields out of detail-page markup.
// Every field is best-effort; a chain that matches nothing leaves its
// field empty.
func ParseListing(markup string) models.PropertyRecord {
	rec := models.PropertyRecord{Images: []string{}}

	doc, err := selector.ParseMarkup(markup)
	if err != nil {
		return rec
	}

	if n, err := selector.Match(doc, propertyIDChain); err == nil {
		rec.PropertyID = nodeAttr(n, "data-property-id")
		if rec.PropertyID == "" {
			rec.PropertyID = nodeText(n)
		}
	}

	if n, err := selector.Match(doc, priceChain); err == nil {
		rec.Price = priceRe.FindString(nodeText(n))
	}

	if n, err := selector.Match(doc, detailsChain); err == nil {
		details := nodeText(n)
		if m := bedroomRe.FindStringSubmatch(details); m != nil {
			rec.Bedrooms = m[1]
		}
		if m := bathroomRe.FindStringSubmatch(details); m != nil {
			rec.Bathrooms = m[1]
		}
		if m := sqftRe.FindStringSubmatch(details); m != nil {
			rec.SquareFeet = strings.ReplaceAll(m[1], ",", "")
		}
	}

	if n, err := selector.Match(doc, propertyTypeChain); err == nil {
		rec.PropertyType = nodeText(n)
	}

	if n, err := selector.Match(doc, descriptionChain); err == nil {
		rec.Description = nodeText(n)
	}

	for _, n := range selector.MatchEach(doc, imageChain) {
		if src := nodeAttr(n, "src"); src != "" {
			rec.Images = append(rec.Images, src)
		}
	}

	return rec
}

// nodeText is the trimmed visible text of a static node.
func nodeText(n *html.Node) string {
	return strings.TrimSpace(goquery.NewDocumentFromNode(n).Text())
}

// nodeAttr reads an attribute off a static node, "" when absent.
func nodeAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
