// Package selector implements ordered fallback resolution of logical
// page targets. A Chain lists alternative locators for one target, most
// specific first, so cosmetic page redesigns degrade to the more generic
// patterns instead of failing outright.
package selector

import (
	"github.com/use-agent/bookbay/driver"
	"github.com/use-agent/bookbay/models"
)

// ErrNotFound is returned when every selector in a chain has been tried
// against the page and none matched. Callers treat it as "feature absent
// on this page variant", not as a failure.
var ErrNotFound = models.NewOpError(models.ErrCodeSelectorNotFound,
	"no selector in chain matched", nil)

// Chain is an ordered list of alternative CSS locators for one logical
// target.
type Chain struct {
	Name      string
	Selectors []string
}

// NewChain builds a chain for the named target.
func NewChain(name string, selectors ...string) Chain {
	return Chain{Name: name, Selectors: selectors}
}

// Resolve tries each selector in order and returns the element matched
// by the first selector that finds one. Later selectors are not
// evaluated once a match is found.
func Resolve(p driver.Page, c Chain) (driver.Element, error) {
	for _, sel := range c.Selectors {
		el, err := p.Element(sel)
		if err == nil && el != nil {
			return el, nil
		}
	}
	return nil, ErrNotFound
}

// ResolveAll tries each selector in order and returns every element
// matched by the first selector that matches anything.
func ResolveAll(p driver.Page, c Chain) ([]driver.Element, error) {
	for _, sel := range c.Selectors {
		els, err := p.Elements(sel)
		if err == nil && len(els) > 0 {
			return els, nil
		}
	}
	return nil, ErrNotFound
}

// ResolveIn resolves the chain against a single element's subtree.
func ResolveIn(el driver.Element, c Chain) (driver.Element, error) {
	for _, sel := range c.Selectors {
		child, err := el.Element(sel)
		if err == nil && child != nil {
			return child, nil
		}
	}
	return nil, ErrNotFound
}
