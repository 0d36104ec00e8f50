// Package driver defines the narrow browser transport consumed by the
// rest of the system. The production implementation is Rod-backed (see
// package browser); tests substitute in-memory fakes.
package driver

// Page is one browsing tab.
type Page interface {
	// Navigate loads the URL and blocks until the DOM has settled.
	Navigate(url string) error

	// Element returns the first element matching the CSS selector, or an
	// error if none is present right now (no implicit waiting).
	Element(selector string) (Element, error)

	// Elements returns every element matching the CSS selector. A page
	// with no matches yields an empty slice, not an error.
	Elements(selector string) ([]Element, error)

	// Eval runs the JS function string in page context and returns the
	// result coerced to a string.
	Eval(js string) (string, error)

	// URL is the current location.
	URL() string

	// HTML is the rendered page markup.
	HTML() (string, error)
}

// Element is one resolved DOM node.
type Element interface {
	// Click performs a script-level click, bypassing overlay interception.
	Click() error

	// Input appends text to the element without clearing it first.
	Input(text string) error

	// Clear empties the element's current value.
	Clear() error

	// Text is the element's visible text, empty on failure.
	Text() string

	// Attribute returns the named attribute, empty when absent.
	Attribute(name string) string

	// Visible reports whether the element is currently displayed.
	Visible() bool

	// Element finds the first descendant matching the CSS selector.
	Element(selector string) (Element, error)

	// Elements finds every descendant matching the CSS selector.
	Elements(selector string) ([]Element, error)
}
