// Package search drives the listing discovery flow: navigation, form
// fill (with omnibox and sitewide-link fallbacks), result parsing, and
// exact-address matching.
package search

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/use-agent/bookbay/browser"
	"github.com/use-agent/bookbay/captcha"
	"github.com/use-agent/bookbay/config"
	"github.com/use-agent/bookbay/models"
	"github.com/use-agent/bookbay/parser"
	"github.com/use-agent/bookbay/selector"
)

// Selector chains for the search surface, most specific first.
var (
	omniboxChain = selector.NewChain("search omnibox",
		`input[placeholder*="Search"]`,
		`input[type="search"]`,
		`input[aria-label*="Search"]`,
		`input[name*="search"]`,
		`input[class*="search"]`,
	)
	omniboxSubmitChain = selector.NewChain("omnibox submit",
		`button[type="submit"]`)
	addressFieldChain = selector.NewChain("address field",
		`input[name="address"]`,
		`input[placeholder*="address"]`,
		`input[id*="address"]`,
		`#search-address`,
		`.search-address`,
	)
	cityFieldChain = selector.NewChain("city field",
		`input[name="city"]`,
		`input[placeholder*="city"]`,
		`input[id*="city"]`,
		`#search-city`,
		`.search-city`,
	)
	provinceSelectChain = selector.NewChain("province select",
		`select[name="province"]`,
		`select[name="state"]`,
		`select[id*="province"]`,
		`#search-province`,
	)
	formSubmitChain = selector.NewChain("search submit",
		`button[type="submit"]`,
		`input[type="submit"]`,
		`button[class*="search"]`,
		`.search-button`,
		`#search-button`,
	)
	siteLinkChain = selector.NewChain("search link",
		`a[href*="search"]`,
		`a[href*="listing"]`,
		`a[href*="property"]`,
	)
)

// omniboxFormSubmitJS submits the form owning the omnibox when no
// explicit submit control exists.
const omniboxFormSubmitJS = `() => {
	const sels = ['input[placeholder*="Search"]', 'input[type="search"]',
		'input[aria-label*="Search"]', 'input[name*="search"]', 'input[class*="search"]'];
	for (const sel of sels) {
		const el = document.querySelector(sel);
		if (el && el.form) { el.form.submit(); return 'submitted' }
	}
	return ''
}`

// Orchestrator runs one search operation over one session.
type Orchestrator struct {
	d    *browser.Driver
	site config.SiteConfig
}

// New builds an orchestrator over the given driver.
func New(d *browser.Driver, site config.SiteConfig) *Orchestrator {
	return &Orchestrator{d: d, site: site}
}

// FindByAddress runs the full discovery flow for a free-text address.
// It returns the merged detail+summary record for the exact match, the
// number of result entries seen, and an error only for operation-level
// failures; no match is a clean (nil, n, nil).
func (o *Orchestrator) FindByAddress(ctx context.Context, address string) (*models.PropertyRecord, int, error) {
	query := parser.ParseAddress(address)
	slog.Info("searching for property", "address", query.Full,
		"city", query.City, "province", query.Province, "postal", query.PostalCode)

	if err := o.d.Navigate(ctx, o.site.BaseURL); err != nil {
		return nil, 0, err
	}

	// Informational only: an authenticated session is assumed, so a
	// challenge on the landing page is logged and scraping proceeds.
	if captcha.Present(o.d.Page()) {
		slog.Warn("captcha detected on search page, continuing")
	}

	if !o.tryOmnibox(ctx, query.Full) {
		if !o.fillSearchForm(ctx, query) {
			slog.Warn("search form fill failed, trying sitewide links")
			o.trySitewideLinks(ctx, query.Full)
		}
	}

	// Let the results settle before reading the page.
	o.d.Pace(ctx)

	markup, err := o.d.Page().HTML()
	if err != nil {
		return nil, 0, models.NewOpError(models.ErrCodeNavigation, "failed to read results page", err)
	}

	results := parser.ParseSearchResults(markup)
	slog.Info("search results parsed", "count", len(results))
	if len(results) == 0 {
		return nil, 0, nil
	}

	match := MatchResult(results, query)
	if match == nil {
		return nil, len(results), nil
	}
	slog.Info("exact match found", "property_id", match.PropertyID, "address", match.Address)

	record := o.fetchDetails(ctx, match)
	merged := mergeRecord(record, match)
	return merged, len(results), nil
}

// tryOmnibox submits the full address through a single-field search box.
func (o *Orchestrator) tryOmnibox(ctx context.Context, fullAddress string) bool {
	if !o.d.Type(ctx, omniboxChain, fullAddress) {
		return false
	}
	if o.d.Click(ctx, omniboxSubmitChain) {
		return true
	}
	if res, err := o.d.Page().Eval(omniboxFormSubmitJS); err == nil && res == "submitted" {
		return true
	}
	return false
}

// fillSearchForm falls back to the structured multi-field form.
func (o *Orchestrator) fillSearchForm(ctx context.Context, query models.AddressComponents) bool {
	if !o.d.Type(ctx, addressFieldChain, query.Full) {
		slog.Warn("could not find address input field")
	}
	if query.City != "" && !o.d.Type(ctx, cityFieldChain, query.City) {
		slog.Warn("could not find city input field")
	}
	if query.Province != "" && !o.selectProvince(ctx, query.Province) {
		slog.Warn("could not find province select field")
	}
	if o.d.Click(ctx, formSubmitChain) {
		return true
	}
	slog.Warn("could not find search submit control")
	return false
}

// selectProvince picks the province option by value first, then by
// visible name.
func (o *Orchestrator) selectProvince(ctx context.Context, code string) bool {
	sel, found := o.d.WaitPresent(ctx, provinceSelectChain, 0)
	if !found {
		return false
	}
	options, err := sel.Elements("option")
	if err != nil {
		return false
	}
	for _, opt := range options {
		if opt.Attribute("value") == code {
			return opt.Click() == nil
		}
	}
	name := parser.ProvinceName(code)
	for _, opt := range options {
		if opt.Text() == name {
			return opt.Click() == nil
		}
	}
	return false
}

// trySitewideLinks is the last resort: load the dedicated search page,
// else follow a generic search/listing link, and retry the omnibox once.
func (o *Orchestrator) trySitewideLinks(ctx context.Context, fullAddress string) {
	if o.site.SearchEndpoint != "" {
		if err := o.d.Navigate(ctx, o.site.BaseURL+o.site.SearchEndpoint); err == nil &&
			o.tryOmnibox(ctx, fullAddress) {
			return
		}
	}
	if o.d.Click(ctx, siteLinkChain) {
		o.d.Pace(ctx)
		o.tryOmnibox(ctx, fullAddress)
	}
}

// fetchDetails loads the listing page and parses its fields and showing
// times. A result without a link falls back to the deterministic
// property path. Failure yields nil: the summary record still stands on
// its own.
func (o *Orchestrator) fetchDetails(ctx context.Context, match *models.SearchResult) *models.PropertyRecord {
	detailURL := o.absoluteURL(match.Link)
	if detailURL == "" && match.PropertyID != "" {
		detailURL = o.site.BaseURL + o.site.PropertyEndpoint + "/" + match.PropertyID
	}
	if detailURL == "" {
		return nil
	}
	slog.Info("fetching property details", "url", detailURL)

	if err := o.d.Navigate(ctx, detailURL); err != nil {
		slog.Warn("detail page navigation failed", "url", detailURL, "error", err)
		return nil
	}
	if captcha.Present(o.d.Page()) {
		slog.Warn("captcha detected on property page, continuing")
	}

	markup, err := o.d.Page().HTML()
	if err != nil {
		slog.Warn("failed to read detail page", "error", err)
		return nil
	}

	record := parser.ParseListing(markup)
	record.ShowingTimes = parser.ParseTimeSlots(markup)
	record.URL = detailURL
	return &record
}

// absoluteURL resolves a result link against the site base.
func (o *Orchestrator) absoluteURL(link string) string {
	if link == "" {
		return ""
	}
	base, err := url.Parse(o.site.BaseURL)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
