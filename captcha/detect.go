// Package captcha detects challenge widgets, hands solving off to an
// external provider, and injects the returned token back into the page.
package captcha

import (
	"github.com/use-agent/bookbay/driver"
	"github.com/use-agent/bookbay/selector"
)

// Kind identifies the challenge family.
type Kind string

const (
	KindRecaptchaV2 Kind = "recaptcha_v2"
	KindHCaptcha    Kind = "hcaptcha"
)

// presenceChain matches any known challenge marker, regardless of
// whether its parameters are extractable. Used for the informational
// check during search.
var presenceChain = selector.NewChain("captcha marker",
	`iframe[src*="recaptcha"]`,
	`.g-recaptcha`,
	`#captcha`,
	`.captcha`,
	`iframe[src*="hcaptcha"]`,
)

// Widget chains for the two solvable families.
var (
	recaptchaChain = selector.NewChain("recaptcha widget",
		`.g-recaptcha`, `div[class*="g-recaptcha"]`, `[data-sitekey][class*="recaptcha"]`)
	hcaptchaChain = selector.NewChain("hcaptcha widget",
		`.h-captcha`, `div[class*="h-captcha"]`)
)

// Detection carries the parameters needed to delegate one challenge.
type Detection struct {
	Kind    Kind
	SiteKey string
}

// Present reports whether any challenge marker exists on the page.
func Present(p driver.Page) bool {
	_, err := selector.Resolve(p, presenceChain)
	return err == nil
}

// Detect locates a solvable challenge widget and extracts its site key.
// A widget without a site key is not solvable and reports false.
func Detect(p driver.Page) (Detection, bool) {
	if el, err := selector.Resolve(p, recaptchaChain); err == nil {
		if key := el.Attribute("data-sitekey"); key != "" {
			return Detection{Kind: KindRecaptchaV2, SiteKey: key}, true
		}
	}
	if el, err := selector.Resolve(p, hcaptchaChain); err == nil {
		if key := el.Attribute("data-sitekey"); key != "" {
			return Detection{Kind: KindHCaptcha, SiteKey: key}, true
		}
	}
	return Detection{}, false
}
