package browser

import (
	"time"

	"github.com/go-rod/rod"

	"github.com/use-agent/bookbay/driver"
	"github.com/use-agent/bookbay/models"
)

// rodPage adapts a rod page to the driver transport. Lookups use the
// not-found sleeper so that Element returns immediately instead of
// retrying; all waiting lives in the interaction driver where it is
// bounded and observable.
type rodPage struct {
	p       *rod.Page // original page, used for navigation
	lookup  *rod.Page // no-retry clone, used for element queries
	navWait time.Duration
}

func newRodPage(p *rod.Page, navTimeout time.Duration) *rodPage {
	return &rodPage{
		p:       p,
		lookup:  p.Sleeper(rod.NotFoundSleeper),
		navWait: navTimeout,
	}
}

func (r *rodPage) Navigate(url string) error {
	page := r.p.Timeout(r.navWait)
	if err := page.Navigate(url); err != nil {
		return models.NewOpError(models.ErrCodeNavigation, "navigation failed", err)
	}
	// Settle on DOM stability rather than load events: the portal keeps
	// streaming widgets well after onload. A stability timeout is not a
	// navigation failure.
	_ = page.WaitDOMStable(300*time.Millisecond, 0.1)
	return nil
}

func (r *rodPage) Element(sel string) (driver.Element, error) {
	el, err := r.lookup.Element(sel)
	if err != nil {
		return nil, err
	}
	return &rodElement{el: el}, nil
}

func (r *rodPage) Elements(sel string) ([]driver.Element, error) {
	els, err := r.lookup.Elements(sel)
	if err != nil {
		return nil, err
	}
	out := make([]driver.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

func (r *rodPage) Eval(js string) (string, error) {
	res, err := r.p.Eval(js)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (r *rodPage) URL() string {
	info, err := r.p.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (r *rodPage) HTML() (string, error) {
	return r.p.HTML()
}

type rodElement struct {
	el *rod.Element
}

// Click clicks through script rather than synthesized input so that a
// cookie banner or overlay sitting above the target cannot intercept it.
func (r *rodElement) Click() error {
	_, err := r.el.Eval(`() => this.click()`)
	return err
}

func (r *rodElement) Input(text string) error {
	return r.el.Input(text)
}

func (r *rodElement) Clear() error {
	_, err := r.el.Eval(`() => { if ('value' in this) { this.value = ''; this.dispatchEvent(new Event('input', {bubbles: true})) } }`)
	return err
}

func (r *rodElement) Text() string {
	t, err := r.el.Text()
	if err != nil {
		return ""
	}
	return t
}

func (r *rodElement) Attribute(name string) string {
	a, err := r.el.Attribute(name)
	if err != nil || a == nil {
		return ""
	}
	return *a
}

func (r *rodElement) Visible() bool {
	v, err := r.el.Visible()
	if err != nil {
		return false
	}
	return v
}

func (r *rodElement) Element(sel string) (driver.Element, error) {
	el, err := r.el.Sleeper(rod.NotFoundSleeper).Element(sel)
	if err != nil {
		return nil, err
	}
	return &rodElement{el: el}, nil
}

func (r *rodElement) Elements(sel string) ([]driver.Element, error) {
	els, err := r.el.Elements(sel)
	if err != nil {
		return nil, err
	}
	out := make([]driver.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}
