package captcha

import (
	"errors"
	"testing"

	"github.com/use-agent/bookbay/driver"
)

type fakePage struct {
	elements map[string]driver.Element
	evals    []string
	url      string
}

func (p *fakePage) Navigate(string) error { return nil }
func (p *fakePage) URL() string           { return p.url }
func (p *fakePage) HTML() (string, error) { return "", nil }
func (p *fakePage) Eval(js string) (string, error) {
	p.evals = append(p.evals, js)
	return "", nil
}
func (p *fakePage) Element(sel string) (driver.Element, error) {
	if el, ok := p.elements[sel]; ok {
		return el, nil
	}
	return nil, errors.New("not found")
}
func (p *fakePage) Elements(sel string) ([]driver.Element, error) {
	if el, ok := p.elements[sel]; ok {
		return []driver.Element{el}, nil
	}
	return nil, nil
}

type fakeElement struct {
	attrs map[string]string
}

func (e *fakeElement) Click() error                  { return nil }
func (e *fakeElement) Input(string) error            { return nil }
func (e *fakeElement) Clear() error                  { return nil }
func (e *fakeElement) Text() string                  { return "" }
func (e *fakeElement) Attribute(name string) string  { return e.attrs[name] }
func (e *fakeElement) Visible() bool                 { return true }
func (e *fakeElement) Element(string) (driver.Element, error) {
	return nil, errors.New("not found")
}
func (e *fakeElement) Elements(string) ([]driver.Element, error) {
	return nil, nil
}

func TestPresent(t *testing.T) {
	clean := &fakePage{}
	if Present(clean) {
		t.Error("Present reported a challenge on a clean page")
	}

	challenged := &fakePage{elements: map[string]driver.Element{
		"#captcha": &fakeElement{},
	}}
	if !Present(challenged) {
		t.Error("Present missed the #captcha marker")
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		elements map[string]driver.Element
		wantKind Kind
		wantKey  string
		found    bool
	}{
		{
			name: "recaptcha with site key",
			elements: map[string]driver.Element{
				".g-recaptcha": &fakeElement{attrs: map[string]string{"data-sitekey": "rc-key-1"}},
			},
			wantKind: KindRecaptchaV2,
			wantKey:  "rc-key-1",
			found:    true,
		},
		{
			name: "hcaptcha with site key",
			elements: map[string]driver.Element{
				".h-captcha": &fakeElement{attrs: map[string]string{"data-sitekey": "hc-key-1"}},
			},
			wantKind: KindHCaptcha,
			wantKey:  "hc-key-1",
			found:    true,
		},
		{
			name: "widget without site key is not solvable",
			elements: map[string]driver.Element{
				".g-recaptcha": &fakeElement{},
			},
			found: false,
		},
		{
			name:  "clean page",
			found: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det, found := Detect(&fakePage{elements: tt.elements})
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if !found {
				return
			}
			if det.Kind != tt.wantKind || det.SiteKey != tt.wantKey {
				t.Errorf("Detect = %+v", det)
			}
		})
	}
}

func TestMediatorNoChallenge(t *testing.T) {
	m := NewMediator(nil, 0)
	if got := m.Resolve(t.Context(), &fakePage{}); got != StatusAbsent {
		t.Errorf("status = %s, want absent", got)
	}
}
