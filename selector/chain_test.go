package selector

import (
	"errors"
	"testing"

	"github.com/use-agent/bookbay/driver"
	"github.com/use-agent/bookbay/models"
)

// fakePage records every lookup so tests can assert short-circuiting.
type fakePage struct {
	lookups  []string
	elements map[string][]driver.Element
}

func (p *fakePage) Navigate(string) error { return nil }
func (p *fakePage) URL() string           { return "" }
func (p *fakePage) HTML() (string, error) { return "", nil }
func (p *fakePage) Eval(string) (string, error) {
	return "", nil
}

func (p *fakePage) Element(sel string) (driver.Element, error) {
	p.lookups = append(p.lookups, sel)
	if els := p.elements[sel]; len(els) > 0 {
		return els[0], nil
	}
	return nil, errors.New("not found")
}

func (p *fakePage) Elements(sel string) ([]driver.Element, error) {
	p.lookups = append(p.lookups, sel)
	return p.elements[sel], nil
}

type fakeElement struct {
	text     string
	attrs    map[string]string
	visible  bool
	children map[string][]driver.Element
	clicked  int
	typed    string
}

func (e *fakeElement) Click() error { e.clicked++; return nil }
func (e *fakeElement) Input(text string) error {
	e.typed += text
	return nil
}
func (e *fakeElement) Clear() error { e.typed = ""; return nil }
func (e *fakeElement) Text() string { return e.text }
func (e *fakeElement) Attribute(name string) string {
	return e.attrs[name]
}
func (e *fakeElement) Visible() bool { return e.visible }
func (e *fakeElement) Element(sel string) (driver.Element, error) {
	if els := e.children[sel]; len(els) > 0 {
		return els[0], nil
	}
	return nil, errors.New("not found")
}
func (e *fakeElement) Elements(sel string) ([]driver.Element, error) {
	return e.children[sel], nil
}

func TestResolveFirstMatchWins(t *testing.T) {
	want := &fakeElement{text: "target"}
	p := &fakePage{elements: map[string][]driver.Element{
		".second": {want},
	}}
	c := NewChain("target", ".first", ".second", ".third")

	got, err := Resolve(p, c)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Text() != "target" {
		t.Errorf("resolved wrong element: %q", got.Text())
	}
	if len(p.lookups) != 2 || p.lookups[0] != ".first" || p.lookups[1] != ".second" {
		t.Errorf("lookups = %v, want [.first .second] only", p.lookups)
	}
}

func TestResolveExhaustedChain(t *testing.T) {
	p := &fakePage{}
	c := NewChain("missing", ".a", ".b")

	_, err := Resolve(p, c)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	var opErr *models.OpError
	if !errors.As(err, &opErr) || opErr.Code != models.ErrCodeSelectorNotFound {
		t.Errorf("err = %v, want SELECTOR_NOT_FOUND code", err)
	}
	if len(p.lookups) != 2 {
		t.Errorf("lookups = %v, want every selector tried", p.lookups)
	}
}

func TestResolveAll(t *testing.T) {
	a, b := &fakeElement{text: "a"}, &fakeElement{text: "b"}
	p := &fakePage{elements: map[string][]driver.Element{
		".many": {a, b},
	}}
	c := NewChain("group", ".none", ".many")

	got, err := ResolveAll(p, c)
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d elements, want 2", len(got))
	}
}

func TestResolveIn(t *testing.T) {
	child := &fakeElement{text: "child"}
	parent := &fakeElement{children: map[string][]driver.Element{
		".inner": {child},
	}}
	c := NewChain("scoped", ".missing", ".inner")

	got, err := ResolveIn(parent, c)
	if err != nil {
		t.Fatalf("ResolveIn: %v", err)
	}
	if got.Text() != "child" {
		t.Errorf("resolved %q, want child", got.Text())
	}
}
