package selector

import (
	"errors"
	"testing"
)

const staticMarkup = `<html><body>
	<div class="primary">first</div>
	<div class="fallback">second</div>
	<div class="fallback">third</div>
</body></html>`

func TestMatchFirstSelectorWins(t *testing.T) {
	doc, err := ParseMarkup(staticMarkup)
	if err != nil {
		t.Fatal(err)
	}
	c := NewChain("target", ".missing", ".fallback", ".primary")

	n, err := Match(doc, c)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if n.FirstChild == nil || n.FirstChild.Data != "second" {
		t.Errorf("matched wrong node")
	}
}

func TestMatchSkipsBadSelectors(t *testing.T) {
	doc, err := ParseMarkup(staticMarkup)
	if err != nil {
		t.Fatal(err)
	}
	c := NewChain("target", ":::garbage:::", ".primary")

	if _, err := Match(doc, c); err != nil {
		t.Errorf("unparsable selector aborted the chain: %v", err)
	}
}

func TestMatchExhausted(t *testing.T) {
	doc, _ := ParseMarkup(staticMarkup)
	c := NewChain("missing", ".nope")

	if _, err := Match(doc, c); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMatchAll(t *testing.T) {
	doc, _ := ParseMarkup(staticMarkup)
	c := NewChain("group", ".fallback", ".primary")

	nodes, err := MatchAll(doc, c)
	if err != nil {
		t.Fatalf("MatchAll: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("got %d nodes, want the two .fallback divs only", len(nodes))
	}
}

func TestMatchEachCollectsAcrossSelectorsDeduped(t *testing.T) {
	doc, _ := ParseMarkup(staticMarkup)
	c := NewChain("all", ".primary", ".fallback", "div")

	nodes := MatchEach(doc, c)
	if len(nodes) != 3 {
		t.Errorf("got %d nodes, want 3 deduped divs", len(nodes))
	}
}
