package parser

import "testing"

func TestParseSearchResults(t *testing.T) {
	markup := `<html><body>
		<div class="property-result" data-property-id="C-100">
			<span class="address">10 Navy Wharf Court #3209, Toronto, ON</span>
			<span class="price">$899,000</span>
			<a href="/property/C-100">View</a>
		</div>
		<div class="property-result" data-id="C-200">
			<span class="address">55 Front St, Toronto, ON</span>
			<a href="/property/C-200">View</a>
		</div>
	</body></html>`

	results := ParseSearchResults(markup)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.PropertyID != "C-100" {
		t.Errorf("PropertyID = %q", first.PropertyID)
	}
	if first.Address != "10 Navy Wharf Court #3209, Toronto, ON" {
		t.Errorf("Address = %q", first.Address)
	}
	if first.Price != "$899,000" {
		t.Errorf("Price = %q", first.Price)
	}
	if first.Link != "/property/C-100" {
		t.Errorf("Link = %q", first.Link)
	}

	if results[1].PropertyID != "C-200" {
		t.Errorf("second PropertyID = %q, want fallback data-id", results[1].PropertyID)
	}
}

func TestParseSearchResultsAnchorFallback(t *testing.T) {
	// No result containers at all: bare listing anchors are the last
	// resort and are themselves the address carriers.
	markup := `<html><body>
		<a href="/property/C-300">77 Adelaide St W, Toronto, ON</a>
		<a href="/about">About us</a>
	</body></html>`

	results := ParseSearchResults(markup)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Link != "/property/C-300" {
		t.Errorf("Link = %q", results[0].Link)
	}
	if results[0].Address != "77 Adelaide St W, Toronto, ON" {
		t.Errorf("Address = %q", results[0].Address)
	}
}

func TestParseSearchResultsEmptyPage(t *testing.T) {
	if got := ParseSearchResults("<html><body></body></html>"); len(got) != 0 {
		t.Errorf("got %d results from empty page", len(got))
	}
}

func TestParseSearchResultsFirstFamilyWins(t *testing.T) {
	// A specific container match must stop the generic fallbacks from
	// re-reporting the same entries.
	markup := `<html><body>
		<div class="search-result" data-property-id="C-400">
			<a href="/listing/C-400">1 Yonge St, Toronto, ON</a>
		</div>
	</body></html>`

	results := ParseSearchResults(markup)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].PropertyID != "C-400" {
		t.Errorf("PropertyID = %q", results[0].PropertyID)
	}
}
