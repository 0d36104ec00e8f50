package search

import (
	"strings"

	"github.com/use-agent/bookbay/models"
	"github.com/use-agent/bookbay/parser"
)

// MatchResult picks the first result whose parsed city (case-insensitive)
// and province code both equal the query's. Results with no address text
// are skipped rather than treated as wildcards.
func MatchResult(results []models.SearchResult, query models.AddressComponents) *models.SearchResult {
	if query.City == "" || query.Province == "" {
		return nil
	}
	for i := range results {
		if results[i].Address == "" {
			continue
		}
		candidate := parser.ParseAddress(results[i].Address)
		if strings.EqualFold(candidate.City, query.City) && candidate.Province == query.Province {
			return &results[i]
		}
	}
	return nil
}

// mergeRecord overlays a detail-page record on the summary row. Detail
// fields win; gaps are filled from the summary. A nil detail record
// yields a record built from the summary alone.
func mergeRecord(detail *models.PropertyRecord, summary *models.SearchResult) *models.PropertyRecord {
	if detail == nil {
		return &models.PropertyRecord{
			PropertyID: summary.PropertyID,
			Address:    summary.Address,
			Price:      summary.Price,
			URL:        summary.Link,
		}
	}
	if detail.PropertyID == "" {
		detail.PropertyID = summary.PropertyID
	}
	if detail.Address == "" {
		detail.Address = summary.Address
	}
	if detail.Price == "" {
		detail.Price = summary.Price
	}
	return detail
}
