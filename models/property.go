package models

// AddressComponents is the canonical breakdown of a free-text Canadian
// address. Any component the parser could not recover is left empty;
// ProvinceCode is either one of the 13 province/territory codes or "".
type AddressComponents struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Full       string `json:"full_address"`
}

// PropertyRecord holds everything extracted for one listing. All fields
// are best-effort strings pulled from markup; absence is an empty value,
// never an error.
type PropertyRecord struct {
	PropertyID   string     `json:"property_id"`
	Address      string     `json:"address"`
	Price        string     `json:"price"`
	Bedrooms     string     `json:"bedrooms"`
	Bathrooms    string     `json:"bathrooms"`
	SquareFeet   string     `json:"square_feet"`
	PropertyType string     `json:"property_type"`
	Description  string     `json:"description"`
	Images       []string   `json:"images"`
	URL          string     `json:"url"`
	ShowingTimes []TimeSlot `json:"showing_times"`
}

// SearchResult is one entry pulled from a search results page, before the
// detail page has been fetched.
type SearchResult struct {
	PropertyID string `json:"property_id"`
	Address    string `json:"address"`
	Price      string `json:"price"`
	Link       string `json:"link"`
}

// TimeSlot is one offered viewing time. Time is always zero-padded
// 24-hour "HH:MM"; Display keeps the original page text. Available is a
// keyword heuristic over the display text and may produce false
// negatives.
type TimeSlot struct {
	Time      string `json:"time"`
	Display   string `json:"display"`
	Available bool   `json:"available"`
}

// DaySchedule is the set of slots offered on one calendar day.
type DaySchedule struct {
	Date      string     `json:"date"` // YYYY-MM-DD
	DayName   string     `json:"day_name"`
	TimeSlots []TimeSlot `json:"time_slots"`
}
