// Package parser converts raw page markup and free text into canonical
// address, property, and time-slot records. Parsing never fails: any
// component that cannot be recovered is left empty.
package parser

import (
	"regexp"
	"strings"

	"github.com/use-agent/bookbay/models"
)

// provinceCodes is the fixed set of Canadian province and territory
// codes, in scan order.
var provinceCodes = []string{
	"AB", "BC", "MB", "NB", "NL", "NS", "NT", "NU", "ON", "PE", "QC", "SK", "YT",
}

// provinceNames maps full names to codes. Scan order matters: full names
// are matched before bare codes so that common words never collide with
// a two-letter code.
var provinceNames = []struct {
	Name string
	Code string
}{
	{"Alberta", "AB"},
	{"British Columbia", "BC"},
	{"Manitoba", "MB"},
	{"New Brunswick", "NB"},
	{"Newfoundland and Labrador", "NL"},
	{"Nova Scotia", "NS"},
	{"Northwest Territories", "NT"},
	{"Nunavut", "NU"},
	{"Ontario", "ON"},
	{"Prince Edward Island", "PE"},
	{"Quebec", "QC"},
	{"Saskatchewan", "SK"},
	{"Yukon", "YT"},
}

// postalCodeRe matches the Canadian A1A 1A1 format against uppercased
// text.
var postalCodeRe = regexp.MustCompile(`[A-Z]\d[A-Z]\s?\d[A-Z]\d`)

// ProvinceName returns the full name for a province code, or "".
func ProvinceName(code string) string {
	for _, p := range provinceNames {
		if p.Code == code {
			return p.Name
		}
	}
	return ""
}

// ParseAddress breaks a free-text Canadian address into components.
//
// The postal code is found by pattern; the province by full name first,
// then by a whitespace-bounded two-letter code; the city is the comma
// segment immediately before the province token; the street is whatever
// precedes the city.
func ParseAddress(text string) models.AddressComponents {
	addr := models.AddressComponents{Full: strings.TrimSpace(text)}

	if m := postalCodeRe.FindString(strings.ToUpper(text)); m != "" {
		addr.PostalCode = m
	}

	lower := strings.ToLower(text)
	for _, p := range provinceNames {
		if strings.Contains(lower, strings.ToLower(p.Name)) {
			addr.Province = p.Code
			break
		}
	}
	if addr.Province == "" {
		padded := " " + strings.ToUpper(text) + " "
		for _, code := range provinceCodes {
			if strings.Contains(padded, " "+code+" ") {
				addr.Province = code
				break
			}
		}
	}

	if addr.Province != "" {
		provincePattern := addr.Province
		if name := ProvinceName(addr.Province); name != "" {
			provincePattern += "|" + regexp.QuoteMeta(name)
		}
		cityRe, err := regexp.Compile(`(?i)([^,]+),\s*(` + provincePattern + `)`)
		if err == nil {
			if m := cityRe.FindStringSubmatch(text); m != nil {
				addr.City = strings.TrimSpace(m[1])
			}
		}
	}

	if addr.City != "" {
		streetRe, err := regexp.Compile(`^(.+?),\s*` + regexp.QuoteMeta(addr.City))
		if err == nil {
			if m := streetRe.FindStringSubmatch(text); m != nil {
				addr.Street = strings.TrimSpace(m[1])
			}
		}
	}

	return addr
}
