package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/use-agent/bookbay/models"
	"github.com/use-agent/bookbay/selector"
)

// slotChain lists the widget families a viewing slot can appear in. All
// locators are scanned: distinct families can coexist on one page.
var slotChain = selector.NewChain("showing time slots",
	`.showing-time`,
	`.available-time`,
	`.booking-slot`,
	`[class*="showing"]`,
	`[class*="booking"]`,
)

// Time display patterns tried in order; the first that matches wins.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)`),
	regexp.MustCompile(`(?i)(\d{1,2})\s*(AM|PM)`),
	regexp.MustCompile(`(\d{1,2}):(\d{2})`),
	regexp.MustCompile(`(?i)(\d{1,2})h(\d{2})`),
}

// ParseTimeSlots scans markup for viewing-slot elements and normalizes
// each one. Slot text that matches no supported time format is dropped.
func ParseTimeSlots(markup string) []models.TimeSlot {
	doc, err := selector.ParseMarkup(markup)
	if err != nil {
		return nil
	}

	var slots []models.TimeSlot
	for _, n := range selector.MatchEach(doc, slotChain) {
		if slot, ok := ParseTimeSlot(nodeText(n)); ok {
			slots = append(slots, slot)
		}
	}
	return slots
}

// ParseTimeSlot normalizes one slot's display text into a zero-padded
// 24-hour time. Noon and midnight are handled explicitly: "12 AM" maps
// to 00:xx and "12 PM" stays 12:xx.
func ParseTimeSlot(text string) (models.TimeSlot, bool) {
	for _, pattern := range timePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		var canonical string
		switch {
		case len(m) == 4: // HH:MM AM/PM
			hour := to24Hour(atoi(m[1]), m[3])
			canonical = fmt.Sprintf("%02d:%s", hour, m[2])
		case isMeridiem(m[2]): // H AM/PM
			hour := to24Hour(atoi(m[1]), m[2])
			canonical = fmt.Sprintf("%02d:00", hour)
		default: // HH:MM or HHhMM
			canonical = fmt.Sprintf("%02d:%s", atoi(m[1]), m[2])
		}

		return models.TimeSlot{
			Time:      canonical,
			Display:   text,
			Available: SlotLooksAvailable(text),
		}, true
	}
	return models.TimeSlot{}, false
}

// SlotLooksAvailable is the availability heuristic: keyword presence in
// the display text. False negatives are possible and acceptable; keep
// this isolated so it can be replaced without touching the parsing
// pipeline.
func SlotLooksAvailable(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "book") || strings.Contains(lower, "available")
}

func isMeridiem(s string) bool {
	upper := strings.ToUpper(s)
	return upper == "AM" || upper == "PM"
}

func to24Hour(hour int, meridiem string) int {
	switch strings.ToUpper(meridiem) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
