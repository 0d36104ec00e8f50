package main

import (
	"testing"
	"time"

	"github.com/use-agent/bookbay/models"
)

func TestBuildScheduleStartsToday(t *testing.T) {
	before := time.Now().Format("2006-01-02")
	schedule := buildSchedule(nil)
	after := time.Now().Format("2006-01-02")

	if len(schedule) != 7 {
		t.Fatalf("got %d days, want 7", len(schedule))
	}
	// The two reads straddle the call so a midnight rollover cannot flake
	// the assertion.
	if schedule[0].Date != before && schedule[0].Date != after {
		t.Errorf("first day = %s, want today (%s)", schedule[0].Date, before)
	}
}

func TestBuildScheduleKeepsObservedSlots(t *testing.T) {
	observed := []models.TimeSlot{{Time: "14:30", Display: "2:30 PM", Available: true}}
	schedule := buildSchedule(observed)
	for _, day := range schedule {
		if len(day.TimeSlots) != 1 || day.TimeSlots[0].Time != "14:30" {
			t.Fatalf("day %s slots = %+v", day.Date, day.TimeSlots)
		}
	}
}
