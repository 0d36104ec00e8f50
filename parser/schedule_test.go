package parser

import (
	"testing"
	"time"

	"github.com/use-agent/bookbay/models"
)

func TestDefaultTimeSlots(t *testing.T) {
	slots := DefaultTimeSlots()
	if len(slots) != 17 {
		t.Fatalf("got %d slots, want 17", len(slots))
	}
	if slots[0].Time != "09:00" {
		t.Errorf("first slot = %q, want 09:00", slots[0].Time)
	}
	if slots[len(slots)-1].Time != "17:00" {
		t.Errorf("last slot = %q, want 17:00", slots[len(slots)-1].Time)
	}
	for _, s := range slots {
		if !s.Available {
			t.Errorf("default slot %s not available", s.Time)
		}
	}
}

func TestDefaultWeekSchedule(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday
	schedule := DefaultWeekSchedule(start)
	if len(schedule) != 7 {
		t.Fatalf("got %d days, want 7", len(schedule))
	}
	if schedule[0].Date != "2026-03-02" || schedule[0].DayName != "Monday" {
		t.Errorf("first day = %s %s", schedule[0].Date, schedule[0].DayName)
	}
	if schedule[6].Date != "2026-03-08" || schedule[6].DayName != "Sunday" {
		t.Errorf("last day = %s %s", schedule[6].Date, schedule[6].DayName)
	}
	for i, day := range schedule {
		want := start.AddDate(0, 0, i).Format("2006-01-02")
		if day.Date != want {
			t.Errorf("day %d date = %s, want %s", i, day.Date, want)
		}
		if len(day.TimeSlots) != 17 {
			t.Errorf("day %d has %d slots, want 17", i, len(day.TimeSlots))
		}
	}
}

func TestWeekScheduleFromSlots(t *testing.T) {
	observed := []models.TimeSlot{
		{Time: "14:30", Display: "2:30 PM", Available: true},
		{Time: "16:00", Display: "4:00 PM", Available: false},
	}
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	schedule := WeekScheduleFromSlots(observed, start)
	if len(schedule) != 7 {
		t.Fatalf("got %d days, want 7", len(schedule))
	}
	for _, day := range schedule {
		if len(day.TimeSlots) != 2 {
			t.Fatalf("day %s has %d slots, want 2", day.Date, len(day.TimeSlots))
		}
		if day.TimeSlots[0].Time != "14:30" || day.TimeSlots[1].Time != "16:00" {
			t.Errorf("day %s slots = %+v", day.Date, day.TimeSlots)
		}
	}

	// Days must not share slot storage.
	schedule[0].TimeSlots[0].Available = false
	if !schedule[1].TimeSlots[0].Available {
		t.Error("mutating one day's slot leaked into another day")
	}
}

func TestWeekScheduleFromSlotsEmptyFallsBack(t *testing.T) {
	schedule := WeekScheduleFromSlots(nil, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if len(schedule) != 7 || len(schedule[0].TimeSlots) != 17 {
		t.Fatalf("fallback schedule = %d days, %d slots", len(schedule), len(schedule[0].TimeSlots))
	}
}

func TestFormatTimeDisplay(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{0, 30, "12:30 AM"},
		{9, 0, "9:00 AM"},
		{12, 0, "12:00 PM"},
		{14, 30, "2:30 PM"},
		{23, 45, "11:45 PM"},
	}
	for _, tt := range tests {
		if got := FormatTimeDisplay(tt.hour, tt.minute); got != tt.want {
			t.Errorf("FormatTimeDisplay(%d, %d) = %q, want %q", tt.hour, tt.minute, got, tt.want)
		}
	}
}
