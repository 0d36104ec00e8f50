package parser

import (
	"fmt"
	"time"

	"github.com/use-agent/bookbay/models"
)

const dateLayout = "2006-01-02"

// DefaultWeekSchedule synthesizes a 7-day schedule rooted at start with
// the standard half-hour viewing grid, used when a listing exposes no
// observed slots.
func DefaultWeekSchedule(start time.Time) []models.DaySchedule {
	return weekSchedule(start, DefaultTimeSlots())
}

// WeekScheduleFromSlots replicates the observed slots across the 7 days
// starting at start. With no slots it falls back to the default grid.
func WeekScheduleFromSlots(slots []models.TimeSlot, start time.Time) []models.DaySchedule {
	if len(slots) == 0 {
		return DefaultWeekSchedule(start)
	}
	return weekSchedule(start, slots)
}

func weekSchedule(start time.Time, slots []models.TimeSlot) []models.DaySchedule {
	schedule := make([]models.DaySchedule, 0, 7)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i)
		day := models.DaySchedule{
			Date:      date.Format(dateLayout),
			DayName:   date.Weekday().String(),
			TimeSlots: make([]models.TimeSlot, len(slots)),
		}
		copy(day.TimeSlots, slots)
		schedule = append(schedule, day)
	}
	return schedule
}

// DefaultTimeSlots is the standard half-hour viewing grid from 09:00 to
// 17:00 inclusive.
func DefaultTimeSlots() []models.TimeSlot {
	var slots []models.TimeSlot
	for hour := 9; hour <= 17; hour++ {
		for _, minute := range []int{0, 30} {
			if hour == 17 && minute > 0 {
				break
			}
			slots = append(slots, models.TimeSlot{
				Time:      fmt.Sprintf("%02d:%02d", hour, minute),
				Display:   FormatTimeDisplay(hour, minute),
				Available: true,
			})
		}
	}
	return slots
}

// FormatTimeDisplay renders a 24-hour time as the 12-hour display form
// used on the portal.
func FormatTimeDisplay(hour, minute int) string {
	switch {
	case hour == 0:
		return fmt.Sprintf("12:%02d AM", minute)
	case hour < 12:
		return fmt.Sprintf("%d:%02d AM", hour, minute)
	case hour == 12:
		return fmt.Sprintf("12:%02d PM", minute)
	default:
		return fmt.Sprintf("%d:%02d PM", hour-12, minute)
	}
}
