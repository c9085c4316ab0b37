package menu

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Slot boundaries, in hours of the local day.
const (
	LunchStartHour  = 12
	SnackStartHour  = 16
	DinnerStartHour = 18
)

var slotSchedule = mustSchedule(fmt.Sprintf("0 0,%d,%d,%d * * *", LunchStartHour, SnackStartHour, DinnerStartHour))

func mustSchedule(spec string) cron.Schedule {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		panic(fmt.Sprintf("parse slot schedule %q: %v", spec, err))
	}
	return s
}

// CurrentMealType returns the slot for the hour of now, in now's location.
func CurrentMealType(now time.Time) MealType {
	hour := now.Hour()
	switch {
	case hour < LunchStartHour:
		return Breakfast
	case hour < SnackStartHour:
		return Lunch
	case hour < DinnerStartHour:
		return Snack
	default:
		return Dinner
	}
}

// TodayCurrentMeal finds today's first pending meal at or after the current
// slot. Earlier slots are never considered and the scan does not wrap.
// It returns nil when there is no day for today or nothing pending is left.
func TodayCurrentMeal(days []Day, now time.Time) *Meal {
	today := now.Format("2006-01-02")

	var todayDay *Day
	for i := range days {
		if days[i].DateKey() == today {
			todayDay = &days[i]
			break
		}
	}
	if todayDay == nil {
		return nil
	}

	start := slotIndex(CurrentMealType(now))
	for _, mt := range MealOrder[start:] {
		for i := range todayDay.Meals {
			m := &todayDay.Meals[i]
			if m.MealType == mt && m.Status == StatusPending {
				return m
			}
		}
	}
	return nil
}

// NextSlotChange returns the first instant after now at which
// CurrentMealType changes (including midnight, when the day changes).
func NextSlotChange(now time.Time) time.Time {
	return slotSchedule.Next(now)
}

func slotIndex(mt MealType) int {
	for i, v := range MealOrder {
		if v == mt {
			return i
		}
	}
	return 0
}
