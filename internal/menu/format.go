package menu

import (
	"fmt"
	"time"
)

var mealTypeLabels = map[MealType]string{
	Breakfast: "Breakfast",
	Lunch:     "Lunch",
	Snack:     "Snack",
	Dinner:    "Dinner",
}

var mealStatusLabels = map[MealStatus]string{
	StatusPending:     "Pending",
	StatusCooking:     "Cooking",
	StatusCompleted:   "Completed",
	StatusSkipped:     "Skipped",
	StatusAutoSkipped: "Auto-skipped",
}

func MealTypeLabel(t MealType) string {
	return mealTypeLabels[t]
}

func MealStatusLabel(s MealStatus) string {
	if l, ok := mealStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// FormatDateRange renders "DD.MM — DD.MM.YYYY". It returns "" when either
// bound is empty or cannot be parsed.
func FormatDateRange(start, end string) string {
	if start == "" || end == "" {
		return ""
	}
	s, ok := parseDate(start)
	if !ok {
		return ""
	}
	e, ok := parseDate(end)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s — %s.%d", s.Format("02.01"), e.Format("02.01"), e.Year())
}

// FormatDay renders a day's date as "Mon 02.01", or the raw value when it
// cannot be parsed.
func FormatDay(date string) string {
	t, ok := parseDate(date)
	if !ok {
		return date
	}
	return t.Format("Mon 02.01")
}

func parseDate(v string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// BudgetLevel classifies weekly budget usage.
type BudgetLevel int

const (
	BudgetUnset BudgetLevel = iota
	BudgetOK
	BudgetRunningLow
	BudgetOver
)

// Budget is the weekly budget snapshot shown on the home view.
type Budget struct {
	Weekly *float64
	Used   float64
}

// Progress returns Used/Weekly clamped to [0, 1].
func (b Budget) Progress() float64 {
	if b.Weekly == nil || *b.Weekly <= 0 {
		return 0
	}
	p := b.Used / *b.Weekly
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

func (b Budget) Level() BudgetLevel {
	if b.Weekly == nil || *b.Weekly == 0 {
		return BudgetUnset
	}
	switch {
	case b.Used >= *b.Weekly:
		return BudgetOver
	case b.Used >= *b.Weekly*0.8:
		return BudgetRunningLow
	default:
		return BudgetOK
	}
}

func (l BudgetLevel) String() string {
	switch l {
	case BudgetOK:
		return "Within budget"
	case BudgetRunningLow:
		return "Running low"
	case BudgetOver:
		return "Over budget"
	default:
		return "Budget not set"
	}
}
