package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/menu"
)

// viewState represents the currently active view.
type viewState int

const (
	viewHome viewState = iota
	viewWeek
	viewProfile
	viewSettings
)

var viewNames = []string{"Home", "Week", "Profile", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// menuLoadedMsg carries the current menu. noMenu is set when the backend
// has no menu for this week yet.
type menuLoadedMsg struct {
	menu   *menu.Menu
	noMenu bool
}

type familyLoadedMsg struct {
	family *api.Family
}

type userLoadedMsg struct {
	user *api.User
}

type mealUpdatedMsg struct {
	meal *menu.Meal
}

type signedInMsg struct {
	resp *api.AuthResponse
}

type signedOutMsg struct{}

// sessionExpiredMsg is sent when the backend rejects the token.
type sessionExpiredMsg struct{}

// slotTickMsg fires at each meal-slot boundary.
type slotTickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// errMsg turns an API error into the message the app should react to.
func errMsg(prefix string, err error) tea.Msg {
	if api.IsUnauthorized(err) {
		return sessionExpiredMsg{}
	}
	return statusMsg{text: prefix + ": " + api.Message(err), isError: true}
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}

// slotTickCmd waits until the next meal-slot boundary after now.
func slotTickCmd(now time.Time) tea.Cmd {
	next := menu.NextSlotChange(now)
	return tea.Tick(next.Sub(now), func(t time.Time) tea.Msg {
		return slotTickMsg(t)
	})
}

func formatMinutes(m *int) string {
	if m == nil {
		return "—"
	}
	if *m >= 60 {
		return fmt.Sprintf("%dh %02dm", *m/60, *m%60)
	}
	return fmt.Sprintf("%d min", *m)
}

func formatCalories(c *float64) string {
	if c == nil {
		return "—"
	}
	return fmt.Sprintf("%.0f kcal", *c)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// cloneMenu copies the day and meal slices so the result can be read while
// applyMealUpdate patches the original.
func cloneMenu(m *menu.Menu) *menu.Menu {
	if m == nil {
		return nil
	}
	c := *m
	c.Days = make([]menu.Day, len(m.Days))
	for i, d := range m.Days {
		d.Meals = append([]menu.Meal(nil), d.Meals...)
		c.Days[i] = d
	}
	return &c
}

// applyMealUpdate copies the server's view of a meal into the loaded menu.
// It reports whether the meal was found.
func applyMealUpdate(m *menu.Menu, updated *menu.Meal) bool {
	if m == nil || updated == nil {
		return false
	}
	for i := range m.Days {
		for j := range m.Days[i].Meals {
			meal := &m.Days[i].Meals[j]
			if meal.ID != updated.ID {
				continue
			}
			meal.Status = updated.Status
			meal.CompletedAt = updated.CompletedAt
			if updated.Recipe != nil {
				meal.Recipe = updated.Recipe
			}
			return true
		}
	}
	return false
}
