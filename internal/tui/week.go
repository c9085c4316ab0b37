package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/kitchenos/internal/menu"
)

// Chart series. Cooking counts as still to do.
var weekSeries = []struct {
	name     string
	color    lipgloss.Color
	statuses []menu.MealStatus
}{
	{"Done", colorSuccess, []menu.MealStatus{menu.StatusCompleted}},
	{"To do", colorHighlight, []menu.MealStatus{menu.StatusPending, menu.StatusCooking}},
	{"Skipped", colorMuted, []menu.MealStatus{menu.StatusSkipped, menu.StatusAutoSkipped}},
}

type weekModel struct {
	deps   Deps
	width  int
	height int

	menu   *menu.Menu
	noMenu bool
	cursor int // selected day

	chart barchart.Model
}

func newWeekModel(d Deps) weekModel {
	return weekModel{
		deps:  d,
		chart: barchart.New(60, 10),
	}
}

func (wk *weekModel) setSize(w, h int) {
	wk.width = w
	wk.height = h
}

func (wk weekModel) update(msg tea.Msg) (weekModel, tea.Cmd) {
	switch msg := msg.(type) {
	case menuLoadedMsg:
		wk.menu = msg.menu
		wk.noMenu = msg.noMenu
		wk.cursor = wk.todayIndex()
		wk.buildChart()
		return wk, nil

	case mealUpdatedMsg:
		if applyMealUpdate(wk.menu, msg.meal) {
			wk.buildChart()
		}
		return wk, nil

	case tea.KeyMsg:
		if wk.menu == nil {
			return wk, nil
		}
		switch {
		case key.Matches(msg, keys.Up):
			if wk.cursor > 0 {
				wk.cursor--
			}
		case key.Matches(msg, keys.Down):
			if wk.cursor < len(wk.menu.Days)-1 {
				wk.cursor++
			}
		}
	}
	return wk, nil
}

// todayIndex returns the index of today's day in the menu, or 0.
func (wk weekModel) todayIndex() int {
	if wk.menu == nil {
		return 0
	}
	today := wk.deps.Now().Format("2006-01-02")
	for i, d := range wk.menu.Days {
		if d.DateKey() == today {
			return i
		}
	}
	return 0
}

func (wk *weekModel) buildChart() {
	chartWidth := wk.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 8
	if wk.height > 30 {
		chartHeight = 12
	}

	wk.chart = barchart.New(chartWidth, chartHeight)
	if wk.menu == nil {
		return
	}

	var bars []barchart.BarData
	for _, day := range wk.menu.Days {
		counts := day.StatusCounts()

		var values []barchart.BarValue
		for _, s := range weekSeries {
			n := 0
			for _, st := range s.statuses {
				n += counts[st]
			}
			if n == 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  s.name,
				Value: float64(n),
				Style: lipgloss.NewStyle().Foreground(s.color),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  menu.FormatDay(day.Date),
			Values: values,
		})
	}

	wk.chart.PushAll(bars)
	wk.chart.Draw()
}

func (wk weekModel) view() string {
	w := wk.width - 4

	if wk.menu == nil {
		msg := "Loading..."
		if wk.noMenu {
			msg = "No menu for this week yet. Generate one from the Home tab."
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("This week"), "", mutedStyle.Render(msg),
		))
	}

	header := titleStyle.Render("This week")
	if period := menu.FormatDateRange(wk.menu.WeekStart, wk.menu.WeekEnd); period != "" {
		header += "  " + mutedStyle.Render(period)
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", wk.chart.View(), "", renderWeekLegend(), "", wk.renderDays(), "",
		mutedStyle.Render("  ↑/↓: select day  x: export"),
	))
}

func renderWeekLegend() string {
	var items []string
	for _, s := range weekSeries {
		dot := lipgloss.NewStyle().Foreground(s.color).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, s.name))
	}
	return "  " + strings.Join(items, "  ")
}

func (wk weekModel) renderDays() string {
	today := wk.deps.Now().Format("2006-01-02")

	var rows []string
	for i, day := range wk.menu.Days {
		cursor := "  "
		style := normalItemStyle
		if i == wk.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		label := menu.FormatDay(day.Date)
		if day.DateKey() == today {
			label += " (today)"
		}
		counts := day.StatusCounts()
		summary := mutedStyle.Render(fmt.Sprintf("%d/%d done", counts[menu.StatusCompleted], len(day.Meals)))
		rows = append(rows, style.Render(cursor+label)+"  "+summary)

		if i == wk.cursor {
			for _, meal := range sortedMeals(day.Meals) {
				name := "—"
				if meal.Recipe != nil {
					name = meal.Recipe.Name
				}
				rows = append(rows, fmt.Sprintf("      %-10s %-28s %s",
					menu.MealTypeLabel(meal.MealType), name,
					statusStyle(string(meal.Status)).Render(menu.MealStatusLabel(meal.Status)),
				))
			}
		}
	}
	return strings.Join(rows, "\n")
}

// sortedMeals returns the meals in slot order without touching the input.
func sortedMeals(meals []menu.Meal) []menu.Meal {
	out := make([]menu.Meal, 0, len(meals))
	for _, mt := range menu.MealOrder {
		for _, m := range meals {
			if m.MealType == mt {
				out = append(out, m)
			}
		}
	}
	return out
}
