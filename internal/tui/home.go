package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/menu"
)

type homeModel struct {
	deps   Deps
	width  int
	height int

	menu       *menu.Menu
	noMenu     bool
	family     *api.Family
	loading    bool
	generating bool

	spinner     spinner.Model
	budgetBar   progress.Model
	showDetails bool

	formActive bool
	form       *huh.Form
	confirmed  *bool
	// target of the pending confirmation
	pendingMeal   string
	pendingStatus menu.MealStatus
}

func newHomeModel(d Deps) homeModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	confirmed := false
	return homeModel{
		deps:      d,
		loading:   true,
		spinner:   sp,
		budgetBar: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		confirmed: &confirmed,
	}
}

func (h *homeModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
	barWidth := w - 12
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 10 {
		barWidth = 10
	}
	h.budgetBar.Width = barWidth
}

// currentMeal is the meal the home card offers actions for.
func (h homeModel) currentMeal() *menu.Meal {
	if h.menu == nil {
		return nil
	}
	return menu.TodayCurrentMeal(h.menu.Days, h.deps.Now())
}

func (h homeModel) familyID() string {
	if h.family != nil {
		return h.family.ID
	}
	if u := h.deps.Session.User(); u != nil && u.FamilyID != nil {
		return *u.FamilyID
	}
	return ""
}

func (h homeModel) update(msg tea.Msg) (homeModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	switch msg := msg.(type) {
	case menuLoadedMsg:
		h.loading = false
		h.generating = false
		h.menu = msg.menu
		h.noMenu = msg.noMenu
		return h, nil

	case familyLoadedMsg:
		h.family = msg.family
		return h, nil

	case mealUpdatedMsg:
		applyMealUpdate(h.menu, msg.meal)
		text := fmt.Sprintf("%s marked %s",
			menu.MealTypeLabel(msg.meal.MealType),
			strings.ToLower(menu.MealStatusLabel(msg.meal.Status)))
		// completing a meal moves the budget
		return h, tea.Batch(loadFamilyCmd(h.deps), statusCmd(text, false))

	case spinner.TickMsg:
		if !h.loading && !h.generating {
			return h, nil
		}
		var cmd tea.Cmd
		h.spinner, cmd = h.spinner.Update(msg)
		return h, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Complete):
			return h.confirmStatus(menu.StatusCompleted)
		case key.Matches(msg, keys.Skip):
			return h.confirmStatus(menu.StatusSkipped)
		case key.Matches(msg, keys.Refresh):
			h.loading = true
			return h, tea.Batch(loadMenuCmd(h.deps), loadFamilyCmd(h.deps), h.spinner.Tick)
		case key.Matches(msg, keys.Generate):
			return h.generate()
		case key.Matches(msg, keys.Enter):
			if h.currentMeal() != nil {
				h.showDetails = !h.showDetails
			}
			return h, nil
		}
	}
	return h, nil
}

func (h homeModel) generate() (homeModel, tea.Cmd) {
	if h.generating || (h.menu != nil && !h.noMenu) {
		return h, nil
	}
	familyID := h.familyID()
	if familyID == "" {
		return h, statusCmd("Complete your family profile before generating a menu", true)
	}
	h.generating = true
	d := h.deps
	gen := func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		m, err := d.Client.GenerateMenu(ctx, familyID)
		if err != nil {
			return errMsg("Generate", err)
		}
		return menuLoadedMsg{menu: m}
	}
	return h, tea.Batch(gen, h.spinner.Tick)
}

func (h homeModel) confirmStatus(status menu.MealStatus) (homeModel, tea.Cmd) {
	meal := h.currentMeal()
	if meal == nil {
		return h, nil
	}
	h.pendingMeal = meal.ID
	h.pendingStatus = status
	*h.confirmed = true

	verb := "Mark %s as done?"
	if status == menu.StatusSkipped {
		verb = "Skip %s?"
	}
	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf(verb, strings.ToLower(menu.MealTypeLabel(meal.MealType)))).
				Affirmative("Yes").
				Negative("No").
				Value(h.confirmed),
		),
	).WithShowHelp(false)
	h.formActive = true
	return h, h.form.Init()
}

func (h homeModel) updateForm(msg tea.Msg) (homeModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	switch h.form.State {
	case huh.StateCompleted:
		h.formActive = false
		h.form = nil
		if !*h.confirmed {
			return h, nil
		}
		return h, updateMealCmd(h.deps, h.pendingMeal, h.pendingStatus)
	case huh.StateAborted:
		h.formActive = false
		h.form = nil
		return h, nil
	}
	return h, cmd
}

func updateMealCmd(d Deps, mealID string, status menu.MealStatus) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		meal, err := d.Client.UpdateMealStatus(ctx, mealID, status)
		if err != nil {
			return errMsg("Update meal", err)
		}
		return mealUpdatedMsg{meal: meal}
	}
}

func (h homeModel) view() string {
	w := h.width - 4

	if h.loading && h.menu == nil && !h.noMenu {
		return panelStyle.Width(w).Render(h.spinner.View() + " Loading your menu...")
	}

	sections := []string{h.renderBudget(w), h.renderMeal(w)}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (h homeModel) renderBudget(w int) string {
	title := titleStyle.Render("Weekly budget")
	if period := menu.FormatDateRange(h.family.BudgetPeriod()); period != "" {
		title += "  " + subtitleStyle.Render(period)
	}

	b := h.family.Budget()
	level := b.Level()
	if level == menu.BudgetUnset {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No weekly budget set"),
		))
	}

	var levelStyle lipgloss.Style
	switch level {
	case menu.BudgetRunningLow:
		levelStyle = warningStyle
	case menu.BudgetOver:
		levelStyle = errorStyle
	default:
		levelStyle = successStyle
	}

	used := fmt.Sprintf("%s of %s used", formatMoney(b.Used), formatMoney(*b.Weekly))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		h.budgetBar.ViewAs(b.Progress()),
		used+"  "+levelStyle.Render(level.String()),
	))
}

func (h homeModel) renderMeal(w int) string {
	if h.generating {
		return activePanelStyle.Width(w).Render(h.spinner.View() + " Generating this week's menu...")
	}
	if h.noMenu {
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("No menu for this week yet"),
			"",
			mutedStyle.Render("Press g to generate one"),
		))
	}

	meal := h.currentMeal()
	if meal == nil {
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("All done for today"),
			"",
			mutedStyle.Render("Nothing left to cook. See the Week tab for what's next."),
		))
	}

	var rows []string
	rows = append(rows, mealTitleStyle.Render(strings.ToUpper(menu.MealTypeLabel(meal.MealType))))

	if r := meal.Recipe; r != nil {
		rows = append(rows, recipeNameStyle.Render(r.Name))
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("%s · %s",
			formatMinutes(r.CookingTime), formatCalories(r.Calories))))
	} else {
		rows = append(rows, mutedStyle.Render("No recipe assigned"))
	}
	rows = append(rows, statusStyle(string(meal.Status)).Render(menu.MealStatusLabel(meal.Status)))

	if h.showDetails && meal.Recipe != nil {
		rows = append(rows, "")
		rows = append(rows, h.renderRecipe(meal.Recipe)...)
	}

	if h.formActive && h.form != nil {
		rows = append(rows, "", h.form.View())
	} else {
		rows = append(rows, "")
		rows = append(rows, mutedStyle.Render("c: done  s: skip  enter: recipe"))
	}

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (h homeModel) renderRecipe(r *menu.Recipe) []string {
	var rows []string
	if r.Description != nil && *r.Description != "" {
		rows = append(rows, *r.Description, "")
	}
	if r.Servings > 0 {
		rows = append(rows, fmt.Sprintf("Servings: %d", r.Servings))
	}
	if len(r.Ingredients) > 0 {
		rows = append(rows, highlightStyle.Render("Ingredients"))
		for _, ing := range r.Ingredients {
			name := ing.ProductID
			if ing.Product != nil {
				name = ing.Product.Name
			}
			rows = append(rows, fmt.Sprintf("  • %s %s %s", name, formatQuantity(ing.Quantity), ing.Unit))
		}
	}
	return rows
}

func formatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.1f", q)
}
