package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/menu"
	"github.com/sadopc/kitchenos/internal/registration"
)

// profileFields backs the body-metrics, meals and budget groups shared by
// registration, invite sign-up and onboarding. It lives on the heap so the
// huh fields keep pointing at it across model copies.
type profileFields struct {
	height    string
	weight    string
	goal      api.Goal
	mealTimes []menu.MealType
	allergies []api.Allergy
	budget    string
}

func newProfileFields() *profileFields {
	return &profileFields{
		goal:      api.GoalHealthyEating,
		mealTimes: append([]menu.MealType(nil), registration.DefaultMealTimes...),
	}
}

func goalOptions() []huh.Option[api.Goal] {
	opts := make([]huh.Option[api.Goal], 0, len(api.Goals))
	for _, g := range api.Goals {
		opts = append(opts, huh.NewOption(goalLabel(g), g))
	}
	return opts
}

func mealTimeOptions() []huh.Option[menu.MealType] {
	opts := make([]huh.Option[menu.MealType], 0, len(menu.MealOrder))
	for _, mt := range menu.MealOrder {
		opts = append(opts, huh.NewOption(menu.MealTypeLabel(mt), mt))
	}
	return opts
}

func allergyOptions() []huh.Option[api.Allergy] {
	opts := make([]huh.Option[api.Allergy], 0, len(api.Allergies))
	for _, a := range api.Allergies {
		opts = append(opts, huh.NewOption(allergyLabel(a), a))
	}
	return opts
}

func allergyLabel(a api.Allergy) string {
	s := strings.ReplaceAll(string(a), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func validateHeightField(s string) error {
	v, err := registration.ParseNumber(s)
	if err != nil {
		return registration.ErrHeightRange
	}
	return registration.ValidateHeight(v)
}

func validateWeightField(s string) error {
	v, err := registration.ParseNumber(s)
	if err != nil {
		return registration.ErrWeightRange
	}
	return registration.ValidateWeight(v)
}

func validateBudgetField(s string) error {
	_, err := registration.ParseBudget(s)
	return err
}

func (f *profileFields) metricsGroup() *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Height (cm)").Value(&f.height).Validate(validateHeightField),
		huh.NewInput().Title("Weight (kg)").Value(&f.weight).Validate(validateWeightField),
		huh.NewSelect[api.Goal]().Title("Goal").Options(goalOptions()...).Value(&f.goal),
	).Title("About you")
}

func (f *profileFields) mealsGroup() *huh.Group {
	return huh.NewGroup(
		huh.NewMultiSelect[menu.MealType]().Title("Which meals do you cook?").
			Options(mealTimeOptions()...).
			Value(&f.mealTimes).
			Validate(registration.ValidateMealTimes),
		huh.NewMultiSelect[api.Allergy]().Title("Allergies").
			Options(allergyOptions()...).
			Value(&f.allergies).
			Height(8),
	).Title("Meals")
}

func (f *profileFields) budgetGroup() *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Weekly grocery budget").
			Description("Optional").
			Value(&f.budget).
			Validate(validateBudgetField),
	).Title("Budget")
}

// metrics parses the validated height and weight inputs.
func (f *profileFields) metrics() (height, weight float64, err error) {
	if height, err = registration.ParseNumber(f.height); err != nil {
		return 0, 0, err
	}
	if weight, err = registration.ParseNumber(f.weight); err != nil {
		return 0, 0, err
	}
	return height, weight, nil
}

// stepForm forwards msg to the form and keeps the updated instance.
func stepForm(f *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd) {
	m, cmd := f.Update(msg)
	if ff, ok := m.(*huh.Form); ok {
		f = ff
	}
	return f, cmd
}
