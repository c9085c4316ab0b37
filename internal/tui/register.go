package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/auth"
	"github.com/sadopc/kitchenos/internal/menu"
	"github.com/sadopc/kitchenos/internal/registration"
)

type registerStage int

const (
	regAccount registerStage = iota
	regMembers
	regMemberForm
	regBudget
	regSubmitting
)

type memberFields struct {
	name      string
	mealTimes []menu.MealType
	allergies []api.Allergy
}

// registerModel walks a new user through the sign-up steps, collecting
// everything into a registration.Draft that is submitted once at the end.
type registerModel struct {
	deps   Deps
	width  int
	height int

	stage     registerStage
	draft     *registration.Draft
	creds     *credentialFields
	profile   *profileFields
	member    *memberFields
	editingID string
	cursor    int

	form   *huh.Form
	err    string
	exited bool
}

func newRegisterModel(d Deps) registerModel {
	return registerModel{
		deps:    d,
		draft:   registration.NewDraft(),
		creds:   &credentialFields{},
		profile: newProfileFields(),
		member:  &memberFields{},
	}
}

func (r *registerModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r registerModel) start() (registerModel, tea.Cmd) {
	c := r.creds
	r.stage = regAccount
	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&c.name).Validate(auth.ValidateName),
			huh.NewInput().Title("Email").Value(&c.email).Validate(auth.ValidateEmail),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).
				Value(&c.password).Validate(auth.ValidatePassword),
			huh.NewInput().Title("Repeat password").EchoMode(huh.EchoModePassword).
				Value(&c.confirm).Validate(func(s string) error {
				return auth.ValidatePasswordConfirm(c.password, s)
			}),
		).Title("Account"),
		r.profile.metricsGroup(),
		r.profile.mealsGroup(),
	).WithShowHelp(true).WithShowErrors(true)
	return r, r.form.Init()
}

func (r registerModel) update(msg tea.Msg) (registerModel, tea.Cmd) {
	if msg, ok := msg.(authFailedMsg); ok {
		r.err = msg.text
		return r.start()
	}

	switch r.stage {
	case regSubmitting:
		return r, nil
	case regMembers:
		if msg, ok := msg.(tea.KeyMsg); ok {
			return r.updateMembers(msg)
		}
		return r, nil
	}

	if r.form == nil {
		return r, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return r.back()
	}

	var cmd tea.Cmd
	r.form, cmd = stepForm(r.form, msg)
	switch r.form.State {
	case huh.StateCompleted:
		r.form = nil
		return r.completeStage()
	case huh.StateAborted:
		return r.back()
	}
	return r, cmd
}

func (r registerModel) back() (registerModel, tea.Cmd) {
	r.form = nil
	switch r.stage {
	case regMemberForm, regBudget:
		r.stage = regMembers
	default:
		r.draft.Reset()
		r.exited = true
	}
	return r, nil
}

func (r registerModel) completeStage() (registerModel, tea.Cmd) {
	r.err = ""
	switch r.stage {
	case regAccount:
		height, weight, err := r.profile.metrics()
		if err != nil {
			r.err = err.Error()
			return r.start()
		}
		r.draft.SetStep1(r.creds.name, r.creds.email, r.creds.password)
		r.draft.SetStep2(height, weight, r.profile.goal)
		r.draft.SetStep3(r.profile.mealTimes, r.profile.allergies, r.draft.FamilyMembers)
		r.stage = regMembers

	case regMemberForm:
		m := r.member
		var err error
		if r.editingID == "" {
			_, err = r.draft.AddFamilyMember(m.name, m.mealTimes, m.allergies)
		} else {
			err = r.draft.UpdateFamilyMember(r.editingID, m.name, m.mealTimes, m.allergies)
		}
		if err != nil {
			r.err = err.Error()
		}
		r.stage = regMembers

	case regBudget:
		budget, err := registration.ParseBudget(r.profile.budget)
		if err != nil {
			r.err = err.Error()
			return r.openBudget()
		}
		r.draft.SetStep4(budget)
		return r.submit()
	}
	return r, nil
}

func (r registerModel) submit() (registerModel, tea.Cmd) {
	if err := r.draft.Validate(); err != nil {
		r.err = err.Error()
		return r.start()
	}
	payload, err := r.draft.Payload()
	if err != nil {
		r.err = err.Error()
		return r.start()
	}

	r.stage = regSubmitting
	d := r.deps
	return r, func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		resp, err := d.Client.Register(ctx, payload)
		if err != nil {
			return authFailed(err)
		}
		return signedInMsg{resp: resp}
	}
}

func (r registerModel) updateMembers(msg tea.KeyMsg) (registerModel, tea.Cmd) {
	members := r.draft.FamilyMembers
	switch {
	case key.Matches(msg, keys.Up):
		if r.cursor > 0 {
			r.cursor--
		}
	case key.Matches(msg, keys.Down):
		if r.cursor < len(members)-1 {
			r.cursor++
		}
	case key.Matches(msg, keys.Add):
		return r.openMember(nil)
	case key.Matches(msg, keys.Edit):
		if r.cursor < len(members) {
			m := members[r.cursor]
			return r.openMember(&m)
		}
	case key.Matches(msg, keys.Delete):
		if r.cursor < len(members) {
			r.draft.DeleteFamilyMember(members[r.cursor].ID)
			if r.cursor > 0 && r.cursor >= len(r.draft.FamilyMembers) {
				r.cursor--
			}
		}
	case key.Matches(msg, keys.Enter):
		return r.openBudget()
	case key.Matches(msg, keys.Back):
		r.err = ""
		return r.start()
	}
	return r, nil
}

// openMember shows the member form, prefilled when editing.
func (r registerModel) openMember(existing *registration.FamilyMember) (registerModel, tea.Cmd) {
	m := r.member
	if existing != nil {
		r.editingID = existing.ID
		m.name = existing.Name
		m.mealTimes = slices.Clone(existing.MealTimes)
		m.allergies = slices.Clone(existing.Allergies)
	} else {
		r.editingID = ""
		m.name = ""
		m.mealTimes = slices.Clone(r.draft.MealTimes)
		m.allergies = nil
	}

	title := "Add family member"
	if existing != nil {
		title = "Edit " + existing.Name
	}
	r.stage = regMemberForm
	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&m.name).Validate(requireValue(registration.ErrMemberNameEmpty.Error())),
			huh.NewMultiSelect[menu.MealType]().Title("Meals").
				Options(mealTimeOptions()...).
				Value(&m.mealTimes),
			huh.NewMultiSelect[api.Allergy]().Title("Allergies").
				Options(allergyOptions()...).
				Value(&m.allergies).
				Height(8),
		).Title(title),
	).WithShowHelp(true).WithShowErrors(true)
	return r, r.form.Init()
}

func (r registerModel) openBudget() (registerModel, tea.Cmd) {
	r.stage = regBudget
	r.form = huh.NewForm(r.profile.budgetGroup()).WithShowHelp(true).WithShowErrors(true)
	return r, r.form.Init()
}

var registerStepNames = map[registerStage]string{
	regAccount:    "Step 1 of 3 · Account and preferences",
	regMembers:    "Step 2 of 3 · Family",
	regMemberForm: "Step 2 of 3 · Family",
	regBudget:     "Step 3 of 3 · Budget",
	regSubmitting: "Creating your account",
}

func (r registerModel) view() string {
	w := r.width - 4

	var rows []string
	rows = append(rows, titleStyle.Render("Create account"))
	rows = append(rows, subtitleStyle.Render(registerStepNames[r.stage]), "")
	if r.err != "" {
		rows = append(rows, errorStyle.Render(r.err), "")
	}

	switch r.stage {
	case regSubmitting:
		rows = append(rows, mutedStyle.Render("Please wait..."))
	case regMembers:
		rows = append(rows, r.renderMembers()...)
	default:
		if r.form != nil {
			rows = append(rows, r.form.View())
		}
	}
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (r registerModel) renderMembers() []string {
	var rows []string
	rows = append(rows, "Who else eats with you? You'll get an invite code for each person.", "")

	if len(r.draft.FamilyMembers) == 0 {
		rows = append(rows, mutedStyle.Render("  Just you so far"))
	}
	for i, m := range r.draft.FamilyMembers {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		var meals []string
		for _, mt := range m.MealTimes {
			meals = append(meals, strings.ToLower(menu.MealTypeLabel(mt)))
		}
		detail := strings.Join(meals, ", ")
		if len(m.Allergies) > 0 {
			detail += fmt.Sprintf(" · %d allergies", len(m.Allergies))
		}
		rows = append(rows, style.Render(cursor+m.Name)+"  "+mutedStyle.Render(detail))
	}

	rows = append(rows, "", mutedStyle.Render("a: add  e: edit  d: remove  enter: continue  esc: back"))
	return rows
}
