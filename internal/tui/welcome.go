package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/auth"
	"github.com/sadopc/kitchenos/internal/registration"
)

type welcomeStage int

const (
	stageMenu welcomeStage = iota
	stageLogin
	stageRegister
	stageInvite
	stageResetRequest
	stageResetConfirm
	stageOnboarding
)

var welcomeChoices = []struct {
	label string
	stage welcomeStage
}{
	{"Log in", stageLogin},
	{"Create account", stageRegister},
	{"Join a family with an invite", stageInvite},
	{"Forgot password", stageResetRequest},
}

// authFailedMsg reports a rejected auth request. Unlike errMsg, a 401 here
// means bad credentials, not an expired session.
type authFailedMsg struct {
	text string
}

type resetRequestedMsg struct{}

type resetConfirmedMsg struct{}

// credentialFields back the auth forms.
type credentialFields struct {
	name        string
	email       string
	password    string
	confirm     string
	otp         string
	inviteToken string
}

type welcomeModel struct {
	deps   Deps
	width  int
	height int

	stage  welcomeStage
	cursor int
	form   *huh.Form
	busy   bool
	err    string
	info   string

	creds    *credentialFields
	profile  *profileFields
	register registerModel
}

func newWelcomeModel(d Deps) welcomeModel {
	return welcomeModel{
		deps:     d,
		creds:    &credentialFields{},
		profile:  newProfileFields(),
		register: newRegisterModel(d),
	}
}

func (w welcomeModel) Init() tea.Cmd {
	return nil
}

func (w *welcomeModel) setSize(width, height int) {
	w.width = width
	w.height = height
	w.register.setSize(width, height)
}

func (w welcomeModel) update(msg tea.Msg) (welcomeModel, tea.Cmd) {
	if w.stage == stageRegister {
		var cmd tea.Cmd
		w.register, cmd = w.register.update(msg)
		if w.register.exited {
			w.register = newRegisterModel(w.deps)
			w.register.setSize(w.width, w.height)
			w.stage = stageMenu
		}
		return w, cmd
	}

	switch msg := msg.(type) {
	case authFailedMsg:
		w.busy = false
		w.err = msg.text
		return w.open(w.stage)

	case resetRequestedMsg:
		w.busy = false
		w.info = "If the account exists, a 6-digit code is on its way to " + w.creds.email
		return w.open(stageResetConfirm)

	case resetConfirmedMsg:
		w.busy = false
		w.creds.password = ""
		w.info = "Password changed. Log in with your new password."
		return w.open(stageLogin)
	}

	if w.busy {
		return w, nil
	}

	if w.stage == stageMenu {
		if msg, ok := msg.(tea.KeyMsg); ok {
			return w.updateMenu(msg)
		}
		return w, nil
	}

	if w.form == nil {
		return w, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return w.back()
	}

	var cmd tea.Cmd
	w.form, cmd = stepForm(w.form, msg)
	switch w.form.State {
	case huh.StateCompleted:
		w.form = nil
		w.err = ""
		w.busy = true
		return w, w.submit()
	case huh.StateAborted:
		return w.back()
	}
	return w, cmd
}

func (w welcomeModel) updateMenu(msg tea.KeyMsg) (welcomeModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if w.cursor > 0 {
			w.cursor--
		}
	case key.Matches(msg, keys.Down):
		if w.cursor < len(welcomeChoices)-1 {
			w.cursor++
		}
	case key.Matches(msg, keys.Enter):
		w.err, w.info = "", ""
		return w.open(welcomeChoices[w.cursor].stage)
	case key.Matches(msg, keys.Quit):
		return w, tea.Quit
	}
	return w, nil
}

// back leaves the current form. Leaving onboarding signs out, since the
// session is useless until the profile is complete.
func (w welcomeModel) back() (welcomeModel, tea.Cmd) {
	w.form = nil
	w.err = ""
	if w.stage == stageOnboarding {
		w.stage = stageMenu
		return w, logoutCmd(w.deps)
	}
	w.stage = stageMenu
	return w, nil
}

// startOnboarding asks a signed-in user without a family for the profile
// details the backend still needs.
func (w welcomeModel) startOnboarding() (welcomeModel, tea.Cmd) {
	w.busy = false
	w.err = ""
	w.info = "Almost there. Tell us a bit about your household."
	return w.open(stageOnboarding)
}

func (w welcomeModel) open(stage welcomeStage) (welcomeModel, tea.Cmd) {
	w.stage = stage
	c := w.creds

	switch stage {
	case stageRegister:
		w.form = nil
		var cmd tea.Cmd
		w.register, cmd = w.register.start()
		return w, cmd

	case stageLogin:
		w.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Email").Value(&c.email).Validate(auth.ValidateEmail),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).
					Value(&c.password).Validate(auth.ValidatePassword),
			).Title("Log in"),
		)

	case stageInvite:
		w.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Invite code").Value(&c.inviteToken).Validate(requireValue("paste the invite code")),
				huh.NewInput().Title("Email").Value(&c.email).Validate(auth.ValidateEmail),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).
					Value(&c.password).Validate(auth.ValidatePassword),
			).Title("Join your family"),
			w.profile.metricsGroup(),
			w.profile.mealsGroup(),
		)

	case stageResetRequest:
		w.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Email").Value(&c.email).Validate(auth.ValidateEmail),
			).Title("Reset password"),
		)

	case stageResetConfirm:
		c.otp, c.password, c.confirm = "", "", ""
		w.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Code").Value(&c.otp).Validate(auth.ValidateOTP),
				huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).
					Value(&c.password).Validate(auth.ValidatePassword),
				huh.NewInput().Title("Repeat password").EchoMode(huh.EchoModePassword).
					Value(&c.confirm).Validate(func(s string) error {
					return auth.ValidatePasswordConfirm(c.password, s)
				}),
			).Title("Choose a new password"),
		)

	case stageOnboarding:
		w.form = huh.NewForm(
			w.profile.metricsGroup(),
			w.profile.mealsGroup(),
			w.profile.budgetGroup(),
		)

	default:
		w.form = nil
		return w, nil
	}

	w.form = w.form.WithShowHelp(true).WithShowErrors(true)
	return w, w.form.Init()
}

func requireValue(msg string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func authFailed(err error) tea.Msg {
	return authFailedMsg{text: api.Message(err)}
}

// submit sends the completed form of the current stage.
func (w welcomeModel) submit() tea.Cmd {
	d := w.deps
	c := *w.creds
	p := *w.profile
	email := auth.NormalizeEmail(c.email)

	switch w.stage {
	case stageLogin:
		return func() tea.Msg {
			ctx, cancel := d.ctx()
			defer cancel()
			resp, err := d.Client.Login(ctx, api.LoginPayload{Email: email, Password: c.password})
			if err != nil {
				return authFailed(err)
			}
			return signedInMsg{resp: resp}
		}

	case stageInvite:
		return func() tea.Msg {
			height, weight, err := p.metrics()
			if err != nil {
				return authFailedMsg{text: err.Error()}
			}
			ctx, cancel := d.ctx()
			defer cancel()
			resp, err := d.Client.RegisterViaInvite(ctx, strings.TrimSpace(c.inviteToken), api.RegisterViaInvitePayload{
				Email:     email,
				Password:  c.password,
				Height:    height,
				Weight:    weight,
				Goal:      p.goal,
				MealTimes: p.mealTimes,
				Allergies: p.allergies,
			})
			if err != nil {
				return authFailed(err)
			}
			return signedInMsg{resp: resp}
		}

	case stageResetRequest:
		return func() tea.Msg {
			ctx, cancel := d.ctx()
			defer cancel()
			if _, err := d.Client.RequestPasswordReset(ctx, api.RequestPasswordResetPayload{Email: email}); err != nil {
				return authFailed(err)
			}
			return resetRequestedMsg{}
		}

	case stageResetConfirm:
		return func() tea.Msg {
			ctx, cancel := d.ctx()
			defer cancel()
			_, err := d.Client.ConfirmPasswordReset(ctx, api.ConfirmPasswordResetPayload{
				Email:       email,
				OTPCode:     strings.TrimSpace(c.otp),
				NewPassword: c.password,
			})
			if err != nil {
				return authFailed(err)
			}
			return resetConfirmedMsg{}
		}

	case stageOnboarding:
		return func() tea.Msg {
			height, weight, err := p.metrics()
			if err != nil {
				return authFailedMsg{text: err.Error()}
			}
			budget, err := registration.ParseBudget(p.budget)
			if err != nil {
				return authFailedMsg{text: err.Error()}
			}
			ctx, cancel := d.ctx()
			defer cancel()
			resp, err := d.Client.CompleteProfile(ctx, api.CompleteProfilePayload{
				Height:       height,
				Weight:       weight,
				Goal:         p.goal,
				MealTimes:    p.mealTimes,
				Allergies:    nonNilAllergies(p.allergies),
				WeeklyBudget: budget,
			})
			if api.IsUnauthorized(err) {
				return sessionExpiredMsg{}
			}
			if err != nil {
				return authFailed(err)
			}
			return signedInMsg{resp: resp}
		}
	}
	return nil
}

func nonNilAllergies(a []api.Allergy) []api.Allergy {
	if a == nil {
		return []api.Allergy{}
	}
	return a
}

var stageTitles = map[welcomeStage]string{
	stageLogin:        "Log in",
	stageInvite:       "Join your family",
	stageResetRequest: "Reset password",
	stageResetConfirm: "Reset password",
	stageOnboarding:   "Complete your profile",
}

func (w welcomeModel) view() string {
	width := w.width - 4
	if w.stage == stageRegister {
		return w.register.view()
	}

	var rows []string
	if w.stage == stageMenu {
		rows = append(rows, titleStyle.Render("Welcome to Kitchen OS"))
		rows = append(rows, subtitleStyle.Render("Plan the week's meals for the whole family"))
		rows = append(rows, "")
		for i, c := range welcomeChoices {
			cursor := "  "
			style := normalItemStyle
			if i == w.cursor {
				cursor = "> "
				style = selectedItemStyle
			}
			rows = append(rows, style.Render(cursor+c.label))
		}
		if w.deps.DemoHint != "" {
			rows = append(rows, "", mutedStyle.Render(w.deps.DemoHint))
		}
		if w.info != "" {
			rows = append(rows, "", successStyle.Render(w.info))
		}
		rows = append(rows, "", mutedStyle.Render("↑/↓: move  enter: select  q: quit"))
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, titleStyle.Render(stageTitles[w.stage]), "")
	if w.info != "" {
		rows = append(rows, successStyle.Render(w.info), "")
	}
	if w.err != "" {
		rows = append(rows, errorStyle.Render(w.err), "")
	}
	switch {
	case w.busy:
		rows = append(rows, mutedStyle.Render("Please wait..."))
	case w.form != nil:
		rows = append(rows, w.form.View())
	}
	return activePanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
