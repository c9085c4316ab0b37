package tui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/menu"
)

var goalLabels = map[api.Goal]string{
	api.GoalWeightLoss:     "Lose weight",
	api.GoalWeightGain:     "Gain weight",
	api.GoalHealthyEating:  "Eat healthy",
	api.GoalMaintainWeight: "Maintain weight",
}

func goalLabel(g api.Goal) string {
	if l, ok := goalLabels[g]; ok {
		return l
	}
	return string(g)
}

type profileModel struct {
	deps   Deps
	width  int
	height int

	user   *api.User
	family *api.Family
}

func newProfileModel(d Deps) profileModel {
	return profileModel{deps: d, user: d.Session.User()}
}

func (p *profileModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case userLoadedMsg:
		p.user = msg.user
	case familyLoadedMsg:
		p.family = msg.family
	case tea.KeyMsg:
		if key.Matches(msg, keys.Logout) {
			return p, logoutCmd(p.deps)
		}
	}
	return p, nil
}

// logoutCmd revokes the token server-side when possible and always clears
// the local session.
func logoutCmd(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		if _, err := d.Client.Logout(ctx); err != nil {
			log.Printf("logout: %v", err)
		}
		if err := d.Session.Logout(); err != nil {
			return statusMsg{text: fmt.Sprintf("Logout failed: %v", err), isError: true}
		}
		return signedOutMsg{}
	}
}

func (p profileModel) view() string {
	w := p.width - 4
	if p.user == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading profile..."))
	}
	u := p.user

	avatar := avatarStyle.Render(p.deps.Session.AvatarLetter())
	name := titleStyle.Render(u.Name)
	header := lipgloss.JoinHorizontal(lipgloss.Center, avatar, "  ", name, "  ", mutedStyle.Render(u.Email))

	field := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(14).Render(label), highlightStyle.Render(value))
	}

	var rows []string
	rows = append(rows, header, "")
	if u.Height != nil {
		rows = append(rows, field("Height", fmt.Sprintf("%.0f cm", *u.Height)))
	}
	if u.Weight != nil {
		rows = append(rows, field("Weight", fmt.Sprintf("%.1f kg", *u.Weight)))
	}
	if u.Goal != nil {
		rows = append(rows, field("Goal", goalLabel(*u.Goal)))
	}
	rows = append(rows, field("Plan", string(u.SubscriptionTier)))
	if u.IsFamilyHead {
		rows = append(rows, field("Role", "Family head"))
	}

	rows = append(rows, "", p.renderFamily())
	rows = append(rows, "", mutedStyle.Render("  L: log out"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (p profileModel) renderFamily() string {
	if p.family == nil {
		return mutedStyle.Render("  Not part of a family yet")
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Family"))
	for _, m := range p.family.Members {
		state := successStyle.Render("registered")
		if !m.IsRegistered {
			state = warningStyle.Render("not registered")
		}
		var meals []string
		for _, mt := range m.MealTimes {
			meals = append(meals, strings.ToLower(menu.MealTypeLabel(mt)))
		}
		rows = append(rows, fmt.Sprintf("  %-16s %s  %s", m.Name, state, mutedStyle.Render(strings.Join(meals, ", "))))
		if m.InviteToken != "" {
			rows = append(rows, mutedStyle.Render("      invite: "+m.InviteToken))
		}
	}
	return strings.Join(rows, "\n")
}
