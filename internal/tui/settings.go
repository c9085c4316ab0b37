package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/kitchenos/internal/config"
	"github.com/sadopc/kitchenos/internal/store"
)

var settingLabels = map[string]string{
	store.SettingAPIURL:    "Backend URL",
	store.SettingExportDir: "Export directory",
}

type settingsModel struct {
	deps   Deps
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	apiURL    *string
	exportDir *string
}

func newSettingsModel(d Deps) settingsModel {
	u, dir := "", ""
	return settingsModel{
		deps:      d,
		apiURL:    &u,
		exportDir: &dir,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.deps.Store.GetAllSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Settings: %v", err), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.apiURL = s.getVal(store.SettingAPIURL)
	*s.exportDir = s.getVal(store.SettingExportDir)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Backend URL").
				Description("Leave empty to use KITCHENOS_API_URL or the demo backend").
				Value(s.apiURL).
				Validate(validateAPIURL),
			huh.NewInput().Title("Export directory").
				Description("Leave empty to export into your home directory").
				Value(s.exportDir),
		).Title("Settings"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.saveSettings(); err != nil {
			return s, statusCmd(fmt.Sprintf("Save failed: %v", err), true)
		}
		return s, tea.Batch(s.refresh(), statusCmd("Saved. Backend URL changes apply on restart.", false))
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	if err := s.deps.Store.SetSetting(store.SettingAPIURL, config.TrimURL(*s.apiURL)); err != nil {
		return err
	}
	return s.deps.Store.SetSetting(store.SettingExportDir, strings.TrimSpace(*s.exportDir))
}

func (s settingsModel) getVal(k string) string {
	v, err := s.deps.Store.GetSetting(k)
	if err != nil {
		return ""
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		name, ok := settingLabels[setting.Key]
		if !ok {
			name = setting.Key
		}
		label := lipgloss.NewStyle().Width(24).Render(name)
		value := highlightStyle.Render(formatSettingValue(setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	if s.deps.Client != nil {
		label := lipgloss.NewStyle().Width(24).Render("Connected to")
		rows = append(rows, fmt.Sprintf("  %s %s", label, mutedStyle.Render(s.deps.Client.BaseURL())))
		rows = append(rows, "")
	}
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(v string) string {
	if v == "" {
		return "(default)"
	}
	return v
}

var errAPIURL = errors.New("enter an http(s) URL")

// validateAPIURL accepts an empty value or an absolute http(s) URL.
func validateAPIURL(raw string) error {
	raw = config.TrimURL(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errAPIURL
	}
	return nil
}
