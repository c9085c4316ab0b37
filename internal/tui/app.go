package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/auth"
	"github.com/sadopc/kitchenos/internal/export"
	"github.com/sadopc/kitchenos/internal/store"
)

const requestTimeout = 45 * time.Second

// Deps are the collaborators every view shares.
type Deps struct {
	Store   *store.Store
	Client  *api.Client
	Session *auth.Session

	// DemoHint is shown on the welcome screen when running against the
	// built-in demo backend.
	DemoHint string

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

type gate int

const (
	gateWelcome gate = iota
	gateMain
)

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	width  int
	height int

	gate          gate
	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	welcome  welcomeModel
	home     homeModel
	week     weekModel
	profile  profileModel
	settings settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(d Deps) App {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := help.New()
	h.ShowAll = false

	a := App{
		deps:       d,
		activeView: viewHome,
		welcome:    newWelcomeModel(d),
		help:       h,
	}
	a.resetViews()
	if d.Session.SignedIn() {
		a.gate = gateMain
	}
	return a
}

func (a *App) resetViews() {
	a.home = newHomeModel(a.deps)
	a.week = newWeekModel(a.deps)
	a.profile = newProfileModel(a.deps)
	a.settings = newSettingsModel(a.deps)
	a.activeView = viewHome
	a.setSizes()
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{slotTickCmd(a.deps.Now())}
	if a.gate == gateMain {
		cmds = append(cmds, a.loadAll())
	} else {
		cmds = append(cmds, a.welcome.Init())
	}
	return tea.Batch(cmds...)
}

func (a App) loadAll() tea.Cmd {
	return tea.Batch(
		loadMenuCmd(a.deps),
		loadFamilyCmd(a.deps),
		loadUserCmd(a.deps),
		a.settings.refresh(),
		a.home.spinner.Tick,
	)
}

func (a *App) setSizes() {
	contentHeight := a.height - 4 // header + footer
	a.welcome.setSize(a.width, contentHeight)
	a.home.setSize(a.width, contentHeight)
	a.week.setSize(a.width, contentHeight)
	a.profile.setSize(a.width, contentHeight)
	a.settings.setSize(a.width, contentHeight)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.setSizes()
		a.week.buildChart()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.gate == gateWelcome {
			var cmd tea.Cmd
			a.welcome, cmd = a.welcome.update(msg)
			return a, cmd
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			if a.home.menu == nil {
				return a, statusCmd("Nothing to export yet", true)
			}
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewHome
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewWeek
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewProfile
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		}

	case signedInMsg:
		if err := a.deps.Session.SignIn(msg.resp); err != nil {
			return a, statusCmd(fmt.Sprintf("Could not save session: %v", err), true)
		}
		if msg.resp.NeedsOnboarding {
			var cmd tea.Cmd
			a.welcome, cmd = a.welcome.startOnboarding()
			return a, cmd
		}
		a.gate = gateMain
		a.welcome = newWelcomeModel(a.deps)
		a.resetViews()
		a.status, a.statusErr = "Welcome, "+msg.resp.User.Name, false
		return a, a.loadAll()

	case signedOutMsg:
		a.signOut("Logged out", false)
		return a, a.welcome.Init()

	case sessionExpiredMsg:
		if err := a.deps.Session.Logout(); err != nil {
			a.signOut(fmt.Sprintf("Logout failed: %v", err), true)
		} else {
			a.signOut("Session expired. Please log in again.", true)
		}
		return a, a.welcome.Init()

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case slotTickMsg:
		cmds := []tea.Cmd{slotTickCmd(time.Time(msg))}
		if a.gate == gateMain {
			cmds = append(cmds, loadMenuCmd(a.deps))
		}
		return a, tea.Batch(cmds...)

	case userLoadedMsg:
		a.deps.Session.SetUser(msg.user)
		return a.broadcast(msg)

	case menuLoadedMsg, familyLoadedMsg, mealUpdatedMsg:
		return a.broadcast(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.home, cmd = a.home.update(msg)
		return a, cmd

	case exportDoneMsg:
		a.status, a.statusErr = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil
	}

	if a.gate == gateWelcome {
		var cmd tea.Cmd
		a.welcome, cmd = a.welcome.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a *App) signOut(status string, isErr bool) {
	a.gate = gateWelcome
	a.welcome = newWelcomeModel(a.deps)
	a.resetViews()
	a.exportPicking = false
	a.status, a.statusErr = status, isErr
}

// broadcast delivers data messages to every view that renders them.
func (a App) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.home, cmd = a.home.update(msg)
	cmds = append(cmds, cmd)
	a.week, cmd = a.week.update(msg)
	cmds = append(cmds, cmd)
	a.profile, cmd = a.profile.update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewHome:
		a.home, cmd = a.home.update(msg)
	case viewWeek:
		a.week, cmd = a.week.update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewHome:
		return a.home.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	if a.gate == gateWelcome {
		content = a.welcome.view()
	} else {
		switch a.activeView {
		case viewHome:
			content = a.home.view()
		case viewWeek:
			content = a.week.view()
		case viewProfile:
			content = a.profile.view()
		case viewSettings:
			content = a.settings.view()
		}
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("kitchen os")
	if a.gate == gateWelcome {
		return headerStyle.Render(title)
	}

	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	avatar := avatarStyle.Render(a.deps.Session.AvatarLetter())

	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - lipgloss.Width(avatar) - 5
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow, " ", avatar),
	)
}

func (a App) renderFooter() string {
	helpView := ""
	if a.gate == gateMain {
		helpView = a.help.View(keys)
	}

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	left := footerStyle.Render(helpView)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export this week's menu"))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	// The write runs off the update loop; hand it a snapshot.
	m := cloneMenu(a.home.menu)
	dir := exportDir(a.deps.Store)
	dateStr := a.deps.Now().Format("2006-01-02")
	return func() tea.Msg {
		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("kitchenos-menu-%s.csv", dateStr))
			if err := export.ToCSV(m, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("kitchenos-menu-%s.json", dateStr))
			if err := export.ToJSON(m, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}
		return exportDoneMsg{path: path}
	}
}

// exportDir is the configured export directory, or the home directory.
func exportDir(s *store.Store) string {
	if dir, err := s.GetSetting(store.SettingExportDir); err == nil && dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// --- Loaders shared by the views ---

func loadMenuCmd(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		m, err := d.Client.CurrentMenu(ctx)
		if api.IsNotFound(err) {
			return menuLoadedMsg{noMenu: true}
		}
		if err != nil {
			return errMsg("Menu", err)
		}
		return menuLoadedMsg{menu: m}
	}
}

func loadFamilyCmd(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		info, err := d.Client.FamilyInfo(ctx)
		if err != nil {
			return errMsg("Family", err)
		}
		return familyLoadedMsg{family: info.Family}
	}
}

func loadUserCmd(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		u, err := d.Client.Profile(ctx)
		if err != nil {
			return errMsg("Profile", err)
		}
		return userLoadedMsg{user: u}
	}
}
