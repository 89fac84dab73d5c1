package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moonbound/moonbound/internal/auth"
	"github.com/moonbound/moonbound/internal/config"
	"github.com/moonbound/moonbound/pkg/api"
)

type phase int

const (
	phaseHydrating phase = iota
	phaseLogin
	phaseShell
)

type view int

const (
	viewDream view = iota
	viewSessions
)

// hydratedMsg carries the auth state resolved from the persisted token.
type hydratedMsg struct {
	state auth.State
}

// healthMsg carries the result of the one-shot liveness check performed on
// entering the shell. Advisory only.
type healthMsg struct {
	err error
}

// App is the root Bubbletea model. It owns the lifecycle: a hydration splash
// while the persisted token is validated, the auth form when anonymous, and
// the tabbed shell when authenticated.
type App struct {
	client  *api.Client
	store   *auth.Store
	version string

	phase phase
	view  view

	login    loginModel
	dream    dreamModel
	sessions sessionsModel
	detail   detailModel

	detailOpen bool
	healthNote string

	width  int
	height int
	frame  int
}

// NewApp creates the TUI application.
func NewApp(client *api.Client, store *auth.Store, cfg *config.Config, version string) App {
	return App{
		client:   client,
		store:    store,
		version:  version,
		login:    newLoginModel(store),
		dream:    newDreamModel(client, cfg.ImageStyle),
		sessions: newSessionsModel(client, cfg.SessionLimit),
		detail:   newDetailModel(client),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.hydrate())
}

func (a App) hydrate() tea.Cmd {
	store := a.store
	return func() tea.Msg {
		return hydratedMsg{state: store.Hydrate(context.Background())}
	}
}

func (a App) checkHealth() tea.Cmd {
	c := a.client
	return func() tea.Msg {
		return healthMsg{err: c.Health(context.Background())}
	}
}

// enterShell transitions into the authenticated shell: one advisory liveness
// check plus the initial sessions load.
func (a App) enterShell() (App, tea.Cmd) {
	a.phase = phaseShell
	a.view = viewDream
	a.detailOpen = false
	a.healthNote = ""
	return a, tea.Batch(a.checkHealth(), a.sessions.Init())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + banner/spare(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.login, _ = a.login.Update(bodyMsg)
		a.dream, _ = a.dream.Update(bodyMsg)
		a.sessions, _ = a.sessions.Update(bodyMsg)
		a.detail, _ = a.detail.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case hydratedMsg:
		if msg.state == auth.StateAuthenticated {
			return a.enterShell()
		}
		a.phase = phaseLogin
		return a, nil

	case authDoneMsg:
		if msg.err == nil {
			a.login = newLoginModel(a.store)
			return a.enterShell()
		}
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd

	case healthMsg:
		if msg.err != nil {
			a.healthNote = msg.err.Error()
		}
		return a, nil

	case openSessionMsg:
		a.detailOpen = true
		a.detail = newDetailModel(a.client)
		cmd := a.detail.open(msg.id)
		return a, cmd

	case dreamInterpretedMsg:
		// A new session exists server-side; refresh the list alongside the
		// form's own handling.
		var cmd tea.Cmd
		a.dream, cmd = a.dream.Update(msg)
		if msg.err == nil && msg.result != nil && msg.result.SessionID != "" {
			return a, tea.Batch(cmd, a.sessions.load())
		}
		return a, cmd

	case tea.KeyMsg:
		return a.updateKeys(msg)

	// Async results go to the model that owns them regardless of which view
	// is showing; each sub-model guards against stale data itself.
	case sessionsLoadedMsg, sessionDeletedMsg:
		var cmd tea.Cmd
		a.sessions, cmd = a.sessions.Update(msg)
		return a, cmd
	case sessionLoadedMsg, followupSentMsg:
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	case imageGeneratedMsg:
		var cmd tea.Cmd
		a.dream, cmd = a.dream.Update(msg)
		return a, cmd
	}

	return a.route(msg)
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.phase {
	case phaseHydrating:
		if key == "q" {
			return a, tea.Quit
		}
		return a, nil

	case phaseLogin:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	// Shell. Logout works even while a field is focused.
	if key == "ctrl+l" {
		a.store.Logout()
		a.phase = phaseLogin
		a.login = newLoginModel(a.store)
		a.dream = newDreamModel(a.client, a.dream.imageStyle)
		a.sessions = newSessionsModel(a.client, a.sessions.limit)
		a.detailOpen = false
		return a, nil
	}

	if a.detailOpen {
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		if a.detail.closed {
			a.detailOpen = false
		}
		return a, cmd
	}

	if !a.isEditing() {
		switch key {
		case "q":
			return a, tea.Quit
		case "1":
			a.healthNote = "" // navigation dismisses the advisory banner
			if a.view != viewDream {
				a.view = viewDream
			}
			return a, nil
		case "2":
			a.healthNote = ""
			if a.view != viewSessions {
				a.view = viewSessions
				return a, a.sessions.load()
			}
			return a, nil
		}
	}

	return a.route(msg)
}

func (a App) isEditing() bool {
	switch a.view {
	case viewDream:
		return a.dream.editing
	case viewSessions:
		return false
	}
	return false
}

// route delivers a message to the active sub-model.
func (a App) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.phase == phaseLogin:
		a.login, cmd = a.login.Update(msg)
	case a.detailOpen:
		a.detail, cmd = a.detail.Update(msg)
		if a.detail.closed {
			a.detailOpen = false
		}
	case a.view == viewDream:
		a.dream, cmd = a.dream.Update(msg)
	case a.view == viewSessions:
		a.sessions, cmd = a.sessions.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := (a.width - lipgloss.Width(logo)) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo

	switch a.phase {
	case phaseHydrating:
		body := "\n\n" + strings.Repeat(" ", max(0, (a.width-24)/2)) +
			dimStyle.Render("restoring your session"+strings.Repeat(".", (a.frame/4)%4))
		return header + "\n" + body

	case phaseLogin:
		help := " " + helpEntry("tab", "next field") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("ctrl+r", "login/register") + "  " + helpEntry("ctrl+c", "quit") +
			"  " + metaStyle.Render("moonbound "+a.version)
		body := truncateToHeight(a.login.View(), max(1, a.height-4))
		return header + "\n\n" + body + "\n" + help
	}

	// Shell header meta line: who is signed in.
	meta := ""
	if u := a.store.User(); u != nil {
		meta = metaStyle.Render(u.DisplayName() + "  ·  ctrl+l logout")
	}
	metaPad := (a.width - lipgloss.Width(meta)) / 2
	if metaPad < 0 {
		metaPad = 0
	}
	header += "\n" + strings.Repeat(" ", metaPad) + meta

	// Tab bar: two equal columns.
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Interpret", viewDream},
		{"2", "Dreams", viewSessions},
	}
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max(0, (colWidth-labelWidth)/2)
		rightPad := max(0, colWidth-labelWidth-leftPad)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	banner := ""
	if a.healthNote != "" {
		banner = " " + warnStyle.Render("API health check failed: "+truncStr(a.healthNote, max(20, a.width-28)))
	}

	var body, help string
	switch {
	case a.detailOpen:
		body = a.detail.View()
		if a.detail.inputFocused {
			help = " " + helpEntry("enter", "send") + "  " + helpEntry("esc", "nav")
		} else {
			help = " " + helpEntry("enter", "ask") + "  " + helpEntry("r", "reload") + "  " + helpEntry("c", "copy") + "  " + helpEntry("o", "image") + "  " + helpEntry("esc", "back")
		}
	case a.view == viewDream:
		body = a.dream.View()
		if a.dream.editing {
			help = " " + helpEntry("tab", "next") + "  " + helpEntry("ctrl+s", "interpret") + "  " + helpEntry("ctrl+g", "image") + "  " + helpEntry("ctrl+f", "save flag") + "  " + helpEntry("esc", "nav")
		} else {
			help = " " + helpEntry("1/2", "tabs") + "  " + helpEntry("enter", "edit") + "  " + helpEntry("c", "copy") + "  " + helpEntry("n", "new") + "  " + helpEntry("q", "quit")
		}
	default:
		body = a.sessions.View()
		if a.sessions.confirming {
			help = " " + helpEntry("y", "confirm delete") + "  " + helpEntry("n", "cancel")
		} else {
			help = " " + helpEntry("1/2", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("d", "delete") + "  " + helpEntry("q", "quit")
		}
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), banner, body, help)
}
