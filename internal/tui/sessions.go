package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/moonbound/moonbound/pkg/api"
	"github.com/moonbound/moonbound/pkg/domain"
)

type sessionsLoadedMsg struct {
	sessions []domain.Session
	err      error
}

type sessionDeletedMsg struct {
	id  string
	err error
}

// openSessionMsg asks the App to show the conversation for one session.
type openSessionMsg struct {
	id string
}

// sessionsModel is the saved-dreams list. Deletion is confirm-then-call: the
// item leaves the list only after the server acknowledges the delete; on
// failure the list is untouched and the error shown.
type sessionsModel struct {
	client *api.Client
	limit  int

	items   []domain.Session
	cursor  int
	loading bool
	errMsg  string
	status  string

	confirming bool
	deleting   bool

	width  int
	height int
}

func newSessionsModel(c *api.Client, limit int) sessionsModel {
	return sessionsModel{client: c, limit: limit}
}

func (m sessionsModel) Init() tea.Cmd {
	return m.load()
}

func (m sessionsModel) load() tea.Cmd {
	c := m.client
	limit := m.limit
	return func() tea.Msg {
		sessions, err := c.ListSessions(context.Background(), limit)
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func (m sessionsModel) Update(msg tea.Msg) (sessionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.items = msg.sessions
		if m.cursor >= len(m.items) {
			m.cursor = len(m.items) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case sessionDeletedMsg:
		m.deleting = false
		if msg.err != nil {
			m.errMsg = "delete failed: " + msg.err.Error()
			return m, nil
		}
		for i, s := range m.items {
			if s.ID == msg.id {
				m.items = append(m.items[:i], m.items[i+1:]...)
				break
			}
		}
		if m.cursor >= len(m.items) && m.cursor > 0 {
			m.cursor--
		}
		m.status = "dream deleted"
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m sessionsModel) updateKeys(msg tea.KeyMsg) (sessionsModel, tea.Cmd) {
	if m.confirming {
		switch msg.String() {
		case "y":
			m.confirming = false
			return m.deleteCurrent()
		default:
			m.confirming = false
		}
		return m, nil
	}

	m.status = ""
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		m.loading = true
		m.errMsg = ""
		return m, m.load()
	case "d":
		if len(m.items) > 0 && !m.deleting {
			m.confirming = true
		}
	case "enter":
		if len(m.items) > 0 {
			id := m.items[m.cursor].ID
			return m, func() tea.Msg { return openSessionMsg{id: id} }
		}
	}
	return m, nil
}

func (m sessionsModel) deleteCurrent() (sessionsModel, tea.Cmd) {
	if m.cursor >= len(m.items) {
		return m, nil
	}
	id := m.items[m.cursor].ID
	m.deleting = true
	m.errMsg = ""

	c := m.client
	return m, func() tea.Msg {
		err := c.DeleteSession(context.Background(), id)
		return sessionDeletedMsg{id: id, err: err}
	}
}

func (m sessionsModel) View() string {
	var b strings.Builder

	title := "Your dreams"
	if len(m.items) > 0 {
		title = fmt.Sprintf("Your dreams (%d)", len(m.items))
	}
	b.WriteString("  " + selectedStyle.Render(title) + "\n\n")

	switch {
	case m.loading && len(m.items) == 0:
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case m.errMsg != "":
		b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
		if strings.Contains(m.errMsg, "401") || strings.Contains(m.errMsg, "403") {
			b.WriteString("  " + metaStyle.Render("your session may have expired; ctrl+l to log out") + "\n")
		}
		b.WriteString("\n")
	}

	if len(m.items) == 0 && !m.loading {
		b.WriteString("  " + dimStyle.Render("no dreams yet") + "\n")
		b.WriteString("  " + metaStyle.Render("interpret your first dream from the interpret tab") + "\n")
		return b.String()
	}

	for i, s := range m.items {
		marker := "  "
		style := normalStyle
		if i == m.cursor {
			marker = accentStyle.Render("> ")
			style = selectedStyle
		}

		line := marker + style.Render(truncStr(s.DisplayTitle(), 44))
		if ts := formatTime(s.CreatedAt); ts != "" {
			line += "  " + metaStyle.Render(ts)
		}
		b.WriteString(line + "\n")

		if preview := oneLine(s.Summary); preview != "" {
			b.WriteString("    " + dimStyle.Render(truncStr(preview, 70)) + "\n")
		}

		if i == m.cursor && m.confirming {
			b.WriteString("    " + warnStyle.Render("delete this dream? y/n") + "\n")
		}
		if i == m.cursor && m.deleting {
			b.WriteString("    " + dimStyle.Render("deleting...") + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n  " + successStyle.Render(m.status) + "\n")
	}
	return b.String()
}
