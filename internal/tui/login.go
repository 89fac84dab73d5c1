package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/moonbound/moonbound/internal/auth"
)

type loginField int

const (
	loginFieldEmail loginField = iota
	loginFieldPassword
	loginFieldName
	numLoginFields
)

// authDoneMsg carries the result of a login or register attempt. The App
// handles the success transition; the form only displays failures.
type authDoneMsg struct {
	err error
}

type loginModel struct {
	store       *auth.Store
	fields      [numLoginFields]string
	focus       loginField
	registering bool
	submitting  bool
	errMsg      string
	width       int
	height      int
}

func newLoginModel(store *auth.Store) loginModel {
	return loginModel{store: store}
}

// fieldCount is 2 for sign-in, 3 for registration (the optional name).
func (m loginModel) fieldCount() loginField {
	if m.registering {
		return numLoginFields
	}
	return loginFieldName
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case authDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m loginModel) updateKeys(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % m.fieldCount()
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + m.fieldCount()) % m.fieldCount()
	case "ctrl+r":
		m.registering = !m.registering
		m.errMsg = ""
		if m.focus >= m.fieldCount() {
			m.focus = loginFieldEmail
		}
	case "enter":
		if m.focus == m.fieldCount()-1 {
			return m.submit()
		}
		m.focus++
	case "backspace":
		m.fields[m.focus] = editRune(m.fields[m.focus], "backspace")
	default:
		m.fields[m.focus] = editRune(m.fields[m.focus], msg.String())
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	m.errMsg = ""
	m.submitting = true

	store := m.store
	email := strings.TrimSpace(m.fields[loginFieldEmail])
	password := m.fields[loginFieldPassword]
	name := strings.TrimSpace(m.fields[loginFieldName])
	registering := m.registering

	return m, func() tea.Msg {
		var err error
		if registering {
			err = store.Register(context.Background(), email, password, name)
		} else {
			err = store.Login(context.Background(), email, password)
		}
		return authDoneMsg{err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder

	if m.registering {
		b.WriteString("  " + selectedStyle.Render("Create your account") + "\n\n")
	} else {
		b.WriteString("  " + selectedStyle.Render("Sign in to interpret your dreams") + "\n\n")
	}

	b.WriteString(renderField("email   ", m.fields[loginFieldEmail], "you@example.com", m.focus == loginFieldEmail, false) + "\n")
	b.WriteString(renderField("password", m.fields[loginFieldPassword], "at least 6 characters", m.focus == loginFieldPassword, true) + "\n")
	if m.registering {
		b.WriteString(renderField("name    ", m.fields[loginFieldName], "optional", m.focus == loginFieldName, false) + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.submitting && m.registering:
		b.WriteString("  " + dimStyle.Render("creating account...") + "\n")
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("signing in...") + "\n")
	case m.errMsg != "":
		b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
	}

	if m.registering {
		b.WriteString("\n  " + metaStyle.Render("already have an account? ctrl+r to sign in"))
	} else {
		b.WriteString("\n  " + metaStyle.Render("new here? ctrl+r to create an account"))
	}

	return b.String()
}
